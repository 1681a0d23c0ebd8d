// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of operator-tui:
// argument parsing, the one-shot ask command, the interactive REPL, and
// the management commands (agents, sessions, status, config).
//
// Handlers return errors; Exit maps them to messages and exit codes in
// one place.
package cli

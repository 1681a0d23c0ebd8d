// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the operator-tui application:
// crash-safe file writing (AtomicWriteFile) and rune/width-aware string
// truncation for terminal display.
package util

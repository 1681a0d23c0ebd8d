// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates, saves, and hot-reloads the operator-tui
// configuration (~/.operator-tui/config.toml). Environment variables
// override file values; the file is written atomically with mode 0600
// because it can hold the Radient API key.
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces: markdown rendering,
// code syntax highlighting, the activity spinner, and the status bar.
package components

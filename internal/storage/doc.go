// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts as one JSON file per
// agent under ~/.operator-tui/conversations, with atomic writes, listing,
// search, and markdown/JSON export.
//
// Transcripts are snapshots for the user's own archive; the live
// conversation state lives in internal/convo and the offline mirror in
// internal/cache.
package storage

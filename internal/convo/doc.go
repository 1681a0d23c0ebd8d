// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package convo implements the conversation message store: per-agent
// message sequences reconciled from three sources that race against each
// other — optimistic local sends, job poller results, and paginated
// history fetches from the server.
//
// The store guarantees, per conversation:
//
//   - the visible list is deduplicated by message ID
//   - the visible list is ordered chronologically ascending
//   - adding an existing message merges fields without moving it
//   - only one history fetch runs at a time (ErrFetchInFlight otherwise)
//   - a failed fetch never clears previously loaded messages
//
// Server pages arrive newest-first; the store reverses them and merges
// older pages in front of the loaded span. merge.go holds the pure
// reconciliation functions.
package convo

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types shared across the application:
// messages, roles, message status, and conversation metadata.
//
// Messages are value types with stable UUID identities. The conversation
// store (internal/convo) deduplicates by Message.ID, so the same logical
// message may be constructed locally (optimistic send) and later arrive
// again from the server without duplicating in the transcript.
package model

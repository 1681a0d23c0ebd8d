// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view of the TUI.
//
// This file defines the Bubble Tea message types the chat view consumes.
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/model"
)

// SendResultMsg reports the outcome of submitting a prompt.
type SendResultMsg struct {
	AgentID string
	Sent    model.Message
	Err     error
}

// JobUpdateMsg signals that a polled job changed state. Sent from the
// poller's callback via Program.Send, so it can arrive at any time.
type JobUpdateMsg struct {
	AgentID string
}

// HistoryLoadedMsg reports an initial history load for a conversation.
type HistoryLoadedMsg struct {
	AgentID string
	Err     error
}

// OlderLoadedMsg reports a pagination fetch of older messages.
type OlderLoadedMsg struct {
	AgentID string
	Err     error
}

// AgentsLoadedMsg delivers the agent listing for the picker.
type AgentsLoadedMsg struct {
	Agents []api.Agent
	Err    error
}

// CreditsMsg delivers the Radient credit balance for the status bar.
type CreditsMsg struct {
	Balance float64
	Err     error
}

// HealthMsg reports backend reachability.
type HealthMsg struct {
	Err error
}

// CancelResultMsg reports a job cancellation request.
type CancelResultMsg struct {
	AgentID string
	Err     error
}

// TickMsg drives periodic refresh while a job is loading.
type TickMsg time.Time

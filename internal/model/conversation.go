// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CONVERSATION METADATA
// =============================================================================

// Conversation holds the metadata of one agent conversation. The messages
// themselves live in the conversation store; this struct is what agent
// pickers and session listings render.
type Conversation struct {
	// Identity: conversations are one-to-one with backend agents.
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`

	// Model configuration the agent runs with.
	Hosting string `json:"hosting,omitempty"`
	Model   string `json:"model,omitempty"`

	// Bookkeeping
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Title returns the display title for the conversation.
func (c Conversation) Title() string {
	if c.Name != "" {
		return c.Name
	}
	return c.AgentID
}

// Subtitle returns the hosting/model line shown under the title.
func (c Conversation) Subtitle() string {
	switch {
	case c.Hosting != "" && c.Model != "":
		return c.Hosting + " / " + c.Model
	case c.Model != "":
		return c.Model
	default:
		return ""
	}
}

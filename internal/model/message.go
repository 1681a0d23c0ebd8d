// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// MessageStatus marks whether a turn completed normally or ended in an error.
type MessageStatus string

const (
	StatusOK    MessageStatus = "ok"
	StatusError MessageStatus = "error"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Messages are value types: the conversation store hands out copies, so a
// Message held by a caller never changes underneath it.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`

	// Outcome of the agent turn that produced this message
	Status        MessageStatus `json:"status,omitempty"`
	Stderr        string        `json:"stderr,omitempty"`
	ExecutionTime time.Duration `json:"execution_time_ns,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Status:    StatusOK,
	}
}

// NewUserMessage creates a new user message with optional attachments.
// The generated ID is sent to the server as user_message_id so the server
// echo of this message deduplicates against the optimistic local copy.
func NewUserMessage(content string, attachments []string) Message {
	m := NewMessage(RoleUser, content)
	m.Attachments = attachments
	return m
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewErrorMessage creates an assistant message that carries a diagnostic
// instead of a normal reply. Used when a job fails, is cancelled, or the
// backend becomes unreachable mid-turn.
func NewErrorMessage(diagnostic string) Message {
	m := NewMessage(RoleAssistant, diagnostic)
	m.Status = StatusError
	return m
}

// IsError reports whether this message represents a failed turn.
func (m Message) IsError() bool {
	return m.Status == StatusError
}

// IsEmpty reports whether the message has no content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Preview returns a single-line preview of the message content.
func (m Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// ORDERING
// =============================================================================

// SortByTimestamp sorts messages chronologically ascending, in place.
// The sort is stable so messages sharing a timestamp keep their relative
// order (server pages preserve intra-second ordering by position).
func SortByTimestamp(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

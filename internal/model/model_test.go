// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello", []string{"/tmp/a.txt"})

	if msg.ID == "" {
		t.Error("expected generated ID")
	}
	if msg.Role != RoleUser {
		t.Errorf("expected role user, got %s", msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("expected content 'hello', got %q", msg.Content)
	}
	if len(msg.Attachments) != 1 {
		t.Errorf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	if msg.IsError() {
		t.Error("user message should not be an error")
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestNewMessageUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewAssistantMessage("x")
		if seen[msg.ID] {
			t.Fatalf("duplicate ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("backend unreachable")

	if msg.Role != RoleAssistant {
		t.Errorf("expected assistant role, got %s", msg.Role)
	}
	if !msg.IsError() {
		t.Error("expected IsError true")
	}
	if msg.Status != StatusError {
		t.Errorf("expected status error, got %s", msg.Status)
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Agent"},
		{RoleSystem, "System"},
		{Role("custom"), "custom"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%s) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"newlines collapsed", "line1\nline2", 20, "line1 line2"},
		{"tiny max", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewAssistantMessage(tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSortByTimestampStable(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "c", Timestamp: base.Add(2 * time.Second)},
		{ID: "a1", Timestamp: base},
		{ID: "a2", Timestamp: base},
		{ID: "b", Timestamp: base.Add(time.Second)},
	}

	SortByTimestamp(msgs)

	want := []string{"a1", "a2", "b", "c"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, msgs[i].ID, id)
		}
	}
}

func TestConversationTitle(t *testing.T) {
	c := Conversation{AgentID: "agent-1"}
	if c.Title() != "agent-1" {
		t.Errorf("expected fallback to agent ID, got %q", c.Title())
	}

	c.Name = "Research Helper"
	if c.Title() != "Research Helper" {
		t.Errorf("expected name, got %q", c.Title())
	}

	c.Hosting = "radient"
	c.Model = "auto"
	if c.Subtitle() != "radient / auto" {
		t.Errorf("unexpected subtitle %q", c.Subtitle())
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/operator-tui/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func cachedMsg(id string, offset time.Duration) model.Message {
	return model.Message{
		ID:        id,
		Role:      model.RoleUser,
		Content:   "content-" + id,
		Status:    model.StatusOK,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
}

func TestPutAndMessages(t *testing.T) {
	c := openTestCache(t)

	msg := cachedMsg("m1", 0)
	msg.Attachments = []string{"/tmp/report.pdf"}
	msg.Stderr = "warning"
	msg.ExecutionTime = 2 * time.Second
	if err := c.Put("agent-1", msg); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	msgs, err := c.Messages("agent-1", 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.ID != "m1" || got.Content != "content-m1" || got.Stderr != "warning" {
		t.Errorf("unexpected message %+v", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0] != "/tmp/report.pdf" {
		t.Errorf("attachments not round-tripped: %v", got.Attachments)
	}
	if got.ExecutionTime != 2*time.Second {
		t.Errorf("execution time = %v", got.ExecutionTime)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestPutUpsertsByID(t *testing.T) {
	c := openTestCache(t)

	if err := c.Put("agent-1", cachedMsg("m1", 0)); err != nil {
		t.Fatal(err)
	}
	updated := cachedMsg("m1", 0)
	updated.Content = "revised"
	if err := c.Put("agent-1", updated); err != nil {
		t.Fatal(err)
	}

	msgs, err := c.Messages("agent-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("upsert duplicated: %d rows", len(msgs))
	}
	if msgs[0].Content != "revised" {
		t.Errorf("content = %q, want revised", msgs[0].Content)
	}
}

func TestMessagesOrderAndLimit(t *testing.T) {
	c := openTestCache(t)

	batch := []model.Message{
		cachedMsg("m2", 2 * time.Second),
		cachedMsg("m1", 1 * time.Second),
		cachedMsg("m4", 4 * time.Second),
		cachedMsg("m3", 3 * time.Second),
	}
	if err := c.PutAll("agent-1", batch); err != nil {
		t.Fatalf("PutAll() error: %v", err)
	}

	msgs, err := c.Messages("agent-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"m1", "m2", "m3", "m4"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, msgs[i].ID, id)
		}
	}

	// Limit keeps the newest, still ascending.
	msgs, err = c.Messages("agent-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m3" || msgs[1].ID != "m4" {
		t.Errorf("limited read wrong: %v", msgs)
	}
}

func TestAgentsIsolated(t *testing.T) {
	c := openTestCache(t)

	c.Put("agent-1", cachedMsg("m1", 0))
	c.Put("agent-2", cachedMsg("m2", 0))

	msgs, _ := c.Messages("agent-1", 0)
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Errorf("agent-1 sees %v", msgs)
	}

	if err := c.DeleteAgent("agent-1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Count("agent-1"); n != 0 {
		t.Errorf("agent-1 count = %d after delete", n)
	}
	if n, _ := c.Count("agent-2"); n != 1 {
		t.Errorf("agent-2 count = %d, want 1", n)
	}
}

func TestPrune(t *testing.T) {
	c := openTestCache(t)

	for i := 0; i < 10; i++ {
		c.Put("agent-1", cachedMsg("m"+string(rune('a'+i)), time.Duration(i)*time.Second))
	}
	if err := c.Prune("agent-1", 3); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	msgs, err := c.Messages("agent-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages after prune, got %d", len(msgs))
	}
	if msgs[2].ID != "mj" {
		t.Errorf("newest message should survive prune, got %s", msgs[2].ID)
	}
}

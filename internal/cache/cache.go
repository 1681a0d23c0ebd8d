// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache persists fetched conversation history in SQLite so
// transcripts render when the backend is unreachable.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/operator-tui/internal/model"
)

// ErrClosed is returned when the cache is used after Close.
var ErrClosed = errors.New("cache: database closed")

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	agent_id     TEXT NOT NULL,
	id           TEXT NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'ok',
	stderr       TEXT NOT NULL DEFAULT '',
	attachments  TEXT NOT NULL DEFAULT '[]',
	execution_ns INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL,
	PRIMARY KEY (agent_id, id)
);
CREATE INDEX IF NOT EXISTS idx_messages_agent_time
	ON messages (agent_id, created_at);
`

// Cache is a local mirror of conversation history. Safe for concurrent
// use; database/sql serializes access to the single SQLite connection.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the standard cache location, ~/.operator-tui/cache.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "operator-tui-cache.db")
	}
	return filepath.Join(home, ".operator-tui", "cache.db")
}

// Open opens (and if needed creates) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	// Single writer; the driver is not safe for concurrent writes on
	// multiple connections to the same file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Put upserts one message. Re-putting the same message ID overwrites its
// fields, mirroring the store's merge-by-ID semantics.
func (c *Cache) Put(agentID string, msg model.Message) error {
	attachments, err := json.Marshal(msg.Attachments)
	if err != nil {
		attachments = []byte("[]")
	}
	_, err = c.db.Exec(`
		INSERT INTO messages (agent_id, id, role, content, status, stderr, attachments, execution_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (agent_id, id) DO UPDATE SET
			role = excluded.role,
			content = excluded.content,
			status = excluded.status,
			stderr = excluded.stderr,
			attachments = excluded.attachments,
			execution_ns = excluded.execution_ns`,
		agentID, msg.ID, string(msg.Role), msg.Content, string(msg.Status),
		msg.Stderr, string(attachments), int64(msg.ExecutionTime),
		msg.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("cache: put message: %w", err)
	}
	return nil
}

// PutAll upserts a batch of messages in one transaction.
func (c *Cache) PutAll(agentID string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO messages (agent_id, id, role, content, status, stderr, attachments, execution_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (agent_id, id) DO UPDATE SET
			role = excluded.role,
			content = excluded.content,
			status = excluded.status,
			stderr = excluded.stderr,
			attachments = excluded.attachments,
			execution_ns = excluded.execution_ns`)
	if err != nil {
		return fmt.Errorf("cache: prepare: %w", err)
	}
	defer stmt.Close()

	for _, msg := range msgs {
		attachments, err := json.Marshal(msg.Attachments)
		if err != nil {
			attachments = []byte("[]")
		}
		if _, err := stmt.Exec(agentID, msg.ID, string(msg.Role), msg.Content,
			string(msg.Status), msg.Stderr, string(attachments),
			int64(msg.ExecutionTime), msg.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("cache: put message %s: %w", msg.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteAgent removes all cached messages of one agent.
func (c *Cache) DeleteAgent(agentID string) error {
	_, err := c.db.Exec(`DELETE FROM messages WHERE agent_id = ?`, agentID)
	if err != nil {
		return fmt.Errorf("cache: delete agent: %w", err)
	}
	return nil
}

// Prune keeps only the newest keep messages of an agent.
func (c *Cache) Prune(agentID string, keep int) error {
	_, err := c.db.Exec(`
		DELETE FROM messages WHERE agent_id = ? AND id NOT IN (
			SELECT id FROM messages WHERE agent_id = ?
			ORDER BY created_at DESC LIMIT ?
		)`, agentID, agentID, keep)
	if err != nil {
		return fmt.Errorf("cache: prune: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Messages returns up to limit of the newest cached messages of an agent,
// ordered chronologically ascending. limit <= 0 means no limit.
func (c *Cache) Messages(agentID string, limit int) ([]model.Message, error) {
	query := `
		SELECT id, role, content, status, stderr, attachments, execution_ns, created_at
		FROM messages WHERE agent_id = ?
		ORDER BY created_at DESC`
	args := []any{agentID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("cache: query messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			msg         model.Message
			role        string
			status      string
			attachments string
			execNS      int64
			createdNS   int64
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &status, &msg.Stderr,
			&attachments, &execNS, &createdNS); err != nil {
			return nil, fmt.Errorf("cache: scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Status = model.MessageStatus(status)
		msg.ExecutionTime = time.Duration(execNS)
		msg.Timestamp = time.Unix(0, createdNS)
		_ = json.Unmarshal([]byte(attachments), &msg.Attachments)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate messages: %w", err)
	}

	// Rows came newest-first to honor the limit; flip to ascending.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Count returns the number of cached messages for an agent.
func (c *Cache) Count(agentID string) (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE agent_id = ?`, agentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

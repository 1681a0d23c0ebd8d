// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts as JSON files.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/operator-tui/internal/model"
	"github.com/jeranaias/operator-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is a persisted conversation snapshot, one file per agent.
type Transcript struct {
	// Identity
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name,omitempty"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model,omitempty"`
	Hosting   string    `json:"hosting,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, chronologically ascending
	Messages []model.Message `json:"messages"`
}

// TranscriptMeta is the listing view of a transcript.
type TranscriptMeta struct {
	AgentID      string    `json:"agent_id"`
	AgentName    string    `json:"agent_name,omitempty"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ErrTranscriptNotFound is returned when no transcript exists for an agent.
var ErrTranscriptNotFound = &TranscriptError{Message: "transcript not found"}

// TranscriptError is a storage-level error.
type TranscriptError struct {
	Message string
	Cause   error
}

func (e *TranscriptError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TranscriptError) Unwrap() error { return e.Cause }

// Is matches any TranscriptError with the same message.
func (e *TranscriptError) Is(target error) bool {
	t, ok := target.(*TranscriptError)
	return ok && t.Message == e.Message
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore persists transcripts under a base directory, one JSON
// file per agent. Writes are atomic.
type TranscriptStore struct {
	// BaseDir is the transcripts directory
	// Default: ~/.operator-tui/conversations/
	BaseDir string
}

// NewTranscriptStore creates a store under the default directory.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".operator-tui", "conversations"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &TranscriptStore{BaseDir: baseDir}, nil
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save persists a transcript, replacing any previous snapshot of the
// same agent.
func (s *TranscriptStore) Save(tr *Transcript) error {
	if tr.AgentID == "" {
		return &TranscriptError{Message: "transcript has no agent id"}
	}
	if tr.Summary == "" {
		tr.Summary = summarize(tr.Messages)
	}
	tr.UpdatedAt = time.Now()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = tr.UpdatedAt
	}

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return &TranscriptError{Message: "failed to encode transcript", Cause: err}
	}
	if err := util.AtomicWriteFile(s.filePath(tr.AgentID), data, 0o644); err != nil {
		return &TranscriptError{Message: "failed to write transcript", Cause: err}
	}
	return nil
}

// Load retrieves an agent's transcript.
func (s *TranscriptStore) Load(agentID string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(agentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, &TranscriptError{Message: "failed to read transcript", Cause: err}
	}

	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, &TranscriptError{Message: "failed to decode transcript", Cause: err}
	}
	return &tr, nil
}

// List returns all saved transcripts, most recently updated first.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		tr, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip corrupted files
			continue
		}
		metas = append(metas, TranscriptMeta{
			AgentID:      tr.AgentID,
			AgentName:    tr.AgentName,
			Summary:      tr.Summary,
			Model:        tr.Model,
			UpdatedAt:    tr.UpdatedAt,
			MessageCount: len(tr.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds transcripts whose summary, agent name, or message content
// matches the query, case-insensitively.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.AgentName), query) {
			results = append(results, meta)
			continue
		}
		tr, err := s.Load(meta.AgentID)
		if err != nil {
			continue
		}
		for _, msg := range tr.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// Delete removes an agent's transcript.
func (s *TranscriptStore) Delete(agentID string) error {
	if err := os.Remove(s.filePath(agentID)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

func (s *TranscriptStore) filePath(agentID string) string {
	return filepath.Join(s.BaseDir, sanitizeID(agentID)+".json")
}

// sanitizeID keeps agent IDs filesystem-safe.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

// summarize builds a one-line summary from the first user message.
func summarize(msgs []model.Message) string {
	for _, msg := range msgs {
		if msg.Role == model.RoleUser && !msg.IsEmpty() {
			return msg.Preview(50)
		}
	}
	return "New conversation"
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the transcript as a markdown document. Failed
// turns are marked and carry their stderr in a fenced block.
func (t *Transcript) ExportMarkdown() string {
	var b strings.Builder
	b.WriteString("# Conversation with " + t.displayName() + "\n\n")
	if t.Model != "" {
		b.WriteString("Model: " + t.Model + "\n")
	}
	b.WriteString("Date: " + t.UpdatedAt.Format("2006-01-02 15:04") + "\n\n---\n\n")

	for _, msg := range t.Messages {
		b.WriteString("## " + msg.Role.DisplayName())
		if msg.IsError() {
			b.WriteString(" (error)")
		}
		b.WriteString("\n\n")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
		if msg.Stderr != "" {
			b.WriteString("```stderr\n" + msg.Stderr + "\n```\n\n")
		}
		for _, att := range msg.Attachments {
			b.WriteString("- attachment: " + att + "\n")
		}
		if len(msg.Attachments) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ExportJSON renders the transcript as indented JSON.
func (t *Transcript) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

func (t *Transcript) displayName() string {
	if t.AgentName != "" {
		return t.AgentName
	}
	return t.AgentID
}

// =============================================================================
// LISTING FORMAT
// =============================================================================

// FormatList renders transcript metadata as an aligned text table for the
// sessions CLI command.
func FormatList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No saved conversations.\n"
	}

	var b strings.Builder
	b.WriteString(util.PadRight("AGENT", 24))
	b.WriteString(util.PadRight("UPDATED", 18))
	b.WriteString(util.PadRight("MSGS", 6))
	b.WriteString("SUMMARY\n")
	for _, meta := range metas {
		name := meta.AgentName
		if name == "" {
			name = meta.AgentID
		}
		b.WriteString(util.PadRight(util.TruncateWidth(name, 22), 24))
		b.WriteString(util.PadRight(meta.UpdatedAt.Format("2006-01-02 15:04"), 18))
		b.WriteString(util.PadRight(strconv.Itoa(meta.MessageCount), 6))
		b.WriteString(util.TruncateWidth(meta.Summary, 40))
		b.WriteString("\n")
	}
	return b.String()
}

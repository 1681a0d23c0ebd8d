// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package convo maintains the client-side view of each agent conversation.
package convo

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/model"
)

// ErrFetchInFlight is returned when a load is requested while another load
// for the same conversation is still running. Callers treat it as "already
// being handled" and do nothing.
var ErrFetchInFlight = errors.New("conversation fetch already in flight")

// Fetcher is the slice of the backend client the store needs.
type Fetcher interface {
	Conversation(ctx context.Context, agentID string, page, perPage int) (*api.ConversationPage, error)
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the reconciled message sequences of all open conversations.
//
// Each conversation's visible list is deduplicated by message ID and
// ordered chronologically ascending. Reads return snapshot copies;
// mutation happens only under the store lock, so the job poller, the UI,
// and pagination can all touch the same conversation concurrently.
type Store struct {
	mu      sync.Mutex
	fetcher Fetcher
	perPage int
	convs   map[string]*conversation
}

// conversation is the per-agent state. fetching covers both initial and
// older loads; epoch invalidates in-flight fetches when the conversation
// is reloaded or dropped underneath them.
type conversation struct {
	messages    []model.Message
	hasMore     bool
	fetching    bool
	olderFetch  bool
	loadedPages int
	epoch       uint64
}

// NewStore creates a store fetching history pages of the given size.
func NewStore(fetcher Fetcher, perPage int) *Store {
	if perPage < 1 {
		perPage = 20
	}
	return &Store{
		fetcher: fetcher,
		perPage: perPage,
		convs:   make(map[string]*conversation),
	}
}

func (s *Store) conv(agentID string) *conversation {
	c, ok := s.convs[agentID]
	if !ok {
		c = &conversation{hasMore: true}
		s.convs[agentID] = c
	}
	return c
}

// =============================================================================
// LOADING
// =============================================================================

// LoadInitial fetches the newest history page and makes it the
// conversation's visible list, keeping any local-only messages newer than
// the fetched page (optimistic sends the server has not persisted yet).
//
// Blocks until the fetch completes. Returns ErrFetchInFlight if a load for
// this conversation is already running. On fetch failure the previously
// loaded messages are untouched.
func (s *Store) LoadInitial(ctx context.Context, agentID string) error {
	s.mu.Lock()
	c := s.conv(agentID)
	if c.fetching {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	c.fetching = true
	c.epoch++
	epoch := c.epoch
	s.mu.Unlock()

	page, err := s.fetcher.Conversation(ctx, agentID, 1, s.perPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok || c.epoch != epoch {
		// Conversation was dropped or reloaded while we were fetching;
		// this result is no longer relevant.
		return nil
	}
	c.fetching = false
	if err != nil {
		return err
	}

	fetched := pageToMessages(page)
	tail := carryLocalTail(c.messages, fetched)
	c.messages = append(fetched, tail...)
	c.loadedPages = 1
	c.hasMore = page.HasMore()
	return nil
}

// LoadOlder fetches the next older page and prepends it to the visible
// list. A call while another load is running returns ErrFetchInFlight; a
// call when no older history remains is a no-op.
func (s *Store) LoadOlder(ctx context.Context, agentID string) error {
	s.mu.Lock()
	c := s.conv(agentID)
	if c.fetching {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	if !c.hasMore || c.loadedPages == 0 {
		s.mu.Unlock()
		return nil
	}
	c.fetching = true
	c.olderFetch = true
	epoch := c.epoch
	nextPage := c.loadedPages + 1
	s.mu.Unlock()

	page, err := s.fetcher.Conversation(ctx, agentID, nextPage, s.perPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok || c.epoch != epoch {
		return nil
	}
	c.fetching = false
	c.olderFetch = false
	if err != nil {
		return err
	}

	c.messages = mergeLists(pageToMessages(page), c.messages)
	c.loadedPages = nextPage
	c.hasMore = page.HasMore()
	return nil
}

// =============================================================================
// MUTATION
// =============================================================================

// AddMessage inserts or merges one message into a conversation. Insertion
// is idempotent on message ID: re-adding an existing message merges its
// fields in place and never duplicates or reorders the list.
func (s *Store) AddMessage(agentID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conv(agentID)
	c.messages = insertMessage(c.messages, msg)
}

// Drop forgets a conversation's loaded state. In-flight fetches for it
// discard their results on return.
func (s *Store) Drop(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, agentID)
}

// =============================================================================
// READS
// =============================================================================

// Messages returns a snapshot copy of a conversation's visible list,
// chronologically ascending.
func (s *Store) Messages(agentID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok {
		return nil
	}
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of visible messages without copying.
func (s *Store) Len(agentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok {
		return 0
	}
	return len(c.messages)
}

// HasMore reports whether older history remains to be fetched.
func (s *Store) HasMore(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok {
		return false
	}
	return c.hasMore
}

// IsFetchingOlder reports whether a LoadOlder fetch is running, so the UI
// can show a "loading earlier messages" marker at the top.
func (s *Store) IsFetchingOlder(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[agentID]
	if !ok {
		return false
	}
	return c.olderFetch
}

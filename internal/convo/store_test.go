// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package convo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/model"
)

// fakeFetcher serves canned history pages. If block is non-nil, each call
// waits on it before returning, which lets tests hold a fetch in flight.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int]*api.ConversationPage
	err   error
	block chan struct{}
	calls int
}

func (f *fakeFetcher) Conversation(ctx context.Context, agentID string, page, perPage int) (*api.ConversationPage, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.err
	p := f.pages[page]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &api.ConversationPage{Page: page, PerPage: perPage}, nil
	}
	return p, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var storeBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(id string, offset time.Duration) api.ConversationRecord {
	return api.ConversationRecord{
		ID:        id,
		Role:      "user",
		Message:   "content-" + id,
		Timestamp: storeBase.Add(offset),
	}
}

// historyPages builds newest-first pages over records m1..mN (m1 oldest).
func historyPages(total, perPage int) map[int]*api.ConversationPage {
	pages := make(map[int]*api.ConversationPage)
	// Newest overall is mN; page 1 starts at the newest.
	for page := 1; (page-1)*perPage < total; page++ {
		p := &api.ConversationPage{Page: page, PerPage: perPage, Total: total}
		for i := 0; i < perPage; i++ {
			n := total - (page-1)*perPage - i
			if n < 1 {
				break
			}
			p.Messages = append(p.Messages, record("m"+strconv.Itoa(n), time.Duration(n)*time.Second))
		}
		pages[page] = p
	}
	return pages
}

func TestLoadInitial(t *testing.T) {
	fetcher := &fakeFetcher{pages: historyPages(12, 5)}
	store := NewStore(fetcher, 5)

	require.NoError(t, store.LoadInitial(context.Background(), "agent-1"))

	msgs := store.Messages("agent-1")
	require.Len(t, msgs, 5)
	assert.Equal(t, "m8", msgs[0].ID, "oldest of the newest page first")
	assert.Equal(t, "m12", msgs[4].ID, "newest last")
	assert.True(t, store.HasMore("agent-1"))
}

func TestLoadOlderPrepends(t *testing.T) {
	fetcher := &fakeFetcher{pages: historyPages(12, 5)}
	store := NewStore(fetcher, 5)
	ctx := context.Background()

	require.NoError(t, store.LoadInitial(ctx, "agent-1"))
	require.NoError(t, store.LoadOlder(ctx, "agent-1"))

	msgs := store.Messages("agent-1")
	require.Len(t, msgs, 10)
	assert.Equal(t, "m3", msgs[0].ID)
	assert.Equal(t, "m12", msgs[9].ID)
	assert.True(t, store.HasMore("agent-1"))

	// Exhaust history: last page is short.
	require.NoError(t, store.LoadOlder(ctx, "agent-1"))
	msgs = store.Messages("agent-1")
	require.Len(t, msgs, 12)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.False(t, store.HasMore("agent-1"))

	// Further loads are no-ops without fetching.
	calls := fetcher.callCount()
	require.NoError(t, store.LoadOlder(ctx, "agent-1"))
	assert.Equal(t, calls, fetcher.callCount())
}

func TestLoadOlderOverlappingPagesDeduplicate(t *testing.T) {
	// Page 2 repeats one record of page 1, as happens when new messages
	// arrive between fetches and shift the pagination window.
	pages := historyPages(10, 5)
	pages[2].Messages = append([]api.ConversationRecord{record("m6", 6*time.Second)}, pages[2].Messages[:4]...)

	fetcher := &fakeFetcher{pages: pages}
	store := NewStore(fetcher, 5)
	ctx := context.Background()

	require.NoError(t, store.LoadInitial(ctx, "agent-1"))
	require.NoError(t, store.LoadOlder(ctx, "agent-1"))

	msgs := store.Messages("agent-1")
	seen := make(map[string]int)
	for _, m := range msgs {
		seen[m.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "message %s appears %d times", id, n)
	}
}

func TestLoadWhileFetchingReturnsErrFetchInFlight(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{pages: historyPages(12, 5), block: block}
	store := NewStore(fetcher, 5)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- store.LoadInitial(ctx, "agent-1") }()

	// Wait until the fetch is actually in flight.
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, time.Millisecond)

	assert.ErrorIs(t, store.LoadOlder(ctx, "agent-1"), ErrFetchInFlight)
	assert.ErrorIs(t, store.LoadInitial(ctx, "agent-1"), ErrFetchInFlight)

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fetcher.callCount(), "overlapping loads must not fetch")
}

func TestFailedFetchPreservesLoadedState(t *testing.T) {
	fetcher := &fakeFetcher{pages: historyPages(12, 5)}
	store := NewStore(fetcher, 5)
	ctx := context.Background()

	require.NoError(t, store.LoadInitial(ctx, "agent-1"))
	before := store.Messages("agent-1")

	fetcher.mu.Lock()
	fetcher.err = errors.New("backend down")
	fetcher.mu.Unlock()

	assert.Error(t, store.LoadOlder(ctx, "agent-1"))
	assert.Equal(t, before, store.Messages("agent-1"), "failed fetch must not clear state")
	assert.True(t, store.HasMore("agent-1"))
	assert.False(t, store.IsFetchingOlder("agent-1"))

	// And the store recovers: a later fetch works again.
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.mu.Unlock()
	require.NoError(t, store.LoadOlder(ctx, "agent-1"))
	assert.Len(t, store.Messages("agent-1"), 10)
}

func TestDropDiscardsInFlightResult(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{pages: historyPages(12, 5), block: block}
	store := NewStore(fetcher, 5)

	done := make(chan error, 1)
	go func() { done <- store.LoadInitial(context.Background(), "agent-1") }()
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, time.Millisecond)

	store.Drop("agent-1")
	close(block)
	require.NoError(t, <-done)

	assert.Empty(t, store.Messages("agent-1"), "result of a dropped conversation must be discarded")
}

func TestLoadInitialKeepsOptimisticTail(t *testing.T) {
	fetcher := &fakeFetcher{pages: historyPages(5, 5)}
	store := NewStore(fetcher, 5)
	ctx := context.Background()

	// Optimistic send newer than anything on the server.
	optimistic := model.Message{
		ID: "local-1", Role: model.RoleUser, Content: "just sent",
		Timestamp: storeBase.Add(time.Hour),
	}
	store.AddMessage("agent-1", optimistic)

	require.NoError(t, store.LoadInitial(ctx, "agent-1"))

	msgs := store.Messages("agent-1")
	require.Len(t, msgs, 6)
	assert.Equal(t, "local-1", msgs[5].ID, "optimistic message survives the replace, at the end")
}

func TestAddMessageIdempotentUnderConcurrency(t *testing.T) {
	store := NewStore(&fakeFetcher{}, 5)
	msg := model.Message{ID: "m1", Role: model.RoleUser, Content: "hi", Timestamp: storeBase}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddMessage("agent-1", msg)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len("agent-1"))
}

func TestConversationsAreIsolated(t *testing.T) {
	store := NewStore(&fakeFetcher{}, 5)
	store.AddMessage("agent-1", model.Message{ID: "a", Timestamp: storeBase})
	store.AddMessage("agent-2", model.Message{ID: "b", Timestamp: storeBase})

	require.Len(t, store.Messages("agent-1"), 1)
	require.Len(t, store.Messages("agent-2"), 1)
	assert.Equal(t, "a", store.Messages("agent-1")[0].ID)
	assert.Equal(t, "b", store.Messages("agent-2")[0].ID)

	store.Drop("agent-1")
	assert.Empty(t, store.Messages("agent-1"))
	assert.Len(t, store.Messages("agent-2"), 1)
}

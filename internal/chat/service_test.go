// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

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
	"github.com/jeranaias/operator-tui/internal/convo"
	"github.com/jeranaias/operator-tui/internal/jobs"
	"github.com/jeranaias/operator-tui/internal/model"
)

// fakeBackend scripts chat submission, job polling, and history fetches.
type fakeBackend struct {
	mu sync.Mutex

	submitErr  error
	nextJobID  int
	lastReq    api.AsyncChatRequest
	cancelled  []string
	jobs       map[string]*api.JobDetails
	history    map[string]*api.ConversationPage
	historyErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		jobs:    make(map[string]*api.JobDetails),
		history: make(map[string]*api.ConversationPage),
	}
}

func (b *fakeBackend) ChatAsync(ctx context.Context, agentID string, req api.AsyncChatRequest) (*api.AsyncChatResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastReq = req
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	b.nextJobID++
	id := "job-" + strconv.Itoa(b.nextJobID)
	b.jobs[id] = &api.JobDetails{ID: id, Status: api.JobProcessing}
	return &api.AsyncChatResponse{ID: id, Status: api.JobPending}, nil
}

func (b *fakeBackend) CancelJob(ctx context.Context, jobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, jobID)
	if j, ok := b.jobs[jobID]; ok {
		j.Status = api.JobCancelled
	}
	return nil
}

func (b *fakeBackend) GetJob(ctx context.Context, jobID string) (*api.JobDetails, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	j, ok := b.jobs[jobID]
	if !ok {
		return nil, errors.New("job not found")
	}
	cp := *j
	return &cp, nil
}

func (b *fakeBackend) Conversation(ctx context.Context, agentID string, page, perPage int) (*api.ConversationPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.historyErr != nil {
		return nil, b.historyErr
	}
	if p, ok := b.history[agentID]; ok && page == 1 {
		return p, nil
	}
	return &api.ConversationPage{Page: page, PerPage: perPage}, nil
}

func (b *fakeBackend) completeJob(jobID, reply string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs[jobID] = &api.JobDetails{
		ID:     jobID,
		Status: api.JobCompleted,
		Result: &api.JobResult{Message: reply},
	}
}

func newTestService(t *testing.T, backend *fakeBackend) *Service {
	t.Helper()
	store := convo.NewStore(backend, 20)

	var svc *Service
	poller := jobs.NewPoller(backend, jobs.SinkFunc(func(agentID string, msg model.Message) {
		svc.AddMessage(agentID, msg)
	}), &jobs.PollerConfig{
		Interval:            5 * time.Millisecond,
		MaxTransportRetries: 3,
	})

	svc = NewService(backend, store, poller, nil, ServiceConfig{
		Hosting: "radient",
		Model:   "auto",
	})
	t.Cleanup(svc.Shutdown)
	return svc
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond, msg)
}

// =============================================================================
// SEND PATH
// =============================================================================

func TestSendMessageRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend)
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, "agent-1", "  hello there  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", sent.Content)
	assert.NotEmpty(t, sent.ID)

	// Optimistic insert is immediate and the job is loading.
	msgs := svc.Messages("agent-1")
	require.Len(t, msgs, 1)
	assert.Equal(t, sent.ID, msgs[0].ID)
	assert.True(t, svc.IsLoading("agent-1"))

	// The submitted request carried the client message ID.
	assert.Equal(t, sent.ID, backend.lastReq.UserMessageID)
	assert.Equal(t, "radient", backend.lastReq.Hosting)

	// Complete the job; the reply lands as exactly one assistant message.
	backend.completeJob("job-1", "hi, human")
	waitFor(t, func() bool { return len(svc.Messages("agent-1")) == 2 }, "reply should arrive")
	waitFor(t, func() bool { return !svc.IsLoading("agent-1") }, "loading should clear")

	msgs = svc.Messages("agent-1")
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi, human", msgs[1].Content)
}

func TestSendMessageRejectedWhileJobInFlight(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "agent-1", "first", nil)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, "agent-1", "second", nil)
	assert.ErrorIs(t, err, ErrJobInFlight)

	// The rejected send left no trace in the conversation.
	assert.Len(t, svc.Messages("agent-1"), 1)

	// A different conversation is unaffected.
	_, err = svc.SendMessage(ctx, "agent-2", "elsewhere", nil)
	assert.NoError(t, err)
}

func TestSendMessageEmpty(t *testing.T) {
	svc := newTestService(t, newFakeBackend())
	_, err := svc.SendMessage(context.Background(), "agent-1", "   \n  ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, svc.Messages("agent-1"))
}

func TestSendMessageSubmitFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.submitErr = errors.New("backend down")
	svc := newTestService(t, backend)

	_, err := svc.SendMessage(context.Background(), "agent-1", "hello", nil)
	require.Error(t, err)

	// The user message stays, an error message explains, nothing loads.
	msgs := svc.Messages("agent-1")
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.True(t, msgs[1].IsError())
	assert.False(t, svc.IsLoading("agent-1"))

	// Recovery: the next send works once the backend is back.
	backend.mu.Lock()
	backend.submitErr = nil
	backend.mu.Unlock()
	_, err = svc.SendMessage(context.Background(), "agent-1", "retry", nil)
	assert.NoError(t, err)
}

func TestCancelJob(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "agent-1", "long task", nil)
	require.NoError(t, err)

	require.NoError(t, svc.CancelJob(ctx, "agent-1"))
	backend.mu.Lock()
	cancelled := len(backend.cancelled)
	backend.mu.Unlock()
	assert.Equal(t, 1, cancelled)

	// The cancellation flows back through polling as a terminal state.
	waitFor(t, func() bool { return !svc.IsLoading("agent-1") }, "cancel should end loading")
	msgs := svc.Messages("agent-1")
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsError())

	// Cancel with nothing running is a no-op.
	assert.NoError(t, svc.CancelJob(ctx, "agent-1"))
}

// =============================================================================
// CONVERSATION SWITCHING AND HISTORY
// =============================================================================

func TestSwitchConversationLoadsHistory(t *testing.T) {
	backend := newFakeBackend()
	backend.history["agent-1"] = &api.ConversationPage{
		Messages: []api.ConversationRecord{
			{ID: "m2", Role: "assistant", Message: "reply", Timestamp: time.Now()},
			{ID: "m1", Role: "user", Message: "question", Timestamp: time.Now().Add(-time.Minute)},
		},
		Page: 1, PerPage: 20, Total: 2,
	}
	svc := newTestService(t, backend)

	require.NoError(t, svc.SwitchConversation(context.Background(), "agent-1"))
	assert.Equal(t, "agent-1", svc.ActiveConversation())

	msgs := svc.Messages("agent-1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.False(t, svc.HasMore("agent-1"))
}

func TestSwitchConversationStopsPreviousPolling(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "agent-1", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SwitchConversation(ctx, "agent-1"))
	require.True(t, svc.IsLoading("agent-1"))

	require.NoError(t, svc.SwitchConversation(ctx, "agent-2"))

	assert.False(t, svc.IsLoading("agent-1"), "previous conversation's poller must stop")
	assert.Equal(t, "agent-2", svc.ActiveConversation())
}

func TestSwitchConversationFetchFailureReturnsError(t *testing.T) {
	backend := newFakeBackend()
	backend.historyErr = errors.New("connection refused")
	svc := newTestService(t, backend)

	err := svc.SwitchConversation(context.Background(), "agent-1")
	assert.Error(t, err)
	assert.Equal(t, "agent-1", svc.ActiveConversation(), "switch sticks even when the load fails")
}

func TestLoadOlderMessagesSwallowsInFlight(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend)
	ctx := context.Background()

	require.NoError(t, svc.SwitchConversation(ctx, "agent-1"))

	// Nothing older exists; repeated calls are quiet no-ops.
	assert.NoError(t, svc.LoadOlderMessages(ctx, "agent-1"))
	assert.NoError(t, svc.LoadOlderMessages(ctx, "agent-1"))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates sending messages: optimistic inserts, async
// job submission, polling, history pagination, and the offline cache.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/cache"
	"github.com/jeranaias/operator-tui/internal/convo"
	"github.com/jeranaias/operator-tui/internal/jobs"
	"github.com/jeranaias/operator-tui/internal/model"
)

// Sentinel errors.
var (
	ErrEmptyMessage = errors.New("chat: message is empty")
	ErrJobInFlight  = errors.New("chat: a reply is still being generated for this conversation")
)

// Backend is the slice of the Local Operator client the service needs
// beyond what the store and poller already hold.
type Backend interface {
	ChatAsync(ctx context.Context, agentID string, req api.AsyncChatRequest) (*api.AsyncChatResponse, error)
	CancelJob(ctx context.Context, jobID string) error
}

// =============================================================================
// SERVICE
// =============================================================================

// ServiceConfig holds the chat defaults applied to every send.
type ServiceConfig struct {
	// Hosting selects where the agent's model runs (e.g. "radient").
	Hosting string

	// Model is the default model identifier.
	Model string

	// Options tunes generation.
	Options api.ChatOptions
}

// Service owns one conversation store and one job poller and exposes the
// operations the UI layers call. It is an explicit handle: construct it in
// main, pass it down. Safe for concurrent use.
type Service struct {
	backend Backend
	store   *convo.Store
	poller  *jobs.Poller
	cache   *cache.Cache // optional, may be nil
	config  ServiceConfig

	mu     sync.Mutex
	active string
}

// NewService wires a service from its collaborators. cache may be nil to
// disable offline history.
func NewService(backend Backend, store *convo.Store, poller *jobs.Poller, cache *cache.Cache, config ServiceConfig) *Service {
	return &Service{
		backend: backend,
		store:   store,
		poller:  poller,
		cache:   cache,
		config:  config,
	}
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage submits content to the agent and returns the optimistic user
// message that was inserted into the conversation.
//
// While a job is still running for this conversation the send is rejected
// with ErrJobInFlight; the input stays with the caller. On submit failure
// the optimistic message remains (the user typed it) and a synthesized
// error message explains what happened; no loading state is left behind.
func (s *Service) SendMessage(ctx context.Context, agentID, content string, attachments []string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if s.poller.IsPolling(agentID) {
		return model.Message{}, ErrJobInFlight
	}

	msg := model.NewUserMessage(content, attachments)
	s.AddMessage(agentID, msg)

	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	opts := cfg.Options
	resp, err := s.backend.ChatAsync(ctx, agentID, api.AsyncChatRequest{
		Prompt:        content,
		Hosting:       cfg.Hosting,
		Model:         cfg.Model,
		Options:       &opts,
		UserMessageID: msg.ID,
		Attachments:   attachments,
		Persist:       true,
	})
	if err != nil {
		s.AddMessage(agentID, model.NewErrorMessage("Could not send message: "+err.Error()))
		return msg, err
	}

	if err := s.poller.StartPolling(agentID, resp.ID); err != nil {
		s.AddMessage(agentID, model.NewErrorMessage("Could not track the reply: "+err.Error()))
		return msg, err
	}
	return msg, nil
}

// CancelJob asks the backend to cancel the conversation's running job.
// The poller keeps polling; the cancellation lands as a terminal status
// and produces the usual "Request cancelled" message.
func (s *Service) CancelJob(ctx context.Context, agentID string) error {
	st := s.poller.State(agentID)
	if !st.IsLoading {
		return nil
	}
	return s.backend.CancelJob(ctx, st.JobID)
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadOlderMessages fetches the next older history page. ErrFetchInFlight
// from an overlapping request is swallowed; the first request is already
// doing the work.
func (s *Service) LoadOlderMessages(ctx context.Context, agentID string) error {
	err := s.store.LoadOlder(ctx, agentID)
	if errors.Is(err, convo.ErrFetchInFlight) {
		return nil
	}
	return err
}

// SwitchConversation makes agentID the active conversation: the previous
// conversation's poll goroutine is stopped and the newest history page is
// loaded. When the backend is unreachable the cached transcript is shown
// instead and the fetch error is returned for the UI to banner.
func (s *Service) SwitchConversation(ctx context.Context, agentID string) error {
	s.mu.Lock()
	previous := s.active
	s.active = agentID
	s.mu.Unlock()

	if previous != "" && previous != agentID {
		s.poller.StopPolling(previous)
	}

	err := s.store.LoadInitial(ctx, agentID)
	if err != nil && !errors.Is(err, convo.ErrFetchInFlight) {
		s.hydrateFromCache(agentID)
		return err
	}

	if s.cache != nil {
		if cerr := s.cache.PutAll(agentID, s.store.Messages(agentID)); cerr != nil {
			log.Printf("chat: cache write failed: %v", cerr)
		}
	}
	return nil
}

// SetConfig replaces the chat defaults. It applies to subsequent sends;
// in-flight requests keep the values they started with.
func (s *Service) SetConfig(config ServiceConfig) {
	s.mu.Lock()
	s.config = config
	s.mu.Unlock()
}

// ActiveConversation returns the agent ID of the active conversation.
func (s *Service) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// hydrateFromCache backfills the store from the offline cache so the user
// still sees the transcript while the backend is down.
func (s *Service) hydrateFromCache(agentID string) {
	if s.cache == nil || s.store.Len(agentID) > 0 {
		return
	}
	msgs, err := s.cache.Messages(agentID, 200)
	if err != nil {
		log.Printf("chat: cache read failed: %v", err)
		return
	}
	for _, msg := range msgs {
		s.store.AddMessage(agentID, msg)
	}
}

// =============================================================================
// STORE AND POLLER VIEWS
// =============================================================================

// AddMessage inserts a message into the conversation and mirrors it to
// the offline cache. The job poller delivers through here.
func (s *Service) AddMessage(agentID string, msg model.Message) {
	s.store.AddMessage(agentID, msg)
	if s.cache != nil {
		if err := s.cache.Put(agentID, msg); err != nil {
			log.Printf("chat: cache write failed: %v", err)
		}
	}
}

// Messages returns the conversation's visible transcript.
func (s *Service) Messages(agentID string) []model.Message {
	return s.store.Messages(agentID)
}

// HasMore reports whether older history remains.
func (s *Service) HasMore(agentID string) bool {
	return s.store.HasMore(agentID)
}

// IsFetchingOlder reports whether a pagination fetch is running.
func (s *Service) IsFetchingOlder(agentID string) bool {
	return s.store.IsFetchingOlder(agentID)
}

// JobState returns the poller snapshot for a conversation.
func (s *Service) JobState(agentID string) jobs.State {
	return s.poller.State(agentID)
}

// IsLoading reports whether a reply is being generated.
func (s *Service) IsLoading(agentID string) bool {
	return s.poller.State(agentID).IsLoading
}

// Shutdown stops all poll goroutines. Call before exit.
func (s *Service) Shutdown() {
	s.poller.StopAll()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package jobs polls asynchronous chat jobs until they reach a terminal
// state and delivers the outcome into the conversation store.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/model"
)

// Defaults for poller behavior.
const (
	// DefaultInterval is the delay between status requests.
	DefaultInterval = 2 * time.Second

	// DefaultMaxTransportRetries is how many consecutive transport
	// failures are tolerated before the job is declared lost.
	DefaultMaxTransportRetries = 5
)

// Sentinel errors.
var (
	ErrNoJob     = errors.New("no job id to poll")
	ErrJobActive = errors.New("a job is already running for this conversation")
)

// Client is the slice of the backend client the poller needs.
type Client interface {
	GetJob(ctx context.Context, jobID string) (*api.JobDetails, error)
}

// Sink receives the single message a finished job produces. The
// conversation store satisfies this.
type Sink interface {
	AddMessage(agentID string, msg model.Message)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(agentID string, msg model.Message)

// AddMessage calls f.
func (f SinkFunc) AddMessage(agentID string, msg model.Message) {
	f(agentID, msg)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// PollerConfig holds configuration options for the poller.
type PollerConfig struct {
	// Interval between status requests (default: 2s)
	Interval time.Duration

	// MaxTransportRetries before giving up on a job (default: 5)
	MaxTransportRetries int

	// OnUpdate is called after every observable state change, outside
	// the poller lock. The TUI uses it to wake its event loop.
	OnUpdate func(agentID string)
}

// DefaultPollerConfig returns the default poller configuration.
func DefaultPollerConfig() *PollerConfig {
	return &PollerConfig{
		Interval:            DefaultInterval,
		MaxTransportRetries: DefaultMaxTransportRetries,
	}
}

// =============================================================================
// POLLER
// =============================================================================

// State is a snapshot of one conversation's job activity.
type State struct {
	JobID     string
	Status    api.JobStatus
	IsLoading bool
}

// Poller tracks at most one in-flight job per conversation. Each tracked
// job gets its own goroutine that issues strictly sequential status
// requests: the first immediately, then one per interval, each only after
// the previous response was handled.
type Poller struct {
	client   Client
	sink     Sink
	interval time.Duration
	retries  int
	onUpdate func(agentID string)

	mu     sync.Mutex
	active map[string]*watch
}

// watch is the mutable state of one polled job. Owned by the poller lock
// except for cancel/done, which are set once.
type watch struct {
	jobID  string
	status api.JobStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller delivering results into sink.
func NewPoller(client Client, sink Sink, config *PollerConfig) *Poller {
	if config == nil {
		config = DefaultPollerConfig()
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.MaxTransportRetries == 0 {
		config.MaxTransportRetries = DefaultMaxTransportRetries
	}
	return &Poller{
		client:   client,
		sink:     sink,
		interval: config.Interval,
		retries:  config.MaxTransportRetries,
		onUpdate: config.OnUpdate,
		active:   make(map[string]*watch),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// StartPolling begins polling jobID for the given conversation.
//
// Returns ErrNoJob for an empty job ID and ErrJobActive when a different
// job is already being polled for this conversation. Starting the same
// job twice is a no-op.
func (p *Poller) StartPolling(agentID, jobID string) error {
	if jobID == "" {
		return ErrNoJob
	}

	p.mu.Lock()
	if w, ok := p.active[agentID]; ok {
		p.mu.Unlock()
		if w.jobID == jobID {
			return nil
		}
		return ErrJobActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{
		jobID:  jobID,
		status: api.JobPending,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.active[agentID] = w
	p.mu.Unlock()

	go p.poll(ctx, agentID, w)
	p.notify(agentID)
	return nil
}

// StopPolling cancels the poll goroutine for a conversation and waits for
// it to exit. After StopPolling returns, no message will be delivered for
// the abandoned job. Safe to call when nothing is polling.
func (p *Poller) StopPolling(agentID string) {
	p.mu.Lock()
	w, ok := p.active[agentID]
	p.mu.Unlock()
	if !ok {
		return
	}

	w.cancel()
	<-w.done

	p.mu.Lock()
	if p.active[agentID] == w {
		delete(p.active, agentID)
	}
	p.mu.Unlock()
}

// StopAll stops every active poll goroutine and waits for them.
func (p *Poller) StopAll() {
	p.mu.Lock()
	watches := make(map[string]*watch, len(p.active))
	for id, w := range p.active {
		watches[id] = w
	}
	p.mu.Unlock()

	for _, w := range watches {
		w.cancel()
	}
	for id, w := range watches {
		<-w.done
		p.mu.Lock()
		if p.active[id] == w {
			delete(p.active, id)
		}
		p.mu.Unlock()
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// State returns a snapshot of the conversation's job activity. The zero
// State means nothing is running.
func (p *Poller) State(agentID string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.active[agentID]
	if !ok {
		return State{}
	}
	return State{JobID: w.jobID, Status: w.status, IsLoading: true}
}

// IsPolling reports whether a job is being polled for the conversation.
func (p *Poller) IsPolling(agentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[agentID]
	return ok
}

// =============================================================================
// POLL LOOP
// =============================================================================

func (p *Poller) poll(ctx context.Context, agentID string, w *watch) {
	defer close(w.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		job, err := p.client.GetJob(ctx, w.jobID)
		if ctx.Err() != nil {
			return
		}

		switch {
		case err != nil:
			failures++
			if failures >= p.retries {
				p.finish(ctx, agentID, w, model.NewErrorMessage(
					"Lost contact with the Local Operator backend while waiting for a reply. "+
						"The job may still be running; check the backend and try again."))
				return
			}
		case job.Status.IsTerminal():
			p.setStatus(agentID, w, job.Status)
			p.finish(ctx, agentID, w, terminalMessage(job))
			return
		default:
			failures = 0
			p.setStatus(agentID, w, job.Status)
			p.notify(agentID)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// setStatus records the last observed status, unless the watch was
// superseded.
func (p *Poller) setStatus(agentID string, w *watch, status api.JobStatus) {
	p.mu.Lock()
	if p.active[agentID] == w {
		w.status = status
	}
	p.mu.Unlock()
}

// finish clears the job state and delivers the outcome message exactly
// once. A watch that was cancelled or superseded delivers nothing.
func (p *Poller) finish(ctx context.Context, agentID string, w *watch, msg model.Message) {
	p.mu.Lock()
	if ctx.Err() != nil || p.active[agentID] != w {
		p.mu.Unlock()
		return
	}
	delete(p.active, agentID)
	p.mu.Unlock()

	p.sink.AddMessage(agentID, msg)
	p.notify(agentID)
}

func (p *Poller) notify(agentID string) {
	if p.onUpdate != nil {
		p.onUpdate(agentID)
	}
}

// =============================================================================
// OUTCOME MESSAGES
// =============================================================================

// terminalMessage builds the one message a finished job contributes to
// the conversation.
func terminalMessage(job *api.JobDetails) model.Message {
	switch job.Status {
	case api.JobCompleted:
		if job.Result == nil || job.Result.Message == "" {
			return model.NewErrorMessage("The agent finished but returned no reply.")
		}
		msg := model.NewAssistantMessage(job.Result.Message)
		msg.Stderr = job.Result.Stderr
		msg.Attachments = job.Result.Attachments
		if job.Result.ExecutionSecs > 0 {
			msg.ExecutionTime = time.Duration(job.Result.ExecutionSecs * float64(time.Second))
		}
		return msg

	case api.JobCancelled:
		return model.NewErrorMessage("Request cancelled.")

	default: // failed
		diagnostic := job.ErrorText
		if diagnostic == "" && job.Result != nil {
			diagnostic = job.Result.Message
		}
		if diagnostic == "" {
			diagnostic = "The agent failed to process this request."
		}
		msg := model.NewErrorMessage(diagnostic)
		if job.Result != nil {
			msg.Stderr = job.Result.Stderr
		}
		return msg
	}
}

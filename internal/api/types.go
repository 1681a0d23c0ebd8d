// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "time"

// =============================================================================
// JOB STATUS
// =============================================================================

// JobStatus represents the lifecycle state of an asynchronous chat job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether the job has reached a final state and will
// never transition again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// =============================================================================
// AGENTS
// =============================================================================

// Agent describes one backend agent. Each agent owns one conversation.
type Agent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Hosting     string    `json:"hosting,omitempty"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_date,omitempty"`
}

// CreateAgentRequest is the body for POST /v1/agents.
type CreateAgentRequest struct {
	Name    string `json:"name"`
	Hosting string `json:"hosting,omitempty"`
	Model   string `json:"model,omitempty"`
}

// =============================================================================
// ASYNC CHAT
// =============================================================================

// ChatOptions tunes generation for a single chat request.
type ChatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// AsyncChatRequest is the body for POST /v1/agents/{id}/chat/async.
// UserMessageID carries the client-generated UUID of the optimistic user
// message so the server's echo of it deduplicates on the client.
type AsyncChatRequest struct {
	Prompt        string       `json:"prompt"`
	Hosting       string       `json:"hosting,omitempty"`
	Model         string       `json:"model,omitempty"`
	Options       *ChatOptions `json:"options,omitempty"`
	UserMessageID string       `json:"user_message_id,omitempty"`
	Attachments   []string     `json:"attachments,omitempty"`
	Persist       bool         `json:"persist_conversation"`
}

// AsyncChatResponse is the server's acknowledgement of an async chat
// submission. Only the job ID matters to the client.
type AsyncChatResponse struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status,omitempty"`
}

// =============================================================================
// JOBS
// =============================================================================

// JobResult is the payload attached to a completed job.
type JobResult struct {
	Message       string   `json:"message"`
	Stderr        string   `json:"stderr,omitempty"`
	Attachments   []string `json:"files,omitempty"`
	ExecutionSecs float64  `json:"execution_time,omitempty"`
}

// JobDetails is the response of GET /v1/jobs/{id}.
type JobDetails struct {
	ID        string     `json:"id"`
	AgentID   string     `json:"agent_id,omitempty"`
	Status    JobStatus  `json:"status"`
	Prompt    string     `json:"prompt,omitempty"`
	Result    *JobResult `json:"result,omitempty"`
	ErrorText string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// =============================================================================
// CONVERSATION HISTORY
// =============================================================================

// ConversationRecord is one message as the server stores it. The server
// speaks its own field names; conversion to model.Message happens in the
// conversation store.
type ConversationRecord struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status,omitempty"`
	Stderr        string    `json:"stderr,omitempty"`
	Files         []string  `json:"files,omitempty"`
	ExecutionSecs float64   `json:"execution_time,omitempty"`
}

// ConversationPage is one newest-first page of conversation history.
type ConversationPage struct {
	Messages []ConversationRecord `json:"messages"`
	Page     int                  `json:"page"`
	PerPage  int                  `json:"per_page"`
	Total    int                  `json:"total"`
}

// HasMore reports whether older pages remain beyond this one. A short page
// also means the end was reached even if Total is stale.
func (p *ConversationPage) HasMore() bool {
	if len(p.Messages) < p.PerPage {
		return false
	}
	return p.Page*p.PerPage < p.Total
}

// =============================================================================
// ENVELOPE
// =============================================================================

// crudResponse is the envelope the backend wraps every JSON payload in.
type crudResponse[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Result  T      `json:"result"`
}

// agentList is the envelope payload for GET /v1/agents.
type agentList struct {
	Agents  []Agent `json:"agents"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Total   int     `json:"total"`
}

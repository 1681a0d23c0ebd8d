// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Local Operator backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Local Operator client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeBadRequest
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeServer
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = &ClientError{Type: ErrTypeNotRunning, Message: "Local Operator backend is not running"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrJobNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "job not found"}
	ErrAgentNotFound   = &ClientError{Type: ErrTypeNotFound, Message: "agent not found"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from backend"}
)

// IsNotRunning reports whether err means the backend is unreachable.
func IsNotRunning(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeNotRunning || ce.Type == ErrTypeConnection
	}
	return false
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeNotFound
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Local Operator client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:1111)
	// Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows.
	BaseURL string

	// Timeout for individual requests (default: 30s)
	Timeout time.Duration

	// PerPage is the page size for conversation history fetches (default: 20)
	PerPage int

	// RequestsPerSec caps the request rate against the local backend
	// (default: 10). Polling plus UI refreshes can otherwise hammer a
	// busy backend.
	RequestsPerSec float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://127.0.0.1:1111",
		Timeout:        30 * time.Second,
		PerPage:        20,
		RequestsPerSec: 10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Local Operator backend.
//
// The Client is thread-safe for concurrent use: the job poller, the
// conversation store, and the UI all share one instance.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:1111"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PerPage == 0 {
		config.PerPage = 20
	}
	if config.RequestsPerSec == 0 {
		config.RequestsPerSec = 10
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), int(config.RequestsPerSec)),
	}
}

// PerPage returns the configured conversation page size.
func (c *Client) PerPage() int {
	return c.config.PerPage
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health verifies that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	var result struct {
		Status int `json:"status"`
	}
	return c.get(ctx, "/health", &result)
}

// =============================================================================
// AGENTS
// =============================================================================

// ListAgents returns all agents known to the backend.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	agents := make([]Agent, 0)
	page := 1
	for {
		var env crudResponse[agentList]
		path := "/v1/agents?page=" + strconv.Itoa(page) + "&per_page=50"
		if err := c.get(ctx, path, &env); err != nil {
			return nil, err
		}
		agents = append(agents, env.Result.Agents...)
		if len(env.Result.Agents) < 50 || len(agents) >= env.Result.Total {
			return agents, nil
		}
		page++
	}
}

// GetAgent returns a single agent by ID.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	var env crudResponse[Agent]
	if err := c.get(ctx, "/v1/agents/"+url.PathEscape(agentID), &env); err != nil {
		return nil, err
	}
	if env.Result.ID == "" {
		return nil, ErrAgentNotFound
	}
	agent := env.Result
	return &agent, nil
}

// CreateAgent creates a new agent and returns it.
func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	var env crudResponse[Agent]
	if err := c.post(ctx, "/v1/agents", req, &env); err != nil {
		return nil, err
	}
	if env.Result.ID == "" {
		return nil, ErrInvalidResponse
	}
	agent := env.Result
	return &agent, nil
}

// =============================================================================
// ASYNC CHAT
// =============================================================================

// ChatAsync submits a prompt to an agent and returns the job that will
// carry the reply. The returned job ID is polled via GetJob.
func (c *Client) ChatAsync(ctx context.Context, agentID string, req AsyncChatRequest) (*AsyncChatResponse, error) {
	var env crudResponse[AsyncChatResponse]
	path := "/v1/agents/" + url.PathEscape(agentID) + "/chat/async"
	if err := c.post(ctx, path, req, &env); err != nil {
		return nil, err
	}
	if env.Result.ID == "" {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "backend accepted chat but returned no job id",
		}
	}
	resp := env.Result
	return &resp, nil
}

// =============================================================================
// JOBS
// =============================================================================

// GetJob returns the current status and, once terminal, the result of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobDetails, error) {
	var env crudResponse[JobDetails]
	if err := c.get(ctx, "/v1/jobs/"+url.PathEscape(jobID), &env); err != nil {
		return nil, err
	}
	if env.Result.Status == "" {
		return nil, ErrInvalidResponse
	}
	job := env.Result
	return &job, nil
}

// CancelJob asks the backend to cancel a queued or processing job.
// Cancelling an already-terminal job is not an error.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/jobs/"+url.PathEscape(jobID), nil, nil)
}

// =============================================================================
// CONVERSATION HISTORY
// =============================================================================

// Conversation fetches one page of an agent's message history.
// Page 1 is the newest page; messages within a page are newest-first.
func (c *Client) Conversation(ctx context.Context, agentID string, page, perPage int) (*ConversationPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = c.config.PerPage
	}

	var env crudResponse[ConversationPage]
	path := "/v1/agents/" + url.PathEscape(agentID) + "/conversation?page=" +
		strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	result := env.Result
	if result.PerPage == 0 {
		result.PerPage = perPage
	}
	if result.Page == 0 {
		result.Page = page
	}
	return &result, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// get issues a rate-limited GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post issues a rate-limited POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.wrapTransportError(err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeBadRequest, Message: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromStatus(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// wrapTransportError maps low-level transport failures to typed errors.
func (c *Client) wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: "cannot reach Local Operator backend", Cause: err}
}

// errorFromStatus maps HTTP error statuses to typed errors. The body's
// message field is carried along when present.
func (c *Client) errorFromStatus(resp *http.Response) error {
	var env struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &env)
	detail := env.Message
	if detail == "" {
		detail = env.Detail
	}
	if detail == "" {
		detail = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &ClientError{Type: ErrTypeNotFound, Message: detail}
	case resp.StatusCode == http.StatusRequestTimeout:
		return ErrTimeout
	case resp.StatusCode >= 500:
		return &ClientError{Type: ErrTypeServer, Message: "backend error: " + detail}
	default:
		return &ClientError{Type: ErrTypeBadRequest, Message: detail}
	}
}

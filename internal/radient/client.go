// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package radient provides the client for the Radient cloud service.
//
// Radient hosts the models a Local Operator agent can run against and
// tracks account credit balance. This package implements model listing,
// credit queries, and API key verification.
package radient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Configuration constants for the Radient API.
const (
	// DefaultBaseURL is the base URL for the Radient API.
	DefaultBaseURL = "https://api.radienthq.com"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts for transient errors.
	DefaultMaxRetries = 3

	// maxResponseSize caps response bodies to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024
)

// Sentinel errors.
var (
	ErrNoAPIKey     = errors.New("radient: no API key configured")
	ErrUnauthorized = errors.New("radient: API key rejected")
	ErrRateLimited  = errors.New("radient: rate limited")
)

// APIError is a non-2xx response from the Radient API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("radient: API error %d: %s", e.StatusCode, e.Message)
}

// =============================================================================
// TYPES
// =============================================================================

// ModelPricing holds per-token prices in credits.
type ModelPricing struct {
	Prompt     float64 `json:"prompt"`
	Completion float64 `json:"completion"`
}

// ModelInfo describes one hosted model.
type ModelInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Pricing     ModelPricing `json:"pricing"`
	Context     int          `json:"context_length,omitempty"`
}

// Credits is the account credit balance.
type Credits struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency,omitempty"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the Radient API. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a Radient client for the given API key. The key may be
// empty; calls then fail with ErrNoAPIKey, which the UI renders as a
// "cloud not configured" state rather than an error.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithBaseURL overrides the API base URL (used by tests and self-hosters).
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// WithMaxRetries overrides the retry attempt count.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a loggable description of the API key.
// Never exposes key fragments; uses a fingerprint instead.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.KeyFingerprint())
}

// KeyFingerprint returns a short SHA-256 fingerprint of the API key,
// safe to log and display.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// API OPERATIONS
// =============================================================================

// ListModels returns the hosted models available to this account.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var result struct {
		Data []ModelInfo `json:"data"`
	}
	if err := c.get(ctx, "/v1/models", &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetCredits returns the account credit balance.
func (c *Client) GetCredits(ctx context.Context) (*Credits, error) {
	var credits Credits
	if err := c.get(ctx, "/v1/credits", &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// VerifyKey checks that the configured API key is accepted.
func (c *Client) VerifyKey(ctx context.Context) error {
	var result struct {
		Valid bool `json:"valid"`
	}
	if err := c.get(ctx, "/v1/auth/verify", &result); err != nil {
		return err
	}
	if !result.Valid {
		return ErrUnauthorized
	}
	return nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// get issues an authenticated GET with retry and decodes JSON into out.
// Retries on 429 and 5xx with exponential backoff. Requests and responses
// are logged without headers or bodies; the key never reaches the log.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("radient: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		log.Printf("radient: GET %s", path)
		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("radient: request failed: %w", err)
			continue
		}
		log.Printf("radient: %d %s (%v)", resp.StatusCode, path, time.Since(start))

		retryable, err := c.handleResponse(resp, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// handleResponse decodes a success body or maps an error status. The bool
// reports whether the failure is worth retrying.
func (c *Client) handleResponse(resp *http.Response, out any) (bool, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return true, fmt.Errorf("radient: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return false, nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return false, fmt.Errorf("radient: decode response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return false, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, ErrRateLimited
	case resp.StatusCode >= 500:
		return true, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	default:
		return false, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error.Message != "" {
			return env.Error.Message
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

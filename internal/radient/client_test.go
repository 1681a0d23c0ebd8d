// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package radient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNoAPIKey(t *testing.T) {
	client := NewClient("")

	if client.IsConfigured() {
		t.Error("empty key should not be configured")
	}
	if _, err := client.ListModels(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestKeyFingerprintNeverExposesKey(t *testing.T) {
	key := "radient-secret-key-12345"
	client := NewClient(key)

	fp := client.KeyFingerprint()
	if len(fp) != 8 {
		t.Errorf("fingerprint length = %d, want 8", len(fp))
	}
	masked := client.APIKeyMasked()
	if strings.Contains(masked, "secret") || strings.Contains(masked, "12345") {
		t.Errorf("masked key leaks key material: %s", masked)
	}
	if !strings.Contains(masked, fp) {
		t.Errorf("masked key should carry the fingerprint: %s", masked)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": [
			{"id": "auto", "name": "Radient Auto", "pricing": {"prompt": 0.1, "completion": 0.2}},
			{"id": "gpt-4o", "name": "GPT-4o", "pricing": {"prompt": 1, "completion": 2}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("key-1").WithBaseURL(srv.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].ID != "auto" || models[0].Pricing.Completion != 0.2 {
		t.Errorf("unexpected model %+v", models[0])
	}
}

func TestGetCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance": 12.5, "currency": "USD"}`))
	}))
	defer srv.Close()

	client := NewClient("key-1").WithBaseURL(srv.URL)
	credits, err := client.GetCredits(context.Background())
	if err != nil {
		t.Fatalf("GetCredits() error: %v", err)
	}
	if credits.Balance != 12.5 {
		t.Errorf("balance = %v, want 12.5", credits.Balance)
	}
}

func TestVerifyKeyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key").WithBaseURL(srv.URL)
	if err := client.VerifyKey(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"balance": 1}`))
	}))
	defer srv.Close()

	client := NewClient("key-1").WithBaseURL(srv.URL).WithMaxRetries(3)
	credits, err := client.GetCredits(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if credits.Balance != 1 {
		t.Errorf("balance = %v, want 1", credits.Balance)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad request"}`))
	}))
	defer srv.Close()

	client := NewClient("key-1").WithBaseURL(srv.URL).WithMaxRetries(3)
	_, err := client.GetCredits(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx should not retry, got %d attempts", calls.Load())
	}
}

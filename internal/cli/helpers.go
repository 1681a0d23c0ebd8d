// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared plumbing for CLI command handlers.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/config"
	"github.com/jeranaias/operator-tui/internal/radient"
	"github.com/jeranaias/operator-tui/internal/ui/components"
)

// LoadConfig loads the configuration with CLI overrides applied on top.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	// CLI flags beat both file and environment.
	if args.Host != "" {
		cfg.Server.BaseURL = args.Host
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}
	if args.Hosting != "" {
		cfg.Chat.Hosting = args.Hosting
	}
	return cfg, nil
}

// BuildClient creates the backend client from resolved configuration.
func BuildClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        cfg.Server.BaseURL,
		Timeout:        time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		PerPage:        cfg.Server.PerPage,
		RequestsPerSec: cfg.Server.RequestsPerSec,
	})
}

// BuildRadient creates the Radient client. Returns an unconfigured client
// when no API key is set; callers check IsConfigured.
func BuildRadient(cfg *config.Config) *radient.Client {
	c := radient.NewClient(cfg.Radient.APIKey)
	if cfg.Radient.BaseURL != "" {
		c = c.WithBaseURL(cfg.Radient.BaseURL)
	}
	return c
}

// resolveAgent finds the agent to talk to. An empty selector picks the
// first agent on the backend; otherwise match by ID, then by name.
func resolveAgent(ctx context.Context, client *api.Client, selector string) (*api.Agent, error) {
	agents, err := client.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents on the backend; create one with: operator-tui agents create <name>")
	}
	if selector == "" {
		return &agents[0], nil
	}
	for i := range agents {
		if agents[i].ID == selector {
			return &agents[i], nil
		}
	}
	for i := range agents {
		if strings.EqualFold(agents[i].Name, selector) {
			return &agents[i], nil
		}
	}
	return nil, fmt.Errorf("agent %q not found", selector)
}

// waitForJob polls a job until it reaches a terminal state. The first
// check is immediate, then one per interval.
func waitForJob(ctx context.Context, client *api.Client, jobID string, interval time.Duration) (*api.JobDetails, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := client.GetJob(ctx, jobID)
		if err == nil && job.Status.IsTerminal() {
			return job, nil
		}
		if err != nil && !api.IsTimeout(err) && !api.IsNotRunning(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// displayResponse prints an agent reply, markdown-rendered on a TTY and
// raw otherwise.
func displayResponse(content string) {
	if !IsStdoutTTY() {
		fmt.Println(content)
		return
	}
	renderer, err := components.NewMarkdownRenderer(GetTerminalWidth()-2, true)
	if err != nil {
		fmt.Println(content)
		return
	}
	fmt.Println(strings.TrimRight(renderer.Render(content), "\n"))
}

// jobOutcome converts a terminal job into printable output. The error
// covers failed and cancelled jobs.
func jobOutcome(job *api.JobDetails) (reply string, stderr string, err error) {
	switch job.Status {
	case api.JobCompleted:
		if job.Result == nil || job.Result.Message == "" {
			return "", "", fmt.Errorf("the agent finished but returned no reply")
		}
		return job.Result.Message, job.Result.Stderr, nil
	case api.JobCancelled:
		return "", "", fmt.Errorf("request cancelled")
	default:
		if job.ErrorText != "" {
			return "", "", fmt.Errorf("agent failed: %s", job.ErrorText)
		}
		if job.Result != nil && job.Result.Message != "" {
			return "", "", fmt.Errorf("agent failed: %s", job.Result.Message)
		}
		return "", "", fmt.Errorf("agent failed without detail")
	}
}

// formatNumber renders n with thousands separators for status output.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

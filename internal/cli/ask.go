// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Short:   Ask a single question and print the reply
//
// Examples:
//   operator-tui ask "What is a goroutine?"
//   operator-tui ask --agent research "Summarize this repo"
//   operator-tui ask --model gpt-4o "..." | less
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
)

// askTimeout bounds the whole ask round trip, submission through reply.
const askTimeout = 10 * time.Minute

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	Exit(handleAsk(args))
}

func handleAsk(args Args) error {
	if args.Query == "" {
		return ErrMissingArgument("question", `operator-tui ask "your question"`)
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := BuildClient(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, askTimeout)
	defer cancelTimeout()

	agent, err := resolveAgent(ctx, client, args.Agent)
	if err != nil {
		return err
	}

	resp, err := client.ChatAsync(ctx, agent.ID, api.AsyncChatRequest{
		Prompt:  args.Query,
		Hosting: cfg.Chat.Hosting,
		Model:   cfg.Chat.Model,
		Persist: true,
	})
	if err != nil {
		return err
	}

	if !args.Quiet && IsStdoutTTY() {
		fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[Agent]"), agent.Name)
	}

	interval := time.Duration(cfg.Server.PollIntervalSecs) * time.Second
	job, err := waitForJob(ctx, client, resp.ID, interval)
	if err != nil {
		if ctx.Err() != nil {
			// Best effort: tell the backend to stop working on it.
			cancelCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelFn()
			_ = client.CancelJob(cancelCtx, resp.ID)
		}
		return err
	}

	reply, stderr, err := jobOutcome(job)
	if err != nil {
		return err
	}

	displayResponse(reply)
	if stderr != "" && args.Verbose {
		fmt.Fprintln(os.Stderr, infoStyle.Render(stderr))
	}
	return nil
}

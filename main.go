// operator-tui - A terminal client for the Local Operator backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/cache"
	svc "github.com/jeranaias/operator-tui/internal/chat"
	"github.com/jeranaias/operator-tui/internal/cli"
	"github.com/jeranaias/operator-tui/internal/config"
	"github.com/jeranaias/operator-tui/internal/convo"
	"github.com/jeranaias/operator-tui/internal/jobs"
	"github.com/jeranaias/operator-tui/internal/model"
	"github.com/jeranaias/operator-tui/internal/storage"
	"github.com/jeranaias/operator-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the poller callback can inject messages
// into the running Bubble Tea event loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdAgents:
		cli.HandleAgents(args)
	case cli.CmdSessions:
		cli.HandleSessions(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI wires the full client and starts the Bubble Tea program.
func runTUI(args cli.Args) {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitConfigError)
	}

	// The alternate screen belongs to the TUI; log lines go to a file.
	closeLog := redirectLogOutput()
	defer closeLog()

	client := cli.BuildClient(cfg)
	radientClient := cli.BuildRadient(cfg)

	store := convo.NewStore(client, client.PerPage())

	messageCache, err := cache.Open(cache.DefaultPath())
	if err != nil {
		// Offline history is a convenience; the client works without it.
		log.Printf("main: message cache unavailable: %v", err)
		messageCache = nil
	}

	// The sink closes over service, which needs the poller to exist
	// first; the closure breaks the construction cycle.
	var service *svc.Service
	poller := jobs.NewPoller(client,
		jobs.SinkFunc(func(agentID string, msg model.Message) {
			service.AddMessage(agentID, msg)
		}),
		&jobs.PollerConfig{
			Interval: time.Duration(cfg.Server.PollIntervalSecs) * time.Second,
			OnUpdate: func(agentID string) {
				programMu.Lock()
				p := programRef
				programMu.Unlock()
				if p != nil {
					p.Send(chat.JobUpdateMsg{AgentID: agentID})
				}
			},
		})

	service = svc.NewService(client, store, poller, messageCache, svc.ServiceConfig{
		Hosting: cfg.Chat.Hosting,
		Model:   cfg.Chat.Model,
		Options: chatOptions(cfg),
	})

	// Hot-reload chat defaults while the TUI runs. Theme and layout
	// changes apply on next start.
	if path, perr := config.ConfigPath(); perr == nil {
		watcher, werr := config.NewWatcher(path, func(next *config.Config) {
			service.SetConfig(svc.ServiceConfig{
				Hosting: next.Chat.Hosting,
				Model:   next.Chat.Model,
				Options: chatOptions(next),
			})
		})
		if werr != nil {
			log.Printf("main: config watcher disabled: %v", werr)
		} else if werr := watcher.Watch(); werr != nil {
			log.Printf("main: config watcher disabled: %v", werr)
			watcher.Close()
		} else {
			defer watcher.Close()
		}
	}

	m := chat.New(service, client, radientClient, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	finalModel, err := p.Run()

	programMu.Lock()
	programRef = nil
	programMu.Unlock()

	service.Shutdown()
	if messageCache != nil {
		if cerr := messageCache.Close(); cerr != nil {
			log.Printf("main: cache close: %v", cerr)
		}
	}
	saveTranscript(finalModel, service, cfg)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running operator-tui: %v\n", err)
		os.Exit(1)
	}
}

// chatOptions converts config generation settings into per-request options.
func chatOptions(cfg *config.Config) api.ChatOptions {
	return api.ChatOptions{
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
	}
}

// saveTranscript persists the active conversation so `sessions` commands
// can read it after exit.
func saveTranscript(finalModel tea.Model, service *svc.Service, cfg *config.Config) {
	m, ok := finalModel.(chat.Model)
	if !ok {
		return
	}
	agentID := m.ActiveAgentID()
	if agentID == "" {
		return
	}
	msgs := service.Messages(agentID)
	if len(msgs) == 0 {
		return
	}

	store, err := storage.NewTranscriptStore()
	if err != nil {
		log.Printf("main: transcript store: %v", err)
		return
	}
	if err := store.Save(&storage.Transcript{
		AgentID:   agentID,
		Hosting:   cfg.Chat.Hosting,
		Model:     cfg.Chat.Model,
		UpdatedAt: time.Now(),
		Messages:  msgs,
	}); err != nil {
		log.Printf("main: transcript save: %v", err)
	}
}

// redirectLogOutput sends the standard logger to ~/.operator-tui/debug.log
// for the lifetime of the TUI. Returns a cleanup func.
func redirectLogOutput() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
}

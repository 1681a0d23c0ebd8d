// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL.
//
// Command: chat
// Short:   Start an interactive chat session against one agent
//
// Examples:
//   operator-tui chat                      Chat with the first agent
//   operator-tui chat --agent research     Chat with a named agent
//   operator-tui chat --model gpt-4o       Override the model
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /agents             List agents and switch with /agent NAME
//   /model [name]       Show or set the model for this session
//   /status, /s         Show session statistics
//   /history            Show recent conversation history
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the running request
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputReader wraps liner with persistent history under the config dir.
type inputReader struct {
	line        *liner.State
	historyFile string
}

func newInputReader() *inputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &inputReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	r.loadHistory()
	return r
}

func (r *inputReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (r *inputReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *inputReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *inputReader) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// replSession holds the state for one interactive chat run.
type replSession struct {
	cfg    *config.Config
	client *api.Client
	agent  *api.Agent
	input  *inputReader

	model   string
	hosting string
	quiet   bool

	startTime time.Time
	queries   int
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	Exit(handleChat(args))
}

func handleChat(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := BuildClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	agent, err := resolveAgent(ctx, client, args.Agent)
	cancel()
	if err != nil {
		return err
	}

	session := &replSession{
		cfg:       cfg,
		client:    client,
		agent:     agent,
		input:     newInputReader(),
		model:     cfg.Chat.Model,
		hosting:   cfg.Chat.Hosting,
		quiet:     args.Quiet,
		startTime: time.Now(),
	}
	defer session.input.Close()

	if !session.quiet {
		printWelcome(session)
	}

	for {
		input, err := session.input.ReadInput(promptStyle.Render(agent.Name + "> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C at the prompt; EOF is Ctrl+D.
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processPrompt(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// PROMPT PROCESSING
// =============================================================================

// processPrompt submits one prompt and blocks until the job resolves.
// Ctrl+C during the wait cancels the job on the backend.
func processPrompt(session *replSession, input string) error {
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	resp, err := session.client.ChatAsync(ctx, session.agent.ID, api.AsyncChatRequest{
		Prompt:  input,
		Hosting: session.hosting,
		Model:   session.model,
		Persist: true,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	interval := time.Duration(session.cfg.Server.PollIntervalSecs) * time.Second
	job, err := waitForJob(ctx, session.client, resp.ID, interval)
	if err != nil {
		return err
	}

	reply, stderr, err := jobOutcome(job)
	if err != nil {
		return err
	}

	fmt.Println()
	displayResponse(reply)
	if stderr != "" {
		fmt.Fprintln(os.Stderr, infoStyle.Render(stderr))
	}
	fmt.Println()

	session.queries++
	if !session.quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[Done]"),
			time.Since(start).Round(100*time.Millisecond))
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *replSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printReplHelp()
		return true, nil

	case "/agents":
		return true, printAgentList(session)

	case "/agent":
		if len(args) == 0 {
			fmt.Printf("%s Current agent: %s\n", infoStyle.Render("[Agent]"), okStyle.Render(session.agent.Name))
			return true, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		agent, err := resolveAgent(ctx, session.client, args[0])
		if err != nil {
			return true, err
		}
		session.agent = agent
		fmt.Printf("%s Switched to agent: %s\n", okStyle.Render("[OK]"), agent.Name)
		return true, nil

	case "/model", "/m":
		if len(args) == 0 {
			fmt.Printf("%s Current model: %s\n", infoStyle.Render("[Model]"), okStyle.Render(session.model))
			return true, nil
		}
		session.model = args[0]
		fmt.Printf("%s Switched to model: %s\n", okStyle.Render("[OK]"), session.model)
		return true, nil

	case "/status", "/s":
		printReplStatus(session)
		return true, nil

	case "/history":
		return true, printRecentHistory(session)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func printAgentList(session *replSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	agents, err := session.client.ListAgents(ctx)
	if err != nil {
		return err
	}
	for _, a := range agents {
		marker := "  "
		if a.ID == session.agent.ID {
			marker = okStyle.Render("* ")
		}
		fmt.Printf("%s%s  %s\n", marker, a.Name, infoStyle.Render(a.Hosting+"/"+a.Model))
	}
	return nil
}

func printRecentHistory(session *replSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	page, err := session.client.Conversation(ctx, session.agent.ID, 1, 10)
	if err != nil {
		return err
	}

	if len(page.Messages) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return nil
	}

	// Server pages are newest-first; print oldest-first.
	for i := len(page.Messages) - 1; i >= 0; i-- {
		rec := page.Messages[i]
		role := rec.Role
		switch role {
		case "user":
			role = promptStyle.Render("You")
		case "assistant":
			role = okStyle.Render("Agent")
		default:
			role = infoStyle.Render("System")
		}
		content := strings.ReplaceAll(rec.Message, "\n", " ")
		runes := []rune(content)
		if len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		fmt.Printf("  %s: %s\n", role, content)
	}
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

func printWelcome(session *replSession) {
	fmt.Println()
	fmt.Println(headerStyle.Render("operator-tui interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n", infoStyle.Render("Agent:"), okStyle.Render(session.agent.Name))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), okStyle.Render(session.model))
	fmt.Printf("%s %s\n", infoStyle.Render("Backend:"), session.cfg.Server.BaseURL)
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func printReplHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/agents", "List agents"},
		{"/agent [name]", "Show or switch agent"},
		{"/model [name]", "Show or set model"},
		{"/status, /s", "Show session statistics"},
		{"/history", "Show recent conversation history"},
		{"/quit, /q", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			okStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits, plain 'quit' works too"))
	fmt.Println()
}

func printReplStatus(session *replSession) {
	elapsed := time.Since(session.startTime).Round(time.Second)

	fmt.Println()
	fmt.Println(headerStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Printf("  %s %s\n", infoStyle.Render("Agent:"), okStyle.Render(session.agent.Name))
	fmt.Printf("  %s %s\n", infoStyle.Render("Model:"), okStyle.Render(session.model))
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())
	fmt.Printf("  %s %d\n", infoStyle.Render("Queries:"), session.queries)
	fmt.Println()
}

func printExitSummary(session *replSession) {
	if session.queries == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}
	elapsed := time.Since(session.startTime).Round(time.Second)
	fmt.Println()
	fmt.Println(headerStyle.Render("Session Summary"))
	fmt.Printf("  %s %d\n", infoStyle.Render("Queries:"), session.queries)
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())
	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}

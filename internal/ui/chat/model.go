// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/operator-tui/internal/api"
	svc "github.com/jeranaias/operator-tui/internal/chat"
	"github.com/jeranaias/operator-tui/internal/config"
	"github.com/jeranaias/operator-tui/internal/radient"
	"github.com/jeranaias/operator-tui/internal/ui/components"
	"github.com/jeranaias/operator-tui/internal/ui/styles"
)

// requestTimeout bounds every backend call issued from the UI.
const requestTimeout = 30 * time.Second

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat view.
type Model struct {
	service *svc.Service
	client  *api.Client
	radient *radient.Client
	keys    keyMap

	theme       styles.Theme
	markdown    *components.MarkdownRenderer
	useMarkdown bool

	viewport viewport.Model
	textarea textarea.Model
	spinner  components.Spinner

	// Agent picker
	agents     []api.Agent
	agentIndex int
	showPicker bool

	activeAgent api.Agent
	credits     string
	offline     bool
	banner      string

	width  int
	height int
	ready  bool
}

// New creates the chat view. The service must already be wired to a store
// and poller; the poller's OnUpdate should feed JobUpdateMsg into the
// running program (see cmd wiring in main).
func New(service *svc.Service, client *api.Client, radientClient *radient.Client, cfg *config.Config) Model {
	theme := styles.ForName(cfg.UI.Theme)

	ta := textarea.New()
	ta.Placeholder = "Message the agent..."
	ta.Prompt = theme.InputPrompt.Render("> ")
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	return Model{
		service:     service,
		client:      client,
		radient:     radientClient,
		keys:        defaultKeyMap(),
		theme:       theme,
		useMarkdown: cfg.UI.Markdown,
		textarea:    ta,
		spinner:     components.NewSpinner(theme.Spinner),
	}
}

// Init starts the initial loads: agent listing, backend health, and the
// Radient credit balance.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadAgentsCmd(),
		m.healthCmd(),
		m.creditsCmd(),
		textarea.Blink,
	)
}

// ActiveAgentID returns the agent the view is talking to.
func (m Model) ActiveAgentID() string {
	return m.activeAgent.ID
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) sendCmd(agentID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sent, err := m.service.SendMessage(ctx, agentID, content, nil)
		return SendResultMsg{AgentID: agentID, Sent: sent, Err: err}
	}
}

func (m Model) switchCmd(agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := m.service.SwitchConversation(ctx, agentID)
		return HistoryLoadedMsg{AgentID: agentID, Err: err}
	}
}

func (m Model) loadOlderCmd(agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := m.service.LoadOlderMessages(ctx, agentID)
		return OlderLoadedMsg{AgentID: agentID, Err: err}
	}
}

func (m Model) loadAgentsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		agents, err := m.client.ListAgents(ctx)
		return AgentsLoadedMsg{Agents: agents, Err: err}
	}
}

func (m Model) healthCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return HealthMsg{Err: m.client.Health(ctx)}
	}
}

func (m Model) creditsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.radient == nil || !m.radient.IsConfigured() {
			return CreditsMsg{Err: radient.ErrNoAPIKey}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		credits, err := m.radient.GetCredits(ctx)
		if err != nil {
			return CreditsMsg{Err: err}
		}
		return CreditsMsg{Balance: credits.Balance}
	}
}

func (m Model) cancelCmd(agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return CancelResultMsg{AgentID: agentID, Err: m.service.CancelJob(ctx, agentID)}
	}
}

// tickCmd keeps the view refreshing while a job is loading so elapsed
// time and late store writes stay visible even without update callbacks.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

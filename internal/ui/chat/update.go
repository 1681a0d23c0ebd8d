// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/operator-tui/internal/api"
	svc "github.com/jeranaias/operator-tui/internal/chat"
	"github.com/jeranaias/operator-tui/internal/ui/components"
)

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		return m.handleSendResult(msg)
	case JobUpdateMsg:
		return m.handleJobUpdate(msg)
	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case OlderLoadedMsg:
		if msg.Err != nil {
			m.banner = "Could not load older messages: " + msg.Err.Error() + " (PgUp to retry)"
		}
		m.refreshTranscript(false)
		return m, nil

	case AgentsLoadedMsg:
		return m.handleAgentsLoaded(msg)
	case HealthMsg:
		m.offline = msg.Err != nil
		return m, nil
	case CreditsMsg:
		if msg.Err == nil {
			m.credits = formatCredits(msg.Balance)
		}
		return m, nil
	case CancelResultMsg:
		if msg.Err != nil {
			m.banner = "Cancel failed: " + msg.Err.Error()
		}
		return m, nil

	case TickMsg:
		m.refreshTranscript(true)
		if m.service.IsLoading(m.activeAgent.ID) {
			return m, tickCmd()
		}
		m.spinner.Stop()
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if cmd != nil {
		return m, cmd
	}
	return m.updateFocused(msg)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := 2 + m.textarea.Height() + 2 // header + input + spinner/status
	if !m.ready {
		m.viewport = viewportFor(msg.Width, msg.Height-chromeHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - chromeHeight
	}
	m.textarea.SetWidth(msg.Width - 2)

	if renderer, err := components.NewMarkdownRenderer(msg.Width-4, m.theme.Name == "dark"); err == nil {
		m.markdown = renderer
	}
	m.refreshTranscript(false)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showPicker {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		m.banner = ""
		return m, nil

	case key.Matches(msg, m.keys.Agents):
		if len(m.agents) > 0 {
			m.showPicker = true
		}
		return m, nil

	case key.Matches(msg, m.keys.CancelJob):
		if m.service.IsLoading(m.activeAgent.ID) {
			return m, m.cancelCmd(m.activeAgent.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		// PgUp at the top of the transcript loads older history.
		if m.viewport.AtTop() && m.service.HasMore(m.activeAgent.ID) {
			m.banner = ""
			return m, m.loadOlderCmd(m.activeAgent.ID)
		}

	case key.Matches(msg, m.keys.Send):
		content := strings.TrimSpace(m.textarea.Value())
		if content == "" || m.activeAgent.ID == "" {
			return m, nil
		}
		if m.service.IsLoading(m.activeAgent.ID) {
			m.banner = "Still waiting for the previous reply. Ctrl+X cancels it."
			return m, nil
		}
		m.textarea.Reset()
		return m, m.sendCmd(m.activeAgent.ID, content)
	}

	return m.updateFocused(msg)
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.agentIndex > 0 {
			m.agentIndex--
		}
	case "down", "j":
		if m.agentIndex < len(m.agents)-1 {
			m.agentIndex++
		}
	case "enter":
		m.showPicker = false
		agent := m.agents[m.agentIndex]
		if agent.ID != m.activeAgent.ID {
			m.activeAgent = agent
			m.banner = ""
			return m, m.switchCmd(agent.ID)
		}
	case "esc", "ctrl+l":
		m.showPicker = false
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSendResult(msg SendResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, svc.ErrJobInFlight):
			m.banner = "Still waiting for the previous reply."
		default:
			m.banner = "Send failed: " + msg.Err.Error()
		}
		m.refreshTranscript(true)
		return m, nil
	}

	m.refreshTranscript(true)
	cmd := m.spinner.Start("Waiting for the agent")
	return m, tea.Batch(cmd, tickCmd())
}

func (m Model) handleJobUpdate(msg JobUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.AgentID != m.activeAgent.ID {
		return m, nil
	}
	m.refreshTranscript(true)
	if !m.service.IsLoading(msg.AgentID) {
		m.spinner.Stop()
	}
	return m, nil
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsNotRunning(msg.Err) {
			m.offline = true
			m.banner = "Backend unreachable; showing cached history."
		} else {
			m.banner = "Could not load history: " + msg.Err.Error()
		}
	} else {
		m.offline = false
	}
	m.refreshTranscript(true)

	// Resume the loading indicator if a job is still running here.
	if m.service.IsLoading(msg.AgentID) && msg.AgentID == m.activeAgent.ID {
		cmd := m.spinner.Start("Waiting for the agent")
		return m, tea.Batch(cmd, tickCmd())
	}
	return m, nil
}

func (m Model) handleAgentsLoaded(msg AgentsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.offline = true
		m.banner = "Could not list agents: " + msg.Err.Error()
		return m, nil
	}
	m.agents = msg.Agents
	if len(m.agents) == 0 {
		m.banner = "No agents on the backend yet. Create one with: operator-tui agents create <name>"
		return m, nil
	}

	// Pick the first agent automatically on startup.
	if m.activeAgent.ID == "" {
		m.activeAgent = m.agents[0]
		return m, m.switchCmd(m.activeAgent.ID)
	}
	return m, nil
}

// updateFocused routes remaining messages to the focused widgets.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/operator-tui/internal/model"
	"github.com/jeranaias/operator-tui/internal/ui/components"
)

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting operator-tui..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	if m.showPicker {
		b.WriteString(m.renderPicker())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteByte('\n')

	if m.banner != "" {
		b.WriteString(m.theme.Banner.Render(m.banner))
		b.WriteByte('\n')
	}
	if spin := m.spinner.View(); spin != "" {
		b.WriteString(spin)
		b.WriteByte('\n')
	}

	b.WriteString(m.textarea.View())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := "Local Operator"
	if m.activeAgent.ID != "" {
		title = m.activeAgent.Name
		if m.activeAgent.Model != "" {
			title += " " + m.theme.Timestamp.Render("("+m.activeAgent.Model+")")
		}
	}
	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) renderStatusBar() string {
	var segments []string

	if m.offline {
		segments = append(segments, m.theme.ErrorMessage.Render("offline"))
	} else {
		segments = append(segments, "connected")
	}

	state := m.service.JobState(m.activeAgent.ID)
	if state.IsLoading {
		segments = append(segments, m.theme.StatusKey.Render(string(state.Status)))
	}
	if m.credits != "" {
		segments = append(segments, m.credits)
	}
	if m.service.HasMore(m.activeAgent.ID) {
		segments = append(segments, m.theme.Help.Render("pgup: older"))
	}

	hint := m.theme.Help.Render("enter send · ctrl+l agents · ctrl+x cancel · ctrl+c quit")
	return components.StatusBar(m.theme, m.width, segments, hint)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport.
// follow pins the view to the bottom, used after sends and job updates
// so new replies are visible; pagination keeps the scroll position.
func (m *Model) refreshTranscript(follow bool) {
	if !m.ready || m.activeAgent.ID == "" {
		return
	}

	msgs := m.service.Messages(m.activeAgent.ID)
	var b strings.Builder

	if m.service.IsFetchingOlder(m.activeAgent.ID) {
		b.WriteString(m.theme.Timestamp.Render("loading earlier messages..."))
		b.WriteString("\n\n")
	} else if m.service.HasMore(m.activeAgent.ID) {
		b.WriteString(m.theme.Timestamp.Render("— earlier messages available (PgUp) —"))
		b.WriteString("\n\n")
	}

	if len(msgs) == 0 {
		b.WriteString(m.theme.Help.Render("No messages yet. Say something."))
	}
	for i, msg := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderMessage(msg))
	}

	m.viewport.SetContent(b.String())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(msg model.Message) string {
	label := m.roleLabel(msg.Role)
	stamp := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("  ")
	b.WriteString(stamp)
	if msg.ExecutionTime > 0 {
		b.WriteString("  ")
		b.WriteString(m.theme.Timestamp.Render(fmt.Sprintf("%.1fs", msg.ExecutionTime.Seconds())))
	}
	b.WriteByte('\n')

	switch {
	case msg.IsError():
		b.WriteString(m.theme.ErrorMessage.Render(msg.Content))
	case msg.Role == model.RoleAssistant && m.useMarkdown:
		b.WriteString(strings.TrimRight(m.markdown.Render(msg.Content), "\n"))
	case msg.Role == model.RoleAssistant:
		// Markdown is off, but fenced code still reads better highlighted.
		b.WriteString(m.theme.Message.Render(highlightFences(msg.Content, m.theme.Name == "dark")))
	default:
		b.WriteString(m.theme.Message.Render(msg.Content))
	}
	b.WriteByte('\n')

	if msg.Stderr != "" {
		b.WriteString(m.theme.Stderr.Render(msg.Stderr))
		b.WriteByte('\n')
	}
	for _, att := range msg.Attachments {
		b.WriteString(m.theme.Attachment.Render("⎘ " + att))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) roleLabel(role model.Role) string {
	name := role.DisplayName()
	switch role {
	case model.RoleUser:
		return m.theme.UserLabel.Render(name)
	case model.RoleAssistant:
		return m.theme.AgentLabel.Render(name)
	default:
		return m.theme.SystemLabel.Render(name)
	}
}

// =============================================================================
// AGENT PICKER
// =============================================================================

func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.PickerTitle.Render("Agents"))
	b.WriteByte('\n')

	for i, agent := range m.agents {
		line := agent.Name
		if agent.Model != "" {
			line += "  " + agent.Hosting + "/" + agent.Model
		}
		if agent.ID == m.activeAgent.ID {
			line += " ●"
		}
		if i == m.agentIndex {
			b.WriteString(m.theme.PickerSelected.Render(line))
		} else {
			b.WriteString(m.theme.PickerItem.Render(line))
		}
		b.WriteByte('\n')
	}

	b.WriteString(m.theme.Help.Render("enter select · esc close"))
	return lipgloss.NewStyle().Height(m.viewport.Height).Render(b.String())
}

// =============================================================================
// HELPERS
// =============================================================================

func viewportFor(width, height int) viewport.Model {
	if height < 1 {
		height = 1
	}
	vp := viewport.New(width, height)
	return vp
}

func formatCredits(balance float64) string {
	return fmt.Sprintf("credits: %.2f", balance)
}

// highlightFences applies syntax highlighting to ``` blocks, leaving the
// surrounding prose untouched.
func highlightFences(content string, dark bool) string {
	if !strings.Contains(content, "```") {
		return content
	}

	var (
		b    strings.Builder
		code []string
		lang string
		in   bool
	)
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "```") && !in:
			in = true
			lang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			code = code[:0]
		case strings.HasPrefix(line, "```") && in:
			in = false
			b.WriteString(strings.TrimRight(components.HighlightCode(strings.Join(code, "\n"), lang, dark), "\n"))
			b.WriteByte('\n')
		case in:
			code = append(code, line)
		default:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if in {
		// Unterminated fence; emit what we collected unstyled.
		b.WriteString(strings.Join(code, "\n"))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

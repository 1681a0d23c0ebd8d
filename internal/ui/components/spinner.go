// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows activity while a job is running, with the waiting message
// and elapsed time.
type Spinner struct {
	model   spinner.Model
	message string
	start   time.Time
	active  bool
}

// NewSpinner creates a spinner styled with the given style.
func NewSpinner(style lipgloss.Style) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = style
	return Spinner{model: s}
}

// Start activates the spinner with a message and returns the tick command.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.start = time.Now()
	s.active = true
	return s.model.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s Spinner) Active() bool {
	return s.active
}

// Update advances the animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return s, cmd
}

// View renders "<frame> message (12s)".
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	elapsed := time.Since(s.start).Round(time.Second)
	out := s.model.View() + " " + s.message
	if elapsed >= time.Second {
		out += " (" + elapsed.String() + ")"
	}
	return out
}

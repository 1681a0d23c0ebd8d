// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the visual themes for the operator-tui interface.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every style the TUI renders with. Components take a Theme
// instead of reaching for package-level styles so light/dark switching is
// one value swap.
type Theme struct {
	Name string

	// Role labels in the transcript
	UserLabel   lipgloss.Style
	AgentLabel  lipgloss.Style
	SystemLabel lipgloss.Style

	// Message bodies
	Message      lipgloss.Style
	ErrorMessage lipgloss.Style
	Stderr       lipgloss.Style
	Timestamp    lipgloss.Style
	Attachment   lipgloss.Style

	// Chrome
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	Spinner   lipgloss.Style
	Banner    lipgloss.Style
	Help      lipgloss.Style

	// Input area
	InputPrompt lipgloss.Style
	InputBorder lipgloss.Style

	// Agent picker
	PickerTitle    lipgloss.Style
	PickerItem     lipgloss.Style
	PickerSelected lipgloss.Style
}

// DarkTheme returns the theme for dark terminal backgrounds.
func DarkTheme() Theme {
	return Theme{
		Name: "dark",

		UserLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		AgentLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		SystemLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),

		Message:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ErrorMessage: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Stderr:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		Timestamp:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Attachment:   lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Underline(true),

		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Bold(true).Padding(0, 1),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1),
		StatusKey: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Banner:    lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("88")).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		InputPrompt: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		InputBorder: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")),

		PickerTitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Padding(0, 1),
		PickerItem:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 2),
		PickerSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 2),
	}
}

// LightTheme returns the theme for light terminal backgrounds.
func LightTheme() Theme {
	t := DarkTheme()
	t.Name = "light"

	t.UserLabel = t.UserLabel.Foreground(lipgloss.Color("26"))
	t.AgentLabel = t.AgentLabel.Foreground(lipgloss.Color("28"))
	t.SystemLabel = t.SystemLabel.Foreground(lipgloss.Color("242"))

	t.Message = t.Message.Foreground(lipgloss.Color("235"))
	t.ErrorMessage = t.ErrorMessage.Foreground(lipgloss.Color("124"))
	t.Stderr = t.Stderr.Foreground(lipgloss.Color("246"))
	t.Timestamp = t.Timestamp.Foreground(lipgloss.Color("246"))

	t.Header = t.Header.Foreground(lipgloss.Color("235")).Background(lipgloss.Color("253"))
	t.StatusBar = t.StatusBar.Foreground(lipgloss.Color("238")).Background(lipgloss.Color("253"))
	t.Help = t.Help.Foreground(lipgloss.Color("245"))
	return t
}

// ForName resolves a configured theme name. "auto" detects the terminal
// background via termenv.
func ForName(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		if termenv.HasDarkBackground() {
			return DarkTheme()
		}
		return LightTheme()
	}
}

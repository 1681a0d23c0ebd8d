// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/operator-tui/internal/ui/styles"
	"github.com/jeranaias/operator-tui/internal/util"
)

// StatusBar renders the bottom bar: left-aligned segments, right-aligned
// hint, clipped to width.
func StatusBar(theme styles.Theme, width int, segments []string, hint string) string {
	left := ""
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i > 0 && left != "" {
			left += "  "
		}
		left += seg
	}

	barWidth := width - theme.StatusBar.GetHorizontalPadding()
	if barWidth < 0 {
		barWidth = 0
	}

	leftWidth := lipgloss.Width(left)
	hintWidth := lipgloss.Width(hint)
	switch {
	case leftWidth+hintWidth+2 <= barWidth:
		left += util.PadRight("", barWidth-leftWidth-hintWidth) + hint
	case leftWidth > barWidth:
		left = util.TruncateWidth(left, barWidth)
	}

	return theme.StatusBar.Width(width).Render(left)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/davut-tui/internal/ui/styles"
)

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line: typing indicator or notice on the left,
// counters and shortcuts on the right.
type StatusBar struct {
	Width     int
	Typing    string // spinner frame + text while awaiting a reply
	Notice    string
	IsError   bool
	Turns     int
	Failures  int
	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		Shortcuts: []Shortcut{
			{"enter", "send"},
			{"ctrl+o", "attach"},
			{"ctrl+l", "clock"},
			{"esc", "quit"},
		},
		theme: theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetNotice shows a transient message; isError colors it as an error.
func (s *StatusBar) SetNotice(notice string, isError bool) {
	s.Notice = notice
	s.IsError = isError
}

// SetCounters updates the turn and failure counts.
func (s *StatusBar) SetCounters(turns, failures int) {
	s.Turns, s.Failures = turns, failures
}

// View renders the bar. Narrow terminals drop the shortcuts first.
func (s *StatusBar) View() string {
	var left string
	switch {
	case s.Typing != "":
		left = s.Typing
	case s.Notice != "" && s.IsError:
		left = s.theme.ErrorText.Render(s.Notice)
	case s.Notice != "":
		left = s.theme.Notice.Render(s.Notice)
	}

	counters := s.theme.ShortcutDesc.Render(fmt.Sprintf("%d turns", s.Turns))
	if s.Failures > 0 {
		counters += " " + s.theme.ErrorText.Render(fmt.Sprintf("%d failed", s.Failures))
	}

	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()
	right := counters
	if withKeys := s.renderShortcuts() + "  " + counters; lipgloss.Width(left)+lipgloss.Width(withKeys)+2 <= inner {
		right = withKeys
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/davut-tui/internal/ui/components"
)

const (
	promptText = "> "
	sendHint   = "[enter] send"
	typingText = "Typing"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	parts := []string{m.header.View(), m.viewport.View()}
	if chip := m.chip.View(); chip != "" {
		parts = append(parts, chip)
	}
	parts = append(parts, m.renderComposer(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderComposer renders the input line with its send hint. The hint is
// dimmed whenever a send would be rejected.
func (m Model) renderComposer() string {
	hint := m.theme.SendDisabled.Render(sendHint)
	if m.ctrl.CanSend() {
		hint = m.theme.SendEnabled.Render(sendHint)
	}
	line := m.theme.InputPrompt.Render(promptText) + m.input.View()

	inner := m.width - m.theme.InputContainer.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(line) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	return m.theme.InputContainer.Width(m.width).Render(line + strings.Repeat(" ", gap) + hint)
}

// =============================================================================
// REFRESH
// =============================================================================

// refresh rebuilds everything derived from the store. It is called after
// every state change handled by Update.
func (m *Model) refresh() {
	awaiting := m.store.AwaitingReply()

	m.chip.SetRef(m.store.PendingAttachment())
	if awaiting {
		m.statusBar.Typing = m.spinner.View() + " " + m.theme.TypingText.Render("waiting for reply")
	} else {
		m.statusBar.Typing = ""
	}

	if !m.ready {
		return
	}
	m.layout()

	msgs := m.store.Messages()
	key := renderKey{
		messages:   len(msgs),
		width:      m.viewport.Width,
		clock:      m.clock,
		timestamps: m.showTimestamps,
		markdown:   m.markdown != nil,
	}
	if key != m.historyKey || m.historyView == "" {
		blocks := make([]string, 0, len(msgs))
		for _, msg := range msgs {
			bubble := components.NewMessageBubble(msg, m.theme)
			bubble.SetWidth(m.viewport.Width)
			bubble.Clock = m.clock
			bubble.ShowTimestamp = m.showTimestamps
			bubble.Markdown = m.markdown
			blocks = append(blocks, bubble.View())
		}
		m.historyView = strings.Join(blocks, "\n\n")
		m.historyKey = key
	}

	content := m.historyView
	if awaiting {
		content += "\n\n" + m.renderTyping()
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if atBottom || len(msgs) != m.lastLen {
		m.viewport.GotoBottom()
	}
	m.lastLen = len(msgs)
}

// renderTyping is the placeholder bot bubble shown while a reply is pending.
func (m Model) renderTyping() string {
	body := m.spinner.View() + " " + m.theme.TypingText.Render(typingText)
	return m.theme.BotBubble.Render(body)
}

// layout sizes the viewport and input to the space left by the fixed rows.
func (m *Model) layout() {
	fixed := lipgloss.Height(m.header.View()) +
		lipgloss.Height(m.renderComposer()) +
		lipgloss.Height(m.statusBar.View())
	if chip := m.chip.View(); chip != "" {
		fixed += lipgloss.Height(chip)
	}

	h := m.height - fixed
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h

	w := m.width - m.theme.InputContainer.GetHorizontalFrameSize() -
		lipgloss.Width(promptText) - lipgloss.Width(sendHint) - 4
	if w < 10 {
		w = 10
	}
	m.input.Width = w
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/jeranaias/davut-tui/internal/ui/styles"
	"github.com/jeranaias/davut-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// bubbleChrome is the horizontal space taken by border and padding.
const bubbleChrome = 4

// MessageBubble renders one message.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	Clock         model.ClockFormat
	Markdown      *Markdown
	theme         *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		Clock:         model.ClockAuto,
		theme:         theme,
	}
}

// SetWidth sets the width of the row the bubble sits in.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the bubble with its sender line.
func (b *MessageBubble) View() string {
	if b.Message.IsUser() {
		return b.renderUserBubble()
	}
	return b.renderBotBubble()
}

// maxContentWidth keeps bubbles to about three quarters of the row.
func (b *MessageBubble) maxContentWidth() int {
	w := b.Width*3/4 - bubbleChrome
	if w < 20 {
		w = 20
	}
	return w
}

// ==========================================================================
// USER BUBBLE - right aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := strings.Join(util.Wrap(b.Message.Text, b.maxContentWidth()), "\n")
	bubble := b.theme.UserBubble.Render(content)

	header := b.renderHeader()
	return lipgloss.JoinVertical(lipgloss.Right,
		b.alignRight(header),
		b.alignRight(bubble),
	)
}

func (b *MessageBubble) alignRight(block string) string {
	margin := b.Width - lipgloss.Width(block)
	if margin < 0 {
		margin = 0
	}
	return lipgloss.NewStyle().MarginLeft(margin).Render(block)
}

// ==========================================================================
// BOT BUBBLE - left aligned, optional markdown
// ==========================================================================

func (b *MessageBubble) renderBotBubble() string {
	var content string
	if b.Markdown != nil {
		content = b.Markdown.Render(b.Message.Text, b.maxContentWidth())
	} else {
		content = strings.Join(util.Wrap(b.Message.Text, b.maxContentWidth()), "\n")
	}
	if content == "" {
		content = " "
	}
	bubble := b.theme.BotBubble.Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, b.renderHeader(), bubble)
}

// ==========================================================================
// HEADER LINE
// ==========================================================================

func (b *MessageBubble) renderHeader() string {
	parts := []string{b.theme.Sender.Render(b.Message.Sender.DisplayName())}
	if b.ShowTimestamp && !b.Message.Time.IsZero() {
		parts = append(parts, b.theme.Timestamp.Render(b.Message.Clock(b.Clock)))
	}
	return strings.Join(parts, " ")
}

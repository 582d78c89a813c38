// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/jeranaias/davut-tui/internal/ui/styles"
	"github.com/jeranaias/davut-tui/internal/util"
)

// AttachmentChip shows the pending attachment above the composer.
type AttachmentChip struct {
	Ref   *model.AttachmentRef
	Width int
	theme *styles.Theme
}

// NewAttachmentChip creates an empty chip.
func NewAttachmentChip(theme *styles.Theme) *AttachmentChip {
	return &AttachmentChip{Width: 80, theme: theme}
}

// SetRef sets the attachment to show. nil hides the chip.
func (c *AttachmentChip) SetRef(ref *model.AttachmentRef) {
	c.Ref = ref
}

// View renders the chip, or "" when nothing is attached.
func (c *AttachmentChip) View() string {
	if c.Ref == nil {
		return ""
	}

	hint := "ctrl+x to remove"
	hintView := c.theme.ChipHint.Render(hint)

	// name gets what is left after the hint, border, padding and a gap
	room := c.Width - util.Width(hint) - bubbleChrome - 2
	name := util.Truncate(c.Ref.Name, room)

	return lipgloss.JoinHorizontal(lipgloss.Center,
		c.theme.Chip.Render(name),
		" ",
		hintView,
	)
}

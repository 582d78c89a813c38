// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/davut-tui/internal/ui/styles"
	"github.com/jeranaias/davut-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is the product name shown in the header.
const DefaultTitle = "Davut GPT"

// Reachability is the last known result of the endpoint health probe.
type Reachability int

const (
	ReachUnknown Reachability = iota
	ReachOnline
	ReachOffline
)

// String returns the display string for the reachability state.
func (r Reachability) String() string {
	switch r {
	case ReachOnline:
		return "online"
	case ReachOffline:
		return "offline"
	default:
		return "checking"
	}
}

// Header is the title bar.
type Header struct {
	Title        string
	Endpoint     string
	Reachability Reachability
	Width        int
	theme        *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: DefaultTitle,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetEndpoint sets the endpoint URL shown on the right.
func (h *Header) SetEndpoint(endpoint string) {
	h.Endpoint = endpoint
}

// SetReachability records the health probe result.
func (h *Header) SetReachability(r Reachability) {
	h.Reachability = r
}

// View renders the header.
func (h *Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)
	badge := h.renderBadge()

	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()
	used := lipgloss.Width(title) + lipgloss.Width(badge) + 2

	right := badge
	if h.Endpoint != "" && inner-used > 8 {
		endpoint := util.Truncate(h.Endpoint, inner-used-1)
		right = h.theme.HeaderInfo.Render(endpoint) + " " + badge
	}

	gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + right
	return h.theme.Header.Width(h.Width).Render(line)
}

func (h *Header) renderBadge() string {
	switch h.Reachability {
	case ReachOnline:
		return h.theme.Online.Render(styles.StatusIndicators.Success + " " + h.Reachability.String())
	case ReachOffline:
		return h.theme.Offline.Render(styles.StatusIndicators.Error + " " + h.Reachability.String())
	default:
		return h.theme.HeaderInfo.Render(styles.StatusIndicators.Pending + " " + h.Reachability.String())
	}
}

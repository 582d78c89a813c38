// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders bot replies as terminal markdown. Renderers are rebuilt
// lazily when the wrap width changes. A nil *Markdown renders plain text.
type Markdown struct {
	style string

	mu       sync.Mutex
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer. style is a glamour standard style name
// ("dark", "light", "notty") or "auto" to ask the terminal.
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// Render renders text wrapped at width cells. Any renderer failure falls
// back to the text unchanged.
func (m *Markdown) Render(text string, width int) string {
	if m == nil || strings.TrimSpace(text) == "" {
		return text
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer == nil || m.width != width {
		r, err := m.newRenderer(width)
		if err != nil {
			return text
		}
		m.renderer, m.width = r, width
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) newRenderer(width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithStandardStyle(m.style)
	if m.style == "" || m.style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	opts := []glamour.TermRendererOption{styleOpt}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	return glamour.NewTermRenderer(opts...)
}

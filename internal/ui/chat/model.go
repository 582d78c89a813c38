// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/controller"
	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/logging"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/jeranaias/davut-tui/internal/ui/components"
	"github.com/jeranaias/davut-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// HealthChecker probes the chat endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options configures a chat Model.
type Options struct {
	Controller *controller.Controller
	Health     HealthChecker // optional; nil skips the header probe
	Endpoint   string
	UI         config.UIConfig
	Theme      *styles.Theme // optional; built from UI.Theme when nil

	// Context bounds every request the view starts. Defaults to Background.
	Context context.Context
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	store  *conversation.Store
	health HealthChecker
	log    zerolog.Logger

	// Styling
	theme    *styles.Theme
	markdown *components.Markdown
	keys     KeyMap

	// Display settings
	clock          model.ClockFormat
	showTimestamps bool

	// Dimensions
	width  int
	height int
	ready  bool

	// Sub-components
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	header    *components.Header
	chip      *components.AttachmentChip
	statusBar *components.StatusBar

	// History is append-only, so a rendered history is valid for as long
	// as its key matches.
	historyView string
	historyKey  renderKey

	// lastLen is the history length at the previous render, used to follow
	// new messages.
	lastLen  int
	quitting bool

	// inCommand is set while the composer holds a slash command instead of
	// the draft.
	inCommand bool
}

// renderKey captures everything the rendered history depends on.
type renderKey struct {
	messages   int
	width      int
	clock      model.ClockFormat
	timestamps bool
	markdown   bool
}

// New creates a chat model around an existing controller.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(opts.UI.Theme)
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	header := components.NewHeader(theme)
	header.SetEndpoint(opts.Endpoint)

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		store:     opts.Controller.Store(),
		health:    opts.Health,
		log:       logging.Component("tui"),
		theme:     theme,
		keys:      DefaultKeyMap(),
		input:     ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		header:    header,
		chip:      components.NewAttachmentChip(theme),
		statusBar: components.NewStatusBar(theme),
	}
	m.applyUI(opts.UI)
	return m
}

// Init starts the cursor blink and the first health probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealthCmd())
}

// Clock returns the clock format currently used for timestamps.
func (m Model) Clock() model.ClockFormat {
	return m.clock
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// applyUI installs display settings. The theme is fixed for the life of the
// program; everything else can change on reload.
func (m *Model) applyUI(ui config.UIConfig) {
	m.clock = ui.Clock()
	m.showTimestamps = ui.ShowTimestamps
	if ui.Markdown {
		m.markdown = components.NewMarkdown(m.theme.GlamourStyle())
	} else {
		m.markdown = nil
	}
}

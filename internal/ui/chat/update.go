// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/davut-tui/internal/controller"
	"github.com/jeranaias/davut-tui/internal/ui/components"
)

// healthTimeout bounds a single endpoint probe.
const healthTimeout = 3 * time.Second

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case HealthMsg:
		if msg.Err != nil {
			m.header.SetReachability(components.ReachOffline)
		} else {
			m.header.SetReachability(components.ReachOnline)
		}
		return m, nil

	case ConfigReloadedMsg:
		m.applyUI(msg.UI)
		m.statusBar.SetNotice("config reloaded", false)
		m.refresh()
		return m, nil

	case ConfigErrorMsg:
		m.statusBar.SetNotice("config reload failed: "+msg.Err.Error(), true)
		return m, nil

	case spinner.TickMsg:
		// Let the spinner stop ticking once no reply is outstanding.
		if !m.store.AwaitingReply() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Attach):
		// The draft stays in the store while the command is typed.
		m.input.SetValue("/attach ")
		m.inCommand = true
		m.input.CursorEnd()
		m.statusBar.SetNotice("type a file path and press enter", false)
		return m, nil

	case key.Matches(msg, m.keys.Detach):
		m.detach()
		return m, nil

	case key.Matches(msg, m.keys.ToggleClock):
		m.toggleClock()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncDraft()
	return m, cmd
}

// syncDraft mirrors the composer into the store. A slash command, finished
// or still being typed, leaves the draft alone so it can be restored once
// the command has run.
func (m *Model) syncDraft() {
	value := m.input.Value()
	if isPartialCommand(value) {
		m.inCommand = true
		return
	}
	if m.inCommand && value == "" {
		// Clearing a command brings the draft back.
		m.inCommand = false
		m.restoreDraft()
		return
	}
	m.inCommand = false
	m.ctrl.SetDraft(value)
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if isCommand(value) {
		cmd := m.runCommand(value)
		m.restoreDraft()
		m.refresh()
		return m, cmd
	}

	m.ctrl.SetDraft(value)
	turn, err := m.ctrl.Begin()
	switch {
	case errors.Is(err, controller.ErrBusy):
		m.statusBar.SetNotice("still waiting for a reply", false)
		return m, nil
	case errors.Is(err, controller.ErrEmptyDraft):
		m.statusBar.SetNotice("type a message or attach a file", false)
		return m, nil
	case err != nil:
		m.statusBar.SetNotice(err.Error(), true)
		return m, nil
	}

	m.input.Reset()
	m.inCommand = false
	m.statusBar.SetNotice("", false)
	m.refresh()
	return m, tea.Batch(m.runTurnCmd(turn), m.spinner.Tick)
}

// runTurnCmd performs the request off the Update goroutine.
func (m Model) runTurnCmd(turn *controller.Turn) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return ReplyMsg{Result: turn.Run(ctx)}
	}
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Complete(msg.Result) {
		m.log.Warn().Uint64("turn", msg.Result.TurnID).Msg("dropping stale reply")
		return m, nil
	}

	stats := m.ctrl.Stats()
	m.statusBar.SetCounters(stats.Turns, stats.Failures)

	var cmd tea.Cmd
	if msg.Result.Failed() {
		m.statusBar.SetNotice("request failed", true)
		// Failures usually mean the endpoint went away; refresh the badge.
		cmd = m.checkHealthCmd()
	} else {
		m.header.SetReachability(components.ReachOnline)
	}
	m.refresh()
	return m, cmd
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

var commandNames = []string{"/attach", "/detach", "/clock", "/help", "/quit"}

// isCommand reports whether s is one of the composer's slash commands.
func isCommand(s string) bool {
	name, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	for _, c := range commandNames {
		if name == c {
			return true
		}
	}
	return false
}

// isPartialCommand reports whether s is a slash command or a prefix of one
// that is still being typed.
func isPartialCommand(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		return false
	}
	if isCommand(s) {
		return true
	}
	if strings.ContainsAny(s, " \t") {
		return false
	}
	for _, c := range commandNames {
		if strings.HasPrefix(c, s) {
			return true
		}
	}
	return false
}

// restoreDraft puts the store's draft back into the composer after a
// command has used it.
func (m *Model) restoreDraft() {
	m.inCommand = false
	m.input.SetValue(m.store.Draft())
	m.input.CursorEnd()
}

func (m *Model) runCommand(line string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/attach":
		if arg == "" {
			m.statusBar.SetNotice("usage: /attach <path>", true)
			return nil
		}
		ref, err := m.ctrl.Attach(expandHome(arg))
		if err != nil {
			m.statusBar.SetNotice(err.Error(), true)
			return nil
		}
		m.statusBar.SetNotice("attached "+ref.Name, false)
	case "/detach":
		m.detach()
	case "/clock":
		m.toggleClock()
	case "/help":
		m.statusBar.SetNotice(helpLine(m.keys), false)
	case "/quit":
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) detach() {
	if m.store.PendingAttachment() == nil {
		m.statusBar.SetNotice("nothing attached", false)
		return
	}
	m.ctrl.ClearAttachment()
	m.statusBar.SetNotice("attachment removed", false)
	m.refresh()
}

func (m *Model) toggleClock() {
	m.clock = m.clock.Toggle()
	m.statusBar.SetNotice(fmt.Sprintf("clock: %s", m.clock), false)
	m.refresh()
}

func helpLine(k KeyMap) string {
	var parts []string
	for _, group := range k.FullHelp() {
		for _, b := range group {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
	}
	return strings.Join(parts, " | ")
}

// =============================================================================
// COMMANDS
// =============================================================================

// checkHealthCmd probes the endpoint in the background.
func (m Model) checkHealthCmd() tea.Cmd {
	if m.health == nil {
		return nil
	}
	h, parent := m.health, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, healthTimeout)
		defer cancel()
		return HealthMsg{Err: h.Health(ctx)}
	}
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)
	m.chip.Width = msg.Width

	if !m.ready {
		m.viewport = viewport.New(msg.Width, 1)
		m.ready = true
	}
	m.refresh()
	return m, nil
}

// expandHome resolves a leading ~/ in a typed path.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

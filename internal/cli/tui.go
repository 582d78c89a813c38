// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/logging"
	"github.com/jeranaias/davut-tui/internal/ui/chat"
)

// HandleTUI runs the full-screen chat.
func HandleTUI(args Args) error {
	if err := RequiresTTY("start the chat interface"); err != nil {
		return fmt.Errorf("%w (try 'davut ask' or 'davut chat')", err)
	}

	s, err := newSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := chat.New(chat.Options{
		Controller: s.ctrl,
		Health:     s.client,
		Endpoint:   s.client.Endpoint(),
		UI:         s.cfg.UI,
		Context:    ctx,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Display settings follow the config file while the TUI runs.
	log := logging.Component("tui")
	err = config.Watch(ctx, s.configPath, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("config reload failed")
			p.Send(chat.ConfigErrorMsg{Err: err})
			return
		}
		p.Send(chat.ConfigReloadedMsg{UI: cfg.UI})
	})
	if err != nil {
		// Usually the config directory does not exist yet.
		log.Debug().Err(err).Msg("config live reload disabled")
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface: %w", err)
	}
	return nil
}

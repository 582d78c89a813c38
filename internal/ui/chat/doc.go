// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for davut.

The view never mutates conversation state directly. Key presses become
controller intents, and the screen is rebuilt from a store snapshot after
every change.

# Send Cycle

Enter calls Controller.Begin inside Update, which appends the user message
and marks the store as awaiting. The network call runs as a tea.Cmd and comes
back as a ReplyMsg, which Update hands to Controller.Complete. All state
changes therefore happen on the Update goroutine.

# Files

  - model.go: Model, Options and construction
  - update.go: message handling and commands
  - view.go: layout and rendering
  - keys.go: key bindings
  - messages.go: tea.Msg types

# Usage

	m := chat.New(chat.Options{
	    Controller: ctrl,
	    Health:     client,
	    Endpoint:   client.Endpoint(),
	    UI:         cfg.UI,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
*/
package chat

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual building blocks of the davut TUI.

Components are plain structs with setters and a View method. They hold no
conversation state of their own; the chat model rebuilds them from a store
snapshot on every render.

# Components

  - Header (header.go) - Title, endpoint and reachability badge.
  - MessageBubble (message.go) - One chat message, right for the user, left for the bot.
  - AttachmentChip (chip.go) - Pending attachment name with a remove hint.
  - StatusBar (statusbar.go) - Typing indicator, turn counters and shortcuts.
  - Markdown (markdown.go) - glamour renderer for bot replies, shared with the CLI.

# Usage

	theme := styles.NewTheme("auto")
	header := components.NewHeader(theme)
	header.SetWidth(80)
	header.SetEndpoint("http://localhost:8000/chat")
	view := header.View()
*/
package components

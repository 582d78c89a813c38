// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the davut TUI.
//
// Colors are Lip Gloss AdaptiveColors, so one palette serves light and dark
// terminals. The Theme bundles the styles the chat view draws with.
//
// # Usage
//
//	theme := styles.NewTheme("auto")
//	bubble := theme.UserBubble.Render("hi")
package styles

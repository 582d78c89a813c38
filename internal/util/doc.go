// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the config and UI layers:
// crash-safe file writes and terminal-width aware text shaping.
//
// Width functions count display cells via go-runewidth, so CJK and emoji
// occupy two columns and combining marks occupy none.
package util

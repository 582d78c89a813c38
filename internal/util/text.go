// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most maxWidth cells, ending in "..." when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// Wrap breaks s into lines no wider than width cells. Existing newlines are
// kept, words are split on spaces, and a word wider than the line is broken
// at the cell boundary.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return strings.Split(s, "\n")
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineWidth := 0
		for _, word := range strings.Fields(para) {
			w := runewidth.StringWidth(word)

			if lineWidth > 0 && lineWidth+1+w > width {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}

			for w > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// a single rune wider than the line
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				if lineWidth > 0 {
					lines = append(lines, line.String())
					line.Reset()
					lineWidth = 0
				}
				lines = append(lines, head)
				word = word[len(head):]
				w = runewidth.StringWidth(word)
			}

			if lineWidth > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(word)
			lineWidth += w
		}
		lines = append(lines, line.String())
	}
	return lines
}

// PadRight pads s with spaces to exactly width cells. Wider strings are returned unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

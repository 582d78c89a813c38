// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot command: send a message, print the reply, exit.
//
// Examples:
//
//	davut ask "What are your opening hours?"
//	davut ask --attach invoice.pdf "Is this paid?"
//	echo "hello" | davut ask --json
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/davut-tui/internal/util"
)

const askUsage = `davut ask [--attach FILE] <text>`

// HandleAsk sends one message through the same controller the TUI uses.
// A failed request still prints the fallback text and exits 0, the way the
// chat view would show it.
func HandleAsk(args Args) error {
	text := args.Text
	if strings.TrimSpace(text) == "" && !IsTTY() {
		piped, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(string(piped))
	}
	if strings.TrimSpace(text) == "" && args.Attach == "" {
		return ErrMissingArgument("ask", "text", askUsage)
	}

	s, err := newSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	s.ctrl.SetDraft(text)
	if args.Attach != "" {
		if _, err := s.ctrl.Attach(args.Attach); err != nil {
			return &UsageError{Command: "ask", Reason: err.Error(), Usage: askUsage}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := s.ctrl.Send(ctx)
	if err != nil {
		return err
	}

	// The reply on screen is whatever the store ended with: the reply or
	// the fallback.
	msgs := s.store.Messages()
	reply := msgs[len(msgs)-1].Text

	if args.JSON {
		data := AskData{
			Reply:      reply,
			Failed:     res.Failed(),
			DurationMs: res.Duration.Milliseconds(),
		}
		if sent := msgs[len(msgs)-2]; sent.Attachment != nil {
			data.Attachment = sent.Attachment.Name
		}
		return NewJSONResponse("ask", data).Write(stdout)
	}

	return writeReply(stdout, reply, s.cfg.UI.Markdown && IsStdoutTTY() && ColorsEnabled())
}

// writeReply prints a reply, rendered as markdown when asked to.
func writeReply(w io.Writer, reply string, markdown bool) error {
	width := TerminalWidth()
	if markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if out, err := r.Render(reply); err == nil {
				_, err = io.WriteString(w, out)
				return err
			}
		}
	}
	_, err := io.WriteString(w, strings.Join(util.Wrap(reply, width), "\n")+"\n")
	return err
}

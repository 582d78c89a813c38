// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/peterh/liner"

	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/controller"
	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/jeranaias/davut-tui/internal/ui/components"
	"github.com/jeranaias/davut-tui/internal/util"
)

const replPrompt = "you> "

// =============================================================================
// LINE EDITOR
// =============================================================================

// LineEditor reads one line of input at a time.
type LineEditor interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// linerEditor adds a persistent history file to liner.
type linerEditor struct {
	*liner.State
	historyFile string
}

// newLinerEditor creates a liner-backed editor with history loaded from
// ~/.davut/chat_history.
func newLinerEditor() *linerEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	e := &linerEditor{State: line, historyFile: filepath.Join(dir, "chat_history")}

	if f, err := os.Open(e.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return e
}

// Close saves history with 0600 permissions and restores the terminal.
func (e *linerEditor) Close() error {
	if err := os.MkdirAll(filepath.Dir(e.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = e.WriteHistory(f)
			f.Close()
		}
	}
	return e.State.Close()
}

// =============================================================================
// REPL
// =============================================================================

// HandleChat runs the line-mode chat.
func HandleChat(args Args) error {
	s, err := newSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	r := newREPL(s.ctrl, newLinerEditor(), stdout, s.cfg.UI)
	r.spin = IsStdoutTTY()
	if s.cfg.UI.Markdown && ColorsEnabled() {
		r.markdown = components.NewMarkdown("auto")
	}
	r.width = TerminalWidth()
	r.quiet = args.Quiet
	defer r.in.Close()

	return r.Run(context.Background())
}

// repl is the line-mode front end. It prints whatever the store reports and
// never writes conversation state itself.
type repl struct {
	ctrl  *controller.Controller
	store *conversation.Store
	in    LineEditor
	out   io.Writer

	clock          model.ClockFormat
	showTimestamps bool
	markdown       *components.Markdown
	width          int
	spin           bool
	quiet          bool

	outMu  sync.Mutex
	typing *typingIndicator
}

func newREPL(ctrl *controller.Controller, in LineEditor, out io.Writer, ui config.UIConfig) *repl {
	return &repl{
		ctrl:           ctrl,
		store:          ctrl.Store(),
		in:             in,
		out:            out,
		clock:          ui.Clock(),
		showTimestamps: ui.ShowTimestamps,
		width:          DefaultTerminalWidth,
	}
}

// Run reads lines until /quit, Ctrl+C at the prompt or end of input.
func (r *repl) Run(ctx context.Context) error {
	unsubscribe := r.store.Subscribe(r.onEvent)
	defer unsubscribe()

	if !r.quiet {
		r.printf("%s\n", DimStyle.Render("Type a message and press enter. /help lists commands."))
	}
	for _, msg := range r.store.Messages() {
		r.printMessage(msg)
	}

	for {
		line, err := r.in.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				r.printf("\n")
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" && r.store.PendingAttachment() == nil {
			continue
		}
		if trimmed != "" {
			r.in.AppendHistory(line)
		}

		if isREPLCommand(trimmed) {
			if quit := r.command(trimmed); quit {
				return nil
			}
			continue
		}

		// The line is sent as typed.
		r.send(ctx, line)
	}
}

// send runs one turn. Ctrl+C while waiting cancels the request, which
// completes the turn with the fallback text.
func (r *repl) send(ctx context.Context, text string) {
	r.ctrl.SetDraft(text)

	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if _, err := r.ctrl.Send(reqCtx); err != nil {
		switch {
		case errors.Is(err, controller.ErrEmptyDraft):
			r.notice("type a message or /attach a file")
		case errors.Is(err, controller.ErrBusy):
			r.notice("still waiting for a reply")
		default:
			r.notice(err.Error())
		}
	}
}

// onEvent runs synchronously inside store mutations.
func (r *repl) onEvent(ev conversation.Event) {
	switch ev.Kind {
	case conversation.EventAwaitingChanged:
		if ev.Awaiting {
			r.startTyping()
		} else {
			r.stopTyping()
		}
	case conversation.EventMessageAppended:
		if ev.Message.IsBot() {
			r.stopTyping()
			r.printMessage(ev.Message)
		} else if ev.Message.Attachment != nil {
			r.printf("%s\n", DimStyle.Render("sent with "+ev.Message.Attachment.Name))
		}
	case conversation.EventAttachmentChanged:
		if ref := r.store.PendingAttachment(); ref != nil {
			r.notice("attached " + ref.Name + " (/detach to remove)")
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const replHelp = `Commands:
  /attach <path>   attach a file (only its name is sent along)
  /detach          remove the attachment
  /history         print the conversation
  /clock           switch between 12- and 24-hour timestamps
  /help            show this help
  /quit            leave (also Ctrl+C or Ctrl+D)`

var replCommands = []string{"/attach", "/detach", "/history", "/clock", "/help", "/quit", "/exit", "/q"}

// isREPLCommand reports whether line names one of the slash commands.
// Anything else, "/etc/hosts" included, is a message.
func isREPLCommand(line string) bool {
	name, _, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	for _, c := range replCommands {
		if name == c {
			return true
		}
	}
	return false
}

// command runs a slash command and reports whether to quit.
func (r *repl) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit", "/q":
		return true
	case "/attach":
		if arg == "" {
			r.notice("usage: /attach <path>")
			return false
		}
		if _, err := r.ctrl.Attach(expandHome(arg)); err != nil {
			r.notice(err.Error())
		}
	case "/detach":
		if r.store.PendingAttachment() == nil {
			r.notice("nothing attached")
			return false
		}
		r.ctrl.ClearAttachment()
		r.notice("attachment removed")
	case "/history":
		for _, msg := range r.store.Messages() {
			r.printMessage(msg)
		}
	case "/clock":
		r.clock = r.clock.Toggle()
		r.notice("clock: " + string(r.clock))
	case "/help":
		r.printf("%s\n", replHelp)
	}
	return false
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

// =============================================================================
// OUTPUT
// =============================================================================

func (r *repl) printf(format string, a ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.out, format, a...)
}

func (r *repl) notice(msg string) {
	r.printf("%s\n", WarningStyle.Render(msg))
}

func (r *repl) printMessage(msg model.Message) {
	label := BotStyle.Render(msg.Sender.DisplayName())
	if msg.IsUser() {
		label = UserStyle.Render(msg.Sender.DisplayName())
	}
	if r.showTimestamps {
		label += " " + DimStyle.Render(msg.Clock(r.clock))
	}

	var body string
	if msg.IsBot() && r.markdown != nil {
		body = r.markdown.Render(msg.Text, r.width)
	} else {
		body = strings.Join(util.Wrap(msg.Text, r.width), "\n")
	}
	r.printf("%s\n%s\n\n", label, body)
}

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// typingIndicator animates a spinner on the current line until stopped.
type typingIndicator struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func (r *repl) startTyping() {
	if !r.spin || r.typing != nil {
		return
	}
	t := &typingIndicator{done: make(chan struct{})}
	r.typing = t

	frames := spinner.Dot.Frames
	interval := spinner.Dot.FPS
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			r.printf("\r%s %s", frames[i%len(frames)], DimStyle.Render("Typing"))
			select {
			case <-t.done:
				r.printf("\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

func (r *repl) stopTyping() {
	if r.typing == nil {
		return
	}
	close(r.typing.done)
	r.typing.wg.Wait()
	r.typing = nil
}

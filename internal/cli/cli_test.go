// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/davut-tui/internal/chatapi"
	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/controller"
	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/server"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate points HOME at a temp dir and clears every DAVUT_ variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"DAVUT_ENDPOINT", "DAVUT_TIMEOUT", "DAVUT_CLOCK",
		"DAVUT_LOG_LEVEL", "DAVUT_OPENAI_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
	return home
}

// captureStdout redirects the package's stdout to a buffer.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := stdout
	stdout = buf
	t.Cleanup(func() { stdout = old })
	return buf
}

// writeTestConfig writes a config pointing at baseURL with logs in the temp dir.
func writeTestConfig(t *testing.T, baseURL string, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`
[endpoint]
base_url = %q
timeout_secs = 2

[ui]
markdown = false

[log]
file = %q
%s`, baseURL, filepath.Join(dir, "davut.log"), extra)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// echoEndpoint starts the development server in echo mode.
func echoEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(config.ServerConfig{}, server.EchoReplier{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// deadEndpoint returns the URL of a server that is no longer listening.
func deadEndpoint(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return url
}

type jsonEnvelope[T any] struct {
	Success bool    `json:"success"`
	Data    T       `json:"data"`
	Error   *string `json:"error"`
	Command string  `json:"command"`
}

func decodeJSON[T any](t *testing.T, buf *bytes.Buffer) jsonEnvelope[T] {
	t.Helper()
	var env jsonEnvelope[T]
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return env
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{name: "no args starts tui", argv: nil, wantCmd: CmdTUI},
		{name: "tui", argv: []string{"tui"}, wantCmd: CmdTUI},
		{name: "chat", argv: []string{"chat"}, wantCmd: CmdChat},
		{name: "repl alias", argv: []string{"repl"}, wantCmd: CmdChat},
		{name: "status alias", argv: []string{"s"}, wantCmd: CmdStatus},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{name: "unknown is help", argv: []string{"frobnicate"}, wantCmd: CmdHelp},
		{
			name:    "ask joins positionals",
			argv:    []string{"ask", "hello", "there"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.Text != "hello there" {
					t.Errorf("Text = %q, want %q", a.Text, "hello there")
				}
			},
		},
		{
			name:    "ask with attach and json anywhere",
			argv:    []string{"ask", "--attach", "notes.txt", "is", "this", "ok", "--json"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.Attach != "notes.txt" {
					t.Errorf("Attach = %q", a.Attach)
				}
				if a.Text != "is this ok" {
					t.Errorf("Text = %q", a.Text)
				}
				if !a.JSON {
					t.Error("JSON should be set")
				}
			},
		},
		{
			name:    "global flags before command",
			argv:    []string{"--config=/tmp/x.toml", "-v", "-q", "status"},
			wantCmd: CmdStatus,
			check: func(t *testing.T, a Args) {
				if a.ConfigPath != "/tmp/x.toml" || !a.Verbose || !a.Quiet {
					t.Errorf("globals = %+v", a)
				}
			},
		},
		{
			name:    "config init force",
			argv:    []string{"config", "init", "--force"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "init" || !a.Force {
					t.Errorf("Subcommand = %q Force = %v", a.Subcommand, a.Force)
				}
			},
		},
		{
			name:    "config get key",
			argv:    []string{"config", "get", "endpoint.param"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "get" || a.ConfigKey != "endpoint.param" {
					t.Errorf("Subcommand = %q ConfigKey = %q", a.Subcommand, a.ConfigKey)
				}
			},
		},
		{
			name:    "serve flags",
			argv:    []string{"serve", "--addr", ":9000", "--mode=openai"},
			wantCmd: CmdServe,
			check: func(t *testing.T, a Args) {
				if a.Addr != ":9000" || a.Mode != "openai" {
					t.Errorf("Addr = %q Mode = %q", a.Addr, a.Mode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Fatalf("Parse(%v) command = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"get", "--lines", "50", "--since=today", "--force", "key", "--", "--literal"}, "force")

	if got := p.Subcommand(); got != "get" {
		t.Errorf("Subcommand() = %q", got)
	}
	if got := p.Flag("lines"); got != "50" {
		t.Errorf("Flag(lines) = %q", got)
	}
	if got := p.Flag("--since"); got != "today" {
		t.Errorf("Flag(since) = %q", got)
	}
	if !p.BoolFlag("force") {
		t.Error("BoolFlag(force) should be true")
	}
	if got := strings.Join(p.PositionalFrom(1), " "); got != "key --literal" {
		t.Errorf("PositionalFrom(1) = %q", got)
	}
	if n, err := p.FlagInt("lines"); err != nil || n != 50 {
		t.Errorf("FlagInt(lines) = %d, %v", n, err)
	}
	if _, err := p.FlagInt("since"); err == nil {
		t.Error("FlagInt(since) should fail")
	}
	if got := p.FlagOrDefault("missing", "def"); got != "def" {
		t.Errorf("FlagOrDefault = %q", got)
	}
	if !p.HasFlag("force") || p.HasFlag("missing") {
		t.Error("HasFlag mismatch")
	}
}

func TestArgParser_BoolFlagDoesNotEatPositional(t *testing.T) {
	p := NewArgParser([]string{"init", "--force", "extra"}, "force")
	if p.PositionalCount() != 2 {
		t.Fatalf("PositionalCount() = %d, want 2", p.PositionalCount())
	}
	if p.Positional(5) != "" {
		t.Error("out of range Positional should be empty")
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", ErrMissingArgument("ask", "text", askUsage), ExitUsageError},
		{"config load", &ConfigLoadError{Path: "x", Err: os.ErrNotExist}, ExitConfigError},
		{"validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "endpoint.param", Message: "empty"}}), ExitConfigError},
		{"connection", &chatapi.TransportError{Kind: chatapi.KindConnection}, ExitNetworkError},
		{"timeout wrapped", fmt.Errorf("endpoint unreachable: %w", &chatapi.TransportError{Kind: chatapi.KindTimeout}), ExitTimeoutError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsageError_Message(t *testing.T) {
	err := ErrMissingArgument("ask", "text", askUsage)
	msg := err.Error()
	if !strings.HasPrefix(msg, "ask: missing required argument <text>") {
		t.Errorf("Error() = %q", msg)
	}
	if !strings.Contains(msg, "usage: "+askUsage) {
		t.Errorf("Error() = %q, want usage line", msg)
	}
}

// =============================================================================
// VERSION
// =============================================================================

func TestHandleVersion_JSON(t *testing.T) {
	out := captureStdout(t)

	if err := HandleVersion(Args{JSON: true}); err != nil {
		t.Fatalf("HandleVersion: %v", err)
	}
	env := decodeJSON[VersionData](t, out)
	if !env.Success || env.Command != "version" {
		t.Errorf("envelope = %+v", env)
	}
	if env.Data.Version != Version {
		t.Errorf("version = %q, want %q", env.Data.Version, Version)
	}
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func TestHandleConfig_InitThenGet(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	out := captureStdout(t)

	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	err = HandleConfig(Args{ConfigPath: path, Subcommand: "init"})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("second init error = %v, want UsageError", err)
	}
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "init", Force: true}); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	out.Reset()
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "get", ConfigKey: "endpoint.param"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "msg" {
		t.Errorf("get endpoint.param = %q, want msg", got)
	}

	out.Reset()
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "path"}); err != nil {
		t.Fatalf("path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestHandleConfig_GetErrors(t *testing.T) {
	isolate(t)
	path := writeTestConfig(t, "http://localhost:8000", "")
	captureStdout(t)

	var usageErr *UsageError
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "get"}); !errors.As(err, &usageErr) {
		t.Errorf("missing key error = %v", err)
	}
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "get", ConfigKey: "endpoint.nope"}); !errors.As(err, &usageErr) {
		t.Errorf("unknown key error = %v", err)
	}
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "bogus"}); !errors.As(err, &usageErr) {
		t.Errorf("unknown subcommand error = %v", err)
	}
}

func TestHandleConfig_ShowMasksSecrets(t *testing.T) {
	isolate(t)
	path := writeTestConfig(t, "http://localhost:8000", "\n[server]\nopenai_key = \"sk-secret\"\n")
	out := captureStdout(t)

	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "show"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(out.String(), "sk-secret") {
		t.Error("show leaked the API key")
	}
	if !strings.Contains(out.String(), "base_url") {
		t.Errorf("show output missing base_url:\n%s", out.String())
	}

	out.Reset()
	if err := HandleConfig(Args{ConfigPath: path, Subcommand: "show", JSON: true}); err != nil {
		t.Fatalf("show --json: %v", err)
	}
	env := decodeJSON[struct {
		Path   string         `json:"path"`
		Values map[string]any `json:"values"`
	}](t, out)
	if env.Data.Path != path {
		t.Errorf("path = %q", env.Data.Path)
	}
	if env.Data.Values["server.openai_key"] != "********" {
		t.Errorf("openai_key = %v, want masked", env.Data.Values["server.openai_key"])
	}
	if env.Data.Values["endpoint.base_url"] != "http://localhost:8000" {
		t.Errorf("base_url = %v", env.Data.Values["endpoint.base_url"])
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	isolate(t)
	_, _, err := loadConfig(Args{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})

	var loadErr *ConfigLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error = %v, want ConfigLoadError", err)
	}
	if GetExitCode(err) != ExitConfigError {
		t.Errorf("exit code = %d", GetExitCode(err))
	}
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk_PrintsReply(t *testing.T) {
	isolate(t)
	srv := echoEndpoint(t)
	path := writeTestConfig(t, srv.URL, "")
	out := captureStdout(t)

	if err := HandleAsk(Args{ConfigPath: path, Text: "hello"}); err != nil {
		t.Fatalf("HandleAsk: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "You said: hello" {
		t.Errorf("output = %q", got)
	}
}

func TestHandleAsk_JSONWithAttachment(t *testing.T) {
	isolate(t)
	srv := echoEndpoint(t)
	path := writeTestConfig(t, srv.URL, "")
	attachment := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(attachment, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	out := captureStdout(t)

	err := HandleAsk(Args{ConfigPath: path, Text: "check", Attach: attachment, JSON: true})
	if err != nil {
		t.Fatalf("HandleAsk: %v", err)
	}
	env := decodeJSON[AskData](t, out)
	if env.Data.Reply != "You said: check" {
		t.Errorf("reply = %q", env.Data.Reply)
	}
	if env.Data.Failed {
		t.Error("failed should be false")
	}
	if env.Data.Attachment != "notes.txt" {
		t.Errorf("attachment = %q", env.Data.Attachment)
	}
}

func TestHandleAsk_FailurePrintsFallback(t *testing.T) {
	isolate(t)
	path := writeTestConfig(t, deadEndpoint(t), "")
	out := captureStdout(t)

	if err := HandleAsk(Args{ConfigPath: path, Text: "hello", JSON: true}); err != nil {
		t.Fatalf("HandleAsk should not fail on transport errors: %v", err)
	}
	env := decodeJSON[AskData](t, out)
	if !env.Data.Failed {
		t.Error("failed should be true")
	}
	if env.Data.Reply != controller.DefaultFallbackText {
		t.Errorf("reply = %q, want fallback", env.Data.Reply)
	}
}

func TestHandleAsk_MissingText(t *testing.T) {
	isolate(t)
	old := stdin
	stdin = strings.NewReader("   ")
	t.Cleanup(func() { stdin = old })

	err := HandleAsk(Args{})
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("error = %v, want usage error", err)
	}
}

func TestHandleAsk_ReadsStdin(t *testing.T) {
	isolate(t)
	srv := echoEndpoint(t)
	path := writeTestConfig(t, srv.URL, "")
	out := captureStdout(t)
	old := stdin
	stdin = strings.NewReader("piped text\n")
	t.Cleanup(func() { stdin = old })

	if err := HandleAsk(Args{ConfigPath: path}); err != nil {
		t.Fatalf("HandleAsk: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "You said: piped text" {
		t.Errorf("output = %q", got)
	}
}

// =============================================================================
// STATUS
// =============================================================================

func TestHandleStatus_Reachable(t *testing.T) {
	isolate(t)
	srv := echoEndpoint(t)
	path := writeTestConfig(t, srv.URL, "")
	out := captureStdout(t)

	if err := HandleStatus(Args{ConfigPath: path}); err != nil {
		t.Fatalf("HandleStatus: %v", err)
	}
	if !strings.Contains(out.String(), "[OK]") {
		t.Errorf("output missing [OK]:\n%s", out.String())
	}
	if !strings.Contains(out.String(), srv.URL+"/chat") {
		t.Errorf("output missing endpoint:\n%s", out.String())
	}
}

func TestHandleStatus_UnreachableJSON(t *testing.T) {
	isolate(t)
	path := writeTestConfig(t, deadEndpoint(t), "")
	out := captureStdout(t)

	err := HandleStatus(Args{ConfigPath: path, JSON: true})
	if GetExitCode(err) != ExitNetworkError {
		t.Errorf("error = %v, want network error", err)
	}
	env := decodeJSON[StatusData](t, out)
	if env.Data.Reachable {
		t.Error("reachable should be false")
	}
	if env.Data.Error == "" {
		t.Error("error should be set")
	}
	if env.Data.ConfigPath != path {
		t.Errorf("config_path = %q", env.Data.ConfigPath)
	}
}

func TestRenderField_AlignsValues(t *testing.T) {
	for _, label := range []string{"Log", "Endpoint", "Réachable"} {
		line := RenderField(label, "value")
		if w := lipgloss.Width(line); w != fieldLabelWidth+len("value") {
			t.Errorf("RenderField(%q) width = %d, want %d", label, w, fieldLabelWidth+len("value"))
		}
		if !strings.Contains(line, "value") {
			t.Errorf("RenderField(%q) = %q, missing value", label, line)
		}
	}
}

// =============================================================================
// REPL
// =============================================================================

type scriptedEditor struct {
	lines   []string
	history []string
	closed  bool
}

func (e *scriptedEditor) Prompt(string) (string, error) {
	if len(e.lines) == 0 {
		return "", io.EOF
	}
	line := e.lines[0]
	e.lines = e.lines[1:]
	return line, nil
}

func (e *scriptedEditor) AppendHistory(item string) { e.history = append(e.history, item) }

func (e *scriptedEditor) Close() error {
	e.closed = true
	return nil
}

type recordingSender struct {
	texts []string
	err   error
}

func (s *recordingSender) Send(_ context.Context, text string) (string, error) {
	s.texts = append(s.texts, text)
	if s.err != nil {
		return "", s.err
	}
	return "reply to " + text, nil
}

func newTestREPL(t *testing.T, sender controller.Sender, lines ...string) (*repl, *scriptedEditor, *bytes.Buffer) {
	t.Helper()
	store := conversation.New("Hello. How can I assist you today?")
	ctrl := controller.New(store, sender)
	editor := &scriptedEditor{lines: lines}
	out := &bytes.Buffer{}
	return newREPL(ctrl, editor, out, config.Default().UI), editor, out
}

func TestREPL_ConversationFlow(t *testing.T) {
	attachment := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(attachment, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	sender := &recordingSender{}
	r, editor, out := newTestREPL(t, sender,
		"hello",
		"/attach "+attachment,
		"",
		"/clock",
		"/quit",
		"never read",
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := strings.Join(sender.texts, "|"); got != "hello|" {
		t.Errorf("sent texts = %q, want %q", got, "hello|")
	}
	if len(editor.lines) != 1 {
		t.Errorf("/quit should stop reading, %d lines left", len(editor.lines))
	}

	msgs := r.store.Messages()
	if len(msgs) != 5 {
		t.Fatalf("messages = %d, want 5", len(msgs))
	}
	if msgs[3].Text != " (Attached: notes.txt)" {
		t.Errorf("attachment-only message = %q", msgs[3].Text)
	}
	if r.store.PendingAttachment() != nil {
		t.Error("attachment should be cleared after sending")
	}

	text := out.String()
	for _, want := range []string{"reply to hello", "attached notes.txt", "clock: "} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestREPL_FailureShowsFallback(t *testing.T) {
	sender := &recordingSender{err: &chatapi.TransportError{Kind: chatapi.KindConnection, Message: "refused"}}
	r, _, out := newTestREPL(t, sender, "hello")

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), controller.DefaultFallbackText) {
		t.Errorf("output missing fallback:\n%s", out.String())
	}
	if r.store.AwaitingReply() {
		t.Error("should not be awaiting after failure")
	}
}

func TestREPL_SendsLinesAsTyped(t *testing.T) {
	sender := &recordingSender{}
	r, editor, _ := newTestREPL(t, sender, "  indented  ", "/etc/hosts is what?", "/nope")

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"  indented  ", "/etc/hosts is what?", "/nope"}
	if strings.Join(sender.texts, "|") != strings.Join(want, "|") {
		t.Errorf("sent texts = %q, want %q", sender.texts, want)
	}
	msgs := r.store.Messages()
	if len(msgs) != 7 {
		t.Fatalf("messages = %d, want 7", len(msgs))
	}
	if msgs[1].Text != "  indented  " {
		t.Errorf("user message = %q, want the line untrimmed", msgs[1].Text)
	}
	if msgs[3].Text != "/etc/hosts is what?" {
		t.Errorf("user message = %q", msgs[3].Text)
	}
	if len(editor.history) != 3 {
		t.Errorf("history = %q", editor.history)
	}
}

func TestIsREPLCommand(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"/quit", true},
		{"/Q", true},
		{"/attach ~/notes.txt", true},
		{"/detach", true},
		{"/etc/hosts is what?", false},
		{"/attachment please", false},
		{"/", false},
		{"hello /help", false},
	}
	for _, tt := range tests {
		if got := isREPLCommand(tt.line); got != tt.want {
			t.Errorf("isREPLCommand(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestREPL_DetachAndBlankLines(t *testing.T) {
	attachment := filepath.Join(t.TempDir(), "a.pdf")
	if err := os.WriteFile(attachment, nil, 0600); err != nil {
		t.Fatal(err)
	}
	sender := &recordingSender{}
	r, editor, out := newTestREPL(t, sender, "   ", "/detach", "/attach "+attachment, "/detach", "", "/attach")

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sender.texts) != 0 {
		t.Errorf("nothing should be sent, got %q", sender.texts)
	}
	if len(editor.history) != 4 {
		t.Errorf("history = %q, blank lines should be skipped", editor.history)
	}
	for _, want := range []string{"nothing attached", "attachment removed", "usage: /attach <path>"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)
	if got := expandHome("~/notes.txt"); got != filepath.Join(home, "notes.txt") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome = %q", got)
	}
}

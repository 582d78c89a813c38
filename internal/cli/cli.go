// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// stdin, stdout and stderr are swapped out by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdStatus
	CmdConfig
	CmdServe
	CmdVersion
	CmdHelp
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdServe:
		return "serve"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config PATH
	JSON       bool   // --json
	Quiet      bool   // -q, --quiet
	Verbose    bool   // -v, --verbose: debug logging

	// ask
	Text   string
	Attach string

	// config
	Subcommand string
	ConfigKey  string
	Force      bool

	// serve
	Addr string
	Mode string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `davut - terminal client for the Davut GPT chat endpoint

Usage:
  davut                         Start the chat TUI (default)
  davut chat, repl              Line-mode chat session
  davut ask <text>              Send one message and print the reply
      --attach FILE               Attach a file reference (name only)
  davut status, s               Show the endpoint and whether it answers
  davut config [show]           Print the effective configuration
  davut config path             Print the config file location
  davut config init [--force]   Write a default config file
  davut config get KEY          Print one value (e.g. endpoint.base_url)
  davut serve                   Run a local chat endpoint for development
      --addr HOST:PORT            Listen address (default from config)
      --mode echo|openai          Reply mode (default from config)
  davut version                 Print version information
  davut help                    Show this help

Global flags:
  --config PATH                 Use this config file instead of ~/.davut/config.toml
  --json                        Machine-readable output (ask, status, config, version)
  -q, --quiet                   Less output
  -v, --verbose                 Debug logging

Environment:
  DAVUT_ENDPOINT                Endpoint URL, e.g. http://host:8000/chat
  DAVUT_TIMEOUT                 Request timeout in seconds (0 = none)
  DAVUT_CLOCK                   auto, 12h or 24h
  DAVUT_LOG_LEVEL               debug, info, warn, error
  DAVUT_OPENAI_KEY              API key for 'serve --mode openai'
`

// =============================================================================
// PARSING
// =============================================================================

// Parse parses the command line (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "chat", "repl":
		return CmdChat, args
	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args
	case "serve", "server":
		parseServeArgs(&args, remaining)
		return CmdServe, args
	case "version", "--version", "-V":
		return CmdVersion, args
	default:
		return CmdHelp, args
	}
}

// parseGlobalFlags pulls global flags out of args wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--config", "-c":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, args
}

func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Attach = p.Flag("attach", "a", "f", "file")
	args.Text = strings.Join(p.PositionalFrom(0), " ")
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "force")
	args.Subcommand = p.Subcommand()
	args.ConfigKey = p.Positional(1)
	args.Force = p.BoolFlag("force")
}

func parseServeArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Addr = p.Flag("addr")
	args.Mode = p.Flag("mode")
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Fprint(stdout, usageText)
}

// HandleVersion prints version information.
func HandleVersion(args Args) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if args.JSON {
		return NewJSONResponse("version", data).Write(stdout)
	}

	fmt.Fprintf(stdout, "davut %s\n", data.Version)
	if !args.Quiet {
		fmt.Fprintf(stdout, "  commit:   %s\n", data.GitCommit)
		fmt.Fprintf(stdout, "  built:    %s\n", data.BuildDate)
		fmt.Fprintf(stdout, "  go:       %s\n", data.GoVersion)
		fmt.Fprintf(stdout, "  platform: %s\n", data.Platform)
	}
	return nil
}

// davut - a terminal client for the Davut GPT chat endpoint.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/davut-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = cli.HandleTUI(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdServe:
		err = cli.HandleServe(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	default:
		cli.HandleHelp()
	}

	cli.HandleErrorAndExit(err, args.JSON)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the davut command line and runs its commands.
//
// Every front end (the TUI, the line-mode chat and ask) builds the same
// session: config, logging, a chatapi.Client, a conversation.Store and a
// controller.Controller. They differ only in how they read input and
// render the store.
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	// ... other commands
//	}
//	cli.HandleErrorAndExit(err, args.JSON)
//
// # Commands
//
//   - tui (default): full-screen chat
//   - chat, repl: line-mode chat with history
//   - ask: one message, one reply
//   - status: endpoint reachability
//   - config: show, path, init, get
//   - serve: local development endpoint
//   - version, help
//
// # Exit Codes
//
// 0 success, 1 general, 2 usage, 3 config, 5 network, 8 timeout. A failed
// chat request is not an error: the fallback text is shown and ask exits 0.
package cli

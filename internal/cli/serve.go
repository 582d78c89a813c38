// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - runs a local chat endpoint so the client can be tried without
// the real backend.
//
// Examples:
//
//	davut serve
//	davut serve --addr 0.0.0.0:9000
//	DAVUT_OPENAI_KEY=sk-... davut serve --mode openai
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/davut-tui/internal/logging"
	"github.com/jeranaias/davut-tui/internal/server"
)

// HandleServe runs the development endpoint until SIGINT or SIGTERM.
func HandleServe(args Args) error {
	cfg, _, err := loadConfig(args)
	if err != nil {
		return err
	}
	if args.Addr != "" {
		cfg.Server.Addr = args.Addr
	}
	if args.Mode != "" {
		cfg.Server.ReplyMode = args.Mode
	}

	if err := setupLogging(cfg, args, true); err != nil {
		return err
	}
	defer logging.Close()

	replier, err := server.NewReplier(cfg.Server)
	if err != nil {
		return &UsageError{Command: "serve", Reason: err.Error()}
	}
	srv := server.New(cfg.Server, replier, server.WithEndpoint(cfg.Endpoint))
	path, param := srv.Route()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !args.Quiet {
		fmt.Fprintf(stdout, "%s listening on http://%s (%s replies)\n",
			TitleStyle.Render("davut serve"), cfg.Server.Addr, replier.Mode())
		fmt.Fprintln(stdout, DimStyle.Render(fmt.Sprintf("POST %s?%s=... | GET /health | GET /metrics | Ctrl+C to stop", path, param)))
	}
	return srv.Run(ctx)
}

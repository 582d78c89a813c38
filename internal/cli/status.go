// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - reports where davut sends messages and whether anything answers.
//
// Fields:
//
//	Endpoint   Request URL without the query string
//	Reachable  Whether GET <base>/health answered 2xx
//	Latency    Round trip of the probe
//	Config     Config file in use
//	Log        Log file
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/davut-tui/internal/chatapi"
	"github.com/jeranaias/davut-tui/internal/config"
)

// statusTimeout bounds the health probe.
const statusTimeout = 5 * time.Second

// HandleStatus probes the configured endpoint. An unreachable endpoint is
// reported and returned as an error so scripts can test the exit code.
func HandleStatus(args Args) error {
	cfg, path, err := loadConfig(args)
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if def, err := config.DefaultLogFile(); err == nil {
			logFile = def
		}
	}

	client := chatapi.NewClient(chatapi.FromEndpoint(cfg.Endpoint))
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	start := time.Now()
	probeErr := client.Health(ctx)
	latency := time.Since(start)

	data := StatusData{
		Endpoint:   client.Endpoint(),
		Reachable:  probeErr == nil,
		LatencyMs:  latency.Milliseconds(),
		ConfigPath: path,
		LogFile:    logFile,
	}
	if probeErr != nil {
		data.Error = probeErr.Error()
	}

	if args.JSON {
		if err := NewJSONResponse("status", data).Write(stdout); err != nil {
			return err
		}
	} else {
		printStatus(data)
	}

	if probeErr != nil {
		return fmt.Errorf("endpoint unreachable: %w", probeErr)
	}
	return nil
}

func printStatus(d StatusData) {
	fmt.Fprintln(stdout, TitleStyle.Render("davut status"))
	fmt.Fprintln(stdout, RenderSeparator())
	fmt.Fprintln(stdout, RenderField("Endpoint", d.Endpoint))
	fmt.Fprintln(stdout, RenderField("Reachable", RenderStatus(d.Reachable)))
	if d.Reachable {
		fmt.Fprintln(stdout, RenderField("Latency", fmt.Sprintf("%dms", d.LatencyMs)))
	} else {
		fmt.Fprintln(stdout, RenderField("Error", ErrorStyle.Render(d.Error)))
	}
	fmt.Fprintln(stdout, RenderField("Config", d.ConfigPath))
	fmt.Fprintln(stdout, RenderField("Log", d.LogFile))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"os"

	"github.com/jeranaias/davut-tui/internal/chatapi"
	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/controller"
	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/logging"
)

// =============================================================================
// BOOTSTRAP
// =============================================================================

// session is everything a chat front end needs.
type session struct {
	cfg        *config.Config
	configPath string
	client     *chatapi.Client
	store      *conversation.Store
	ctrl       *controller.Controller
}

// resolveConfigPath returns --config or the default location.
func resolveConfigPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// loadConfig loads the config named by args. An explicit --config must
// exist; the default location may be missing.
func loadConfig(args Args) (*config.Config, string, error) {
	path, err := resolveConfigPath(args)
	if err != nil {
		return nil, "", err
	}

	var cfg *config.Config
	if args.ConfigPath != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, path, &ConfigLoadError{Path: path, Err: statErr}
		}
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, &ConfigLoadError{Path: path, Err: err}
	}

	return cfg, path, nil
}

// setupLogging sends logs to the configured file. consoleToo additionally
// writes human-readable lines to stderr, for commands that do not own the
// terminal.
func setupLogging(cfg *config.Config, args Args, consoleToo bool) error {
	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}

	file := cfg.Log.File
	if file == "" {
		def, err := config.DefaultLogFile()
		if err != nil {
			return err
		}
		file = def
	}

	if consoleToo {
		return logging.Init(logging.Config{Level: level, Output: stderr, Pretty: true})
	}
	return logging.Init(logging.Config{Level: level, File: file})
}

// newSession loads config, starts logging and wires the chat components.
func newSession(args Args) (*session, error) {
	cfg, path, err := loadConfig(args)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg, args, false); err != nil {
		return nil, errors.Join(errors.New("could not open log file"), err)
	}

	client := chatapi.NewClient(chatapi.FromEndpoint(cfg.Endpoint))
	store := conversation.New(cfg.Chat.Greeting)
	ctrl := controller.New(store, client, controller.WithFallbackText(cfg.Chat.FallbackText))

	logging.L().Info().
		Str("endpoint", client.Endpoint()).
		Str("config", path).
		Msg("session started")

	return &session{
		cfg:        cfg,
		configPath: path,
		client:     client,
		store:      store,
		ctrl:       ctrl,
	}, nil
}

// Close flushes the log.
func (s *session) Close() {
	logging.L().Info().Msg("session ended")
	_ = logging.Close()
}

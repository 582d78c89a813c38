// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides structured logging for davut.
//
// The TUI owns the terminal, so logs go to a file (default ~/.davut/davut.log)
// as JSON lines. Operator-facing detail such as transport failures lives here
// and never reaches the conversation.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error, disabled
	File   string    // log file path; empty means Output
	Output io.Writer // used when File is empty; nil discards
	Pretty bool      // console formatting, for `serve` in a terminal
}

var (
	mu     sync.RWMutex
	global = zerolog.Nop()
	closer io.Closer
)

// ParseLevel maps a config string onto a zerolog level. Unknown values map to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger from cfg. The returned closer releases the log file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = io.Discard
	var c io.Closer

	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return zerolog.Nop(), nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out, c = f, f
	case cfg.Output != nil:
		out = cfg.Output
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "davut").
		Logger()

	return logger, c, nil
}

// Init replaces the process-wide logger. Safe to call more than once; the
// previous log file is closed.
func Init(cfg Config) error {
	logger, c, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := closer
	global = logger
	closer = c
	mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// Close flushes and closes the log file opened by Init.
func Close() error {
	mu.Lock()
	c := closer
	closer = nil
	global = zerolog.Nop()
	mu.Unlock()

	if c != nil {
		return c.Close()
	}
	return nil
}

// L returns the process-wide logger. Before Init it discards everything.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// Component returns a sub-logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

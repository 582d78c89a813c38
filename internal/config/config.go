// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/jeranaias/davut-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete davut configuration.
type Config struct {
	// Endpoint is the remote chat endpoint
	Endpoint EndpointConfig `toml:"endpoint"`

	// Chat holds conversation texts
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`

	// Server configures `davut serve`
	Server ServerConfig `toml:"server"`
}

// EndpointConfig describes the chat endpoint a message is posted to.
type EndpointConfig struct {
	// BaseURL is scheme://host[:port] of the endpoint
	BaseURL string `toml:"base_url"`
	// Path is the route the message is posted to
	Path string `toml:"path"`
	// Param is the query parameter carrying the message text
	Param string `toml:"param"`
	// TimeoutSecs bounds a single request. 0 disables the timeout.
	TimeoutSecs int `toml:"timeout_secs"`
}

// URL returns the full request URL without the query string.
func (e EndpointConfig) URL() string {
	return strings.TrimRight(e.BaseURL, "/") + e.Path
}

// Timeout returns the request timeout as a duration.
func (e EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// ChatConfig contains the fixed texts of a conversation.
type ChatConfig struct {
	// Greeting is the bot message every conversation starts with
	Greeting string `toml:"greeting"`
	// FallbackText replaces the reply when a request fails
	FallbackText string `toml:"fallback_text"`
}

// UIConfig contains display settings. These are reloaded live by the TUI.
type UIConfig struct {
	// ClockFormat is "auto", "12h" or "24h"
	ClockFormat string `toml:"clock_format"`
	// ShowTimestamps renders the time under each bubble
	ShowTimestamps bool `toml:"show_timestamps"`
	// Markdown renders bot replies with glamour
	Markdown bool `toml:"markdown"`
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme"`
}

// Clock returns the parsed clock format, falling back to auto.
func (u UIConfig) Clock() model.ClockFormat {
	f, err := model.ParseClockFormat(u.ClockFormat)
	if err != nil {
		return model.ClockAuto
	}
	return f
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn, error or disabled
	Level string `toml:"level"`
	// File is the log file path (empty = ~/.davut/davut.log)
	File string `toml:"file"`
}

// ServerConfig configures the local development endpoint.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `toml:"addr"`
	// ReplyMode is "echo" or "openai"
	ReplyMode string `toml:"reply_mode"`
	// OpenAIKey is the API key used in openai mode
	OpenAIKey string `toml:"openai_key"`
	// OpenAIModel is the chat model used in openai mode
	OpenAIModel string `toml:"openai_model"`
	// RateLimit is requests per second per client IP (0 = unlimited)
	RateLimit float64 `toml:"rate_limit"`
	// RateBurst is the token bucket size
	RateBurst int `toml:"rate_burst"`
}

// Reply modes for the development endpoint.
const (
	ReplyModeEcho   = "echo"
	ReplyModeOpenAI = "openai"
)

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:     "http://localhost:8000",
			Path:        "/chat",
			Param:       "msg",
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			Greeting:     "Hello. How can I assist you today?",
			FallbackText: "An unexpected error occurred.",
		},
		UI: UIConfig{
			ClockFormat:    string(model.ClockAuto),
			ShowTimestamps: true,
			Markdown:       true,
			Theme:          "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8000",
			ReplyMode:   ReplyModeEcho,
			OpenAIModel: "gpt-4o-mini",
			RateLimit:   5,
			RateBurst:   10,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the davut configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".davut"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns ~/.davut/davut.log.
func DefaultLogFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "davut.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600; it may hold an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.davut/config.toml, falling back to
// defaults when the file does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadTOML decodes a TOML file over cfg and fills anything left empty.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for string fields a file set to empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	// Endpoint
	if cfg.Endpoint.BaseURL == "" {
		cfg.Endpoint.BaseURL = defaults.Endpoint.BaseURL
	}
	if cfg.Endpoint.Path == "" {
		cfg.Endpoint.Path = defaults.Endpoint.Path
	}
	if cfg.Endpoint.Param == "" {
		cfg.Endpoint.Param = defaults.Endpoint.Param
	}

	// Chat
	if cfg.Chat.Greeting == "" {
		cfg.Chat.Greeting = defaults.Chat.Greeting
	}
	if cfg.Chat.FallbackText == "" {
		cfg.Chat.FallbackText = defaults.Chat.FallbackText
	}

	// UI
	if cfg.UI.ClockFormat == "" {
		cfg.UI.ClockFormat = defaults.UI.ClockFormat
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	// Server
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.ReplyMode == "" {
		cfg.Server.ReplyMode = defaults.Server.ReplyMode
	}
	if cfg.Server.OpenAIModel == "" {
		cfg.Server.OpenAIModel = defaults.Server.OpenAIModel
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# davut configuration file\n")
	buf.WriteString("# Generated by davut - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Endpoint
	// ==========================================================================

	if u, err := url.Parse(c.Endpoint.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "endpoint.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got '%s'", c.Endpoint.BaseURL),
		})
	}
	if !strings.HasPrefix(c.Endpoint.Path, "/") {
		errs = append(errs, ValidationError{
			Field:   "endpoint.path",
			Message: fmt.Sprintf("must start with '/', got '%s'", c.Endpoint.Path),
		})
	}
	if strings.TrimSpace(c.Endpoint.Param) == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.param",
			Message: "must not be empty",
		})
	}
	if c.Endpoint.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.timeout_secs",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Endpoint.TimeoutSecs),
		})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	if _, err := model.ParseClockFormat(c.UI.ClockFormat); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ui.clock_format",
			Message: err.Error(),
		})
	}
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// ==========================================================================
	// Log
	// ==========================================================================

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true,
		"error": true, "disabled": true, "off": true, "none": true,
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	// ==========================================================================
	// Server
	// ==========================================================================

	switch strings.ToLower(c.Server.ReplyMode) {
	case ReplyModeEcho, ReplyModeOpenAI:
	default:
		errs = append(errs, ValidationError{
			Field:   "server.reply_mode",
			Message: fmt.Sprintf("invalid reply mode '%s', must be one of: echo, openai", c.Server.ReplyMode),
		})
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit",
			Message: "must be non-negative",
		})
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_burst",
			Message: "must be at least 1 when rate_limit is set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DAVUT_ENDPOINT: overrides endpoint.base_url (a path in the URL overrides endpoint.path)
//   - DAVUT_TIMEOUT: overrides endpoint.timeout_secs
//   - DAVUT_CLOCK: overrides ui.clock_format
//   - DAVUT_LOG_LEVEL: overrides log.level
//   - DAVUT_OPENAI_KEY, OPENAI_API_KEY: override server.openai_key (DAVUT_ wins)
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("DAVUT_ENDPOINT"); endpoint != "" {
		c.Endpoint.BaseURL, c.Endpoint.Path = splitEndpoint(endpoint, c.Endpoint.Path)
	}

	if timeout := os.Getenv("DAVUT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Endpoint.TimeoutSecs = secs
		}
	}

	if clock := os.Getenv("DAVUT_CLOCK"); clock != "" {
		c.UI.ClockFormat = clock
	}

	if level := os.Getenv("DAVUT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Server.OpenAIKey = key
	}
	if key := os.Getenv("DAVUT_OPENAI_KEY"); key != "" {
		c.Server.OpenAIKey = key
	}
}

// splitEndpoint separates "http://host:8000/chat" into base and path.
// A URL without a path keeps the current path.
func splitEndpoint(raw, currentPath string) (base, path string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, currentPath
	}
	path = currentPath
	if u.Path != "" && u.Path != "/" {
		path = u.Path
	}
	u.Path, u.RawQuery, u.Fragment = "", "", ""
	return u.String(), path
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its TOML key (e.g., "endpoint.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if key == "" {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, fmt.Errorf("invalid key: %s", key)
}

// Keys lists every leaf key in dot notation, in declaration order.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + f.Tag.Get("toml")
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Tag.Get("toml"), tag) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Server.OpenAIKey != "" {
		cp.Server.OpenAIKey = "********"
	}
	return &cp
}

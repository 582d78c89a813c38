// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for davut.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. The file can be watched for changes so the TUI
// picks up display settings without a restart.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - EndpointConfig: Where and how chat requests are posted
//   - ChatConfig: Greeting and fallback text
//   - UIConfig: Clock format, timestamps, markdown, theme
//   - ServerConfig: Settings for the local development endpoint
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DAVUT_*, OPENAI_API_KEY)
//   - ~/.davut/config.toml (or the path given with --config)
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	endpoint := cfg.Endpoint.URL()
//	timeout := cfg.Endpoint.Timeout()
package config

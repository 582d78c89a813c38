// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DAVUT_ENDPOINT", "DAVUT_TIMEOUT", "DAVUT_CLOCK",
		"DAVUT_LOG_LEVEL", "DAVUT_OPENAI_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// =============================================================================
// DEFAULTS & LOADING
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000/chat", cfg.Endpoint.URL())
	assert.Equal(t, "msg", cfg.Endpoint.Param)
	assert.Equal(t, 60*time.Second, cfg.Endpoint.Timeout())
	assert.Equal(t, "Hello. How can I assist you today?", cfg.Chat.Greeting)
	assert.Equal(t, "An unexpected error occurred.", cfg.Chat.FallbackText)
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[endpoint]
base_url = "https://chat.example.com/"
timeout_secs = 0

[ui]
clock_format = "24h"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com/chat", cfg.Endpoint.URL())
	assert.Equal(t, time.Duration(0), cfg.Endpoint.Timeout(), "0 disables the timeout")
	assert.Equal(t, "24h", cfg.UI.ClockFormat)
	assert.Equal(t, "Hello. How can I assist you today?", cfg.Chat.Greeting)
	assert.True(t, cfg.UI.Markdown, "unset booleans keep their defaults")
}

func TestLoadFromPath_EmptyStringsRestored(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[chat]
greeting = ""
fallback_text = ""
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Chat, cfg.Chat)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[endpoint]
base_url = "localhost:8000"
path = "chat"
timeout_secs = -1

[ui]
clock_format = "13h"
theme = "neon"

[server]
reply_mode = "parrot"
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs), "error should wrap ValidateErrors: %v", err)

	fields := make(map[string]bool)
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{
		"endpoint.base_url", "endpoint.path", "endpoint.timeout_secs",
		"ui.clock_format", "ui.theme", "server.reply_mode",
	} {
		assert.True(t, fields[want], "expected validation error for %s", want)
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := writeConfig(t, "[endpoint\nbase_url = ")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Endpoint, cfg.Endpoint)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAVUT_ENDPOINT", "http://10.0.0.5:9000/api/ask")
	t.Setenv("DAVUT_TIMEOUT", "5")
	t.Setenv("DAVUT_CLOCK", "12h")
	t.Setenv("DAVUT_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-generic")
	t.Setenv("DAVUT_OPENAI_KEY", "sk-davut")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Endpoint.BaseURL)
	assert.Equal(t, "/api/ask", cfg.Endpoint.Path)
	assert.Equal(t, 5, cfg.Endpoint.TimeoutSecs)
	assert.Equal(t, "12h", cfg.UI.ClockFormat)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-davut", cfg.Server.OpenAIKey, "DAVUT_OPENAI_KEY wins over OPENAI_API_KEY")
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		wantBase string
		wantPath string
	}{
		{"http://host:8000", "http://host:8000", "/chat"},
		{"http://host:8000/", "http://host:8000", "/chat"},
		{"https://host/v1/chat?x=1", "https://host", "/v1/chat"},
		{"not a url", "not a url", "/chat"},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			base, path := splitEndpoint(tc.raw, "/chat")
			assert.Equal(t, tc.wantBase, base)
			assert.Equal(t, tc.wantPath, path)
		})
	}
}

// =============================================================================
// SAVE & HELPERS
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Endpoint.BaseURL = "http://127.0.0.1:9999"
	cfg.UI.ShowTimestamps = false
	require.NoError(t, SaveTOML(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("endpoint.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", v)

	v, err = cfg.Get("endpoint.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, 60, v)

	_, err = cfg.Get("endpoint.nope")
	assert.Error(t, err)

	_, err = cfg.Get("endpoint.param.deeper")
	assert.Error(t, err)

	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, "endpoint.base_url")
	assert.Contains(t, keys, "ui.clock_format")
	assert.Contains(t, keys, "server.rate_limit")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, "key %s should resolve", k)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.OpenAIKey = "sk-secret"

	red := cfg.Redacted()
	assert.Equal(t, "********", red.Server.OpenAIKey)
	assert.Equal(t, "sk-secret", cfg.Server.OpenAIKey, "original must be untouched")
}

func TestUIConfig_Clock(t *testing.T) {
	assert.Equal(t, "12h", string(UIConfig{ClockFormat: "12h"}.Clock()))
	assert.Equal(t, "auto", string(UIConfig{ClockFormat: "bogus"}.Clock()))
}

// =============================================================================
// CONCURRENT LOADS
// =============================================================================

func TestConfig_ConcurrentLoads(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Chat.Greeting = "custom"
	require.NoError(t, SaveTOML(cfg, path))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := LoadFromPath(path)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, "custom", loaded.Chat.Greeting)
		}()
	}
	wg.Wait()
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[ui]\nclock_format = \"12h\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	err := Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			changes <- cfg
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[ui]\nclock_format = \"24h\"\n"), 0600))

	select {
	case cfg := <-changes:
		assert.Equal(t, "24h", cfg.UI.ClockFormat)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_ReportsInvalidFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	require.NoError(t, Watch(ctx, path, func(cfg *Config, err error) {
		if err != nil {
			assert.Nil(t, cfg)
			errs <- err
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "ui.theme")
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported for invalid file")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.toml"), func(*Config, error) {})
	assert.Error(t, err)
}

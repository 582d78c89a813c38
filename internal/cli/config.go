// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - inspect and create the config file.
//
// Subcommands:
//
//	show          Effective configuration (file + environment), secrets masked
//	path          Location of the config file
//	init          Write the defaults; refuses to overwrite without --force
//	get KEY       One value in dot notation, e.g. endpoint.timeout_secs
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/davut-tui/internal/config"
)

const configUsage = `davut config [show|path|init [--force]|get KEY]`

// HandleConfig dispatches config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "path":
		return handleConfigPath(args)
	case "init":
		return handleConfigInit(args)
	case "get":
		return handleConfigGet(args)
	default:
		return &UsageError{
			Command: "config",
			Reason:  fmt.Sprintf("unknown subcommand %q", args.Subcommand),
			Usage:   configUsage,
		}
	}
}

func handleConfigShow(args Args) error {
	cfg, path, err := loadConfig(args)
	if err != nil {
		return err
	}
	shown := cfg.Redacted()

	if args.JSON {
		values := make(map[string]any)
		for _, key := range config.Keys() {
			v, err := shown.Get(key)
			if err != nil {
				return err
			}
			values[key] = v
		}
		return NewJSONResponse("config", map[string]any{
			"path":   path,
			"values": values,
		}).Write(stdout)
	}

	if !args.Quiet {
		fmt.Fprintln(stdout, DimStyle.Render("# "+path))
	}
	return toml.NewEncoder(stdout).Encode(shown)
}

func handleConfigPath(args Args) error {
	path, err := resolveConfigPath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if args.JSON {
		return NewJSONResponse("config", map[string]any{
			"path":   path,
			"exists": exists,
		}).Write(stdout)
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func handleConfigInit(args Args) error {
	path, err := resolveConfigPath(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !args.Force {
		return &UsageError{
			Command: "config init",
			Reason:  path + " already exists (use --force to overwrite)",
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]any{"path": path, "written": true}).Write(stdout)
	}
	fmt.Fprintln(stdout, SuccessStyle.Render("Wrote "+path))
	return nil
}

func handleConfigGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("config get", "key", "davut config get KEY")
	}
	cfg, _, err := loadConfig(args)
	if err != nil {
		return err
	}
	v, err := cfg.Redacted().Get(args.ConfigKey)
	if err != nil {
		return &UsageError{Command: "config get", Reason: err.Error()}
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]any{args.ConfigKey: v}).Write(stdout)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/davut-tui/internal/chatapi"
	"github.com/jeranaias/davut-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the chat endpoint could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates the chat endpoint timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Reason  string
	Usage   string
}

func (e *UsageError) Error() string {
	msg := e.Reason
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Usage != "" {
		msg += "\nusage: " + e.Usage
	}
	return msg
}

// ErrMissingArgument returns a usage error for a missing argument.
func ErrMissingArgument(command, argName, usage string) error {
	return &UsageError{
		Command: command,
		Reason:  "missing required argument <" + argName + ">",
		Usage:   usage,
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err to stderr, or as JSON to stdout in JSON mode.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
}

// DisplayErrorJSON writes err as a JSON object on stdout.
func DisplayErrorJSON(err error) {
	output := map[string]any{
		"success":    false,
		"error":      err.Error(),
		"error_type": errorType(err),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

func errorType(err error) string {
	var usageErr *UsageError
	var validateErrs config.ValidateErrors
	var validationErr config.ValidationError
	var transportErr *chatapi.TransportError

	switch {
	case errors.As(err, &usageErr):
		return "usage_error"
	case errors.As(err, &validateErrs), errors.As(err, &validationErr):
		return "config_error"
	case errors.As(err, &transportErr):
		return "transport_" + transportErr.Kind.String()
	default:
		return "generic_error"
	}
}

// HandleErrorAndExit displays err and exits with the matching exit code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	var validationErr config.ValidationError
	var loadErr *ConfigLoadError
	if errors.As(err, &validateErrs) || errors.As(err, &validationErr) || errors.As(err, &loadErr) {
		return ExitConfigError
	}

	var transportErr *chatapi.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Kind == chatapi.KindTimeout {
			return ExitTimeoutError
		}
		return ExitNetworkError
	}

	return ExitGeneralError
}

// ConfigLoadError wraps a failure to read or parse the config file.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/controller"
)

// ReplyMsg carries the result of a turn back to Update.
type ReplyMsg struct {
	Result controller.Result
}

// HealthMsg reports an endpoint health probe.
type HealthMsg struct {
	Err error
}

// ConfigReloadedMsg delivers new display settings from the config watcher.
type ConfigReloadedMsg struct {
	UI config.UIConfig
}

// ConfigErrorMsg reports a config file that failed to reload.
type ConfigErrorMsg struct {
	Err error
}

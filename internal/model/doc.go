// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the value types shared by every layer of davut.
//
// # Key Types
//
//   - Message: immutable chat bubble with sender, text, creation time and
//     the attachment reference that was pending when it was sent
//   - Sender: who produced a message (user or bot)
//   - AttachmentRef: a locally held file reference; no bytes are ever read
//   - ClockFormat: how a message timestamp is rendered (auto, 12h, 24h)
//
// # Usage
//
//	msg := model.NewUserMessage("check this", &model.AttachmentRef{Name: "report.pdf"})
//	fmt.Println(msg.Text)                  // "check this (Attached: report.pdf)"
//	fmt.Println(msg.Clock(model.Clock24h)) // "15:04"
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the value types shared by every layer of davut.
package model

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable label for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "you"
	case SenderBot:
		return "davut"
	default:
		return string(s)
	}
}

// =============================================================================
// ATTACHMENT REFERENCE
// =============================================================================

// AttachmentRef is a reference to a local file the user picked.
// Only the name is ever shown; the file is never opened or transmitted.
type AttachmentRef struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// NewAttachmentRef builds a reference from a filesystem path.
// The name is the final path element.
func NewAttachmentRef(path string) *AttachmentRef {
	return &AttachmentRef{
		Name: filepath.Base(path),
		Path: path,
	}
}

// Decoration returns the suffix appended to a user message carrying this attachment.
func (a *AttachmentRef) Decoration() string {
	if a == nil {
		return ""
	}
	return " (Attached: " + a.Name + ")"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat bubble. Messages are values: once created they are
// never modified, and the store hands out copies.
type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	Time   time.Time `json:"time"`

	// Attachment that was pending when a user message was sent (display only).
	Attachment *AttachmentRef `json:"attachment,omitempty"`
}

// now is swapped out by tests that need stable timestamps.
var now = time.Now

// NewUserMessage creates a user message. The visible text is the draft
// followed by the attachment decoration, if any.
func NewUserMessage(text string, att *AttachmentRef) Message {
	msg := Message{
		ID:     generateID(),
		Text:   text + att.Decoration(),
		Sender: SenderUser,
		Time:   now(),
	}
	if att != nil {
		ref := *att
		msg.Attachment = &ref
	}
	return msg
}

// NewBotMessage creates a bot message with the reply text verbatim.
func NewBotMessage(text string) Message {
	return Message{
		ID:     generateID(),
		Text:   text,
		Sender: SenderBot,
		Time:   now(),
	}
}

// IsUser reports whether the user sent the message.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the bot sent the message.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// Clock renders the creation time as hour:minute in the given format.
func (m Message) Clock(format ClockFormat) string {
	return FormatClock(m.Time, format)
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}

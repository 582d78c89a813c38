// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/davut-tui/internal/model"
)

// Turn is one accepted send.
type Turn struct {
	// ID identifies the turn to Complete.
	ID uint64
	// Text is the draft as typed, without the attachment decoration.
	Text string
	// Attachment is the file that was pending when the turn began.
	Attachment *model.AttachmentRef
	// UserMessage is the message appended by Begin.
	UserMessage model.Message

	client Sender
}

// Result is the outcome of running a turn.
type Result struct {
	TurnID   uint64
	Reply    string
	Err      error
	Duration time.Duration
}

// Failed reports whether the fallback text will be shown.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Run performs the network call. It touches no conversation state and may
// run on any goroutine. Only the raw draft is sent; the attachment is not.
func (t *Turn) Run(ctx context.Context) (res Result) {
	start := time.Now()
	res.TurnID = t.ID
	defer func() {
		if r := recover(); r != nil {
			res.Reply = ""
			res.Err = fmt.Errorf("chat client panicked: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	res.Reply, res.Err = t.client.Send(ctx, t.Text)
	return res
}

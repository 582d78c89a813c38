// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller drives a conversation through its two states, Idle and
// AwaitingReply.
//
// A send is split in three so the network call can run off the goroutine that
// owns the store:
//
//	turn, err := ctrl.Begin()   // owner goroutine: validate, append user message
//	res := turn.Run(ctx)        // any goroutine: one HTTP round trip
//	ctrl.Complete(res)          // owner goroutine: append reply or fallback
//
// Send does all three in place for callers that can block. At most one turn
// is in flight; a second Begin fails with ErrBusy and nothing is queued.
package controller

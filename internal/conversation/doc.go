// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the state of a single chat session.
//
// A Store holds the message history, the draft being composed, an optional
// pending attachment and the awaiting-reply flag. History is append-only and
// always starts with one bot greeting. Nothing is persisted.
//
// # Usage
//
//	store := conversation.New("Hello. How can I assist you today?")
//	unsubscribe := store.Subscribe(func(ev conversation.Event) {
//	    if ev.Kind == conversation.EventMessageAppended {
//	        render(ev.Message)
//	    }
//	})
//	defer unsubscribe()
//
// Readers may call accessors from any goroutine. Mutations are expected to
// come from one owner, the controller.
package conversation

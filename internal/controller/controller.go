// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/logging"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/rs/zerolog"
)

// DefaultFallbackText is shown in place of a reply when a request fails.
const DefaultFallbackText = "An unexpected error occurred."

// previewLen caps the message text carried in debug logs.
const previewLen = 40

// Errors returned by Begin and Send when a send is rejected.
var (
	ErrEmptyDraft = errors.New("nothing to send: draft is empty and no file is attached")
	ErrBusy       = errors.New("a reply is still pending")
)

// Sender performs one round trip to the chat endpoint.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// =============================================================================
// STATE
// =============================================================================

// State is the controller's position in the send cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

// String returns the state name.
func (s State) String() string {
	if s == StateAwaitingReply {
		return "awaiting_reply"
	}
	return "idle"
}

// Stats are per-session counters.
type Stats struct {
	Turns       int
	Failures    int
	LastLatency time.Duration
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the only writer of a conversation.Store.
type Controller struct {
	store    *conversation.Store
	client   Sender
	fallback string
	log      zerolog.Logger

	mu      sync.Mutex
	current *Turn
	nextID  uint64
	stats   Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithFallbackText overrides the text shown when a request fails.
func WithFallbackText(text string) Option {
	return func(c *Controller) {
		if text != "" {
			c.fallback = text
		}
	}
}

// New creates a controller for store that sends through client.
func New(store *conversation.Store, client Sender, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		client:   client,
		fallback: DefaultFallbackText,
		log:      logging.Component("controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the conversation the controller drives.
func (c *Controller) Store() *conversation.Store {
	return c.store
}

// FallbackText returns the text used for failed turns.
func (c *Controller) FallbackText() string {
	return c.fallback
}

// State derives the current state from the store.
func (c *Controller) State() State {
	if c.store.AwaitingReply() {
		return StateAwaitingReply
	}
	return StateIdle
}

// Stats returns a copy of the session counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// =============================================================================
// COMPOSER INTENTS
// =============================================================================

// SetDraft replaces the draft text. Allowed while a reply is pending.
func (c *Controller) SetDraft(text string) {
	c.store.SetDraft(text)
}

// SetAttachment replaces the pending attachment without checking the file.
func (c *Controller) SetAttachment(ref *model.AttachmentRef) {
	c.store.SetAttachment(ref)
}

// Attach makes the file at path the pending attachment. The path must name
// an existing regular file; its contents are never read.
func (c *Controller) Attach(path string) (*model.AttachmentRef, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("attach: no path given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attach: %s is a directory", path)
	}
	ref := model.NewAttachmentRef(path)
	c.store.SetAttachment(ref)
	return ref, nil
}

// ClearAttachment removes the pending attachment.
func (c *Controller) ClearAttachment() {
	c.store.ClearAttachment()
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// CanSend reports whether a send would be accepted: the draft has
// non-whitespace text or a file is attached, and no reply is pending.
func (c *Controller) CanSend() bool {
	_, err := c.check()
	return err == nil
}

// check evaluates the guard and returns the snapshot it judged, so the
// caller sends exactly what passed.
func (c *Controller) check() (conversation.State, error) {
	snap := c.store.Snapshot()
	if snap.AwaitingReply {
		return snap, ErrBusy
	}
	if strings.TrimSpace(snap.Draft) == "" && snap.PendingAttachment == nil {
		return snap, ErrEmptyDraft
	}
	return snap, nil
}

// Begin moves Idle to AwaitingReply. It appends the user message, clears
// the draft and the attachment, and returns the turn to run. A rejected
// Begin changes nothing.
func (c *Controller) Begin() (*Turn, error) {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	snap, err := c.check()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	draft := snap.Draft
	att := snap.PendingAttachment
	c.nextID++
	turn := &Turn{
		ID:         c.nextID,
		Text:       draft,
		Attachment: att,
		client:     c.client,
	}
	c.current = turn
	c.mu.Unlock()

	// Observers run inside AppendUserMessage, so it is called unlocked.
	msg, ok := c.store.AppendUserMessage(draft, att)
	if !ok {
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		return nil, ErrEmptyDraft
	}
	turn.UserMessage = msg

	c.log.Debug().
		Uint64("turn", turn.ID).
		Int("text_len", len(draft)).
		Bool("attachment", att != nil).
		Str("preview", msg.Preview(previewLen)).
		Msg("turn started")
	return turn, nil
}

// Complete applies the result of a turn: the reply on success, the fallback
// text on failure. Each turn completes once; results for any other turn are
// ignored and Complete returns false.
func (c *Controller) Complete(res Result) bool {
	c.mu.Lock()
	if c.current == nil || c.current.ID != res.TurnID {
		c.mu.Unlock()
		c.log.Debug().Uint64("turn", res.TurnID).Msg("ignoring stale completion")
		return false
	}
	c.current = nil
	c.stats.Turns++
	c.stats.LastLatency = res.Duration
	if res.Err != nil {
		c.stats.Failures++
	}
	c.mu.Unlock()

	text := res.Reply
	if res.Err != nil {
		text = c.fallback
		c.log.Error().
			Err(res.Err).
			Uint64("turn", res.TurnID).
			Dur("duration", res.Duration).
			Msg("chat request failed, showing fallback")
	} else {
		c.log.Info().
			Uint64("turn", res.TurnID).
			Dur("duration", res.Duration).
			Int("reply_len", len(text)).
			Msg("reply received")
	}

	c.store.AppendBotMessage(text)
	return true
}

// Send runs a whole turn on the calling goroutine.
func (c *Controller) Send(ctx context.Context) (Result, error) {
	turn, err := c.Begin()
	if err != nil {
		return Result{}, err
	}
	res := turn.Run(ctx)
	c.Complete(res)
	return res, nil
}

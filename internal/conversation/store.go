// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"slices"
	"sync"

	"github.com/jeranaias/davut-tui/internal/model"
)

// =============================================================================
// STATE & EVENTS
// =============================================================================

// State is a point-in-time copy of the conversation.
type State struct {
	History           []model.Message
	Draft             string
	PendingAttachment *model.AttachmentRef
	AwaitingReply     bool
}

// EventKind identifies what changed in the store.
type EventKind int

const (
	EventMessageAppended EventKind = iota
	EventDraftChanged
	EventAttachmentChanged
	EventAwaitingChanged
)

// String returns the event name for logging.
func (k EventKind) String() string {
	switch k {
	case EventMessageAppended:
		return "message_appended"
	case EventDraftChanged:
		return "draft_changed"
	case EventAttachmentChanged:
		return "attachment_changed"
	case EventAwaitingChanged:
		return "awaiting_changed"
	default:
		return "unknown"
	}
}

// Event describes one change. Message is set for EventMessageAppended,
// Awaiting for EventAwaitingChanged.
type Event struct {
	Kind     EventKind
	Message  model.Message
	Awaiting bool
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversation state for one session.
type Store struct {
	mu       sync.RWMutex
	history  []model.Message
	draft    string
	pending  *model.AttachmentRef
	awaiting bool

	obsMu     sync.Mutex
	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func(Event)
}

// New creates a store seeded with a single bot greeting.
func New(greeting string) *Store {
	return &Store{
		history: []model.Message{model.NewBotMessage(greeting)},
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AppendUserMessage appends the user's message, clears the draft and the
// pending attachment, and marks the store as awaiting a reply, all in one
// step. It is a no-op returning false when text is empty and att is nil.
func (s *Store) AppendUserMessage(text string, att *model.AttachmentRef) (model.Message, bool) {
	if text == "" && att == nil {
		return model.Message{}, false
	}

	msg := model.NewUserMessage(text, att)

	s.mu.Lock()
	s.history = append(s.history, msg)
	draftChanged := s.draft != ""
	attChanged := s.pending != nil
	awaitChanged := !s.awaiting
	s.draft = ""
	s.pending = nil
	s.awaiting = true
	s.mu.Unlock()

	events := []Event{{Kind: EventMessageAppended, Message: msg}}
	if draftChanged {
		events = append(events, Event{Kind: EventDraftChanged})
	}
	if attChanged {
		events = append(events, Event{Kind: EventAttachmentChanged})
	}
	if awaitChanged {
		events = append(events, Event{Kind: EventAwaitingChanged, Awaiting: true})
	}
	s.notify(events...)
	return msg, true
}

// AppendBotMessage appends a bot message and clears the awaiting flag.
func (s *Store) AppendBotMessage(text string) model.Message {
	msg := model.NewBotMessage(text)

	s.mu.Lock()
	s.history = append(s.history, msg)
	awaitChanged := s.awaiting
	s.awaiting = false
	s.mu.Unlock()

	events := []Event{{Kind: EventMessageAppended, Message: msg}}
	if awaitChanged {
		events = append(events, Event{Kind: EventAwaitingChanged, Awaiting: false})
	}
	s.notify(events...)
	return msg
}

// SetDraft replaces the draft. Allowed while a reply is pending.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	changed := s.draft != text
	s.draft = text
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: EventDraftChanged})
	}
}

// SetAttachment replaces the pending attachment. The file is not checked.
func (s *Store) SetAttachment(ref *model.AttachmentRef) {
	var cp *model.AttachmentRef
	if ref != nil {
		r := *ref
		cp = &r
	}

	s.mu.Lock()
	s.pending = cp
	s.mu.Unlock()

	s.notify(Event{Kind: EventAttachmentChanged})
}

// ClearAttachment removes the pending attachment.
func (s *Store) ClearAttachment() {
	s.mu.Lock()
	changed := s.pending != nil
	s.pending = nil
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: EventAttachmentChanged})
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		History:           s.copyHistory(),
		Draft:             s.draft,
		PendingAttachment: copyRef(s.pending),
		AwaitingReply:     s.awaiting,
	}
}

// Messages returns a copy of the history in display order.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyHistory()
}

// Len returns the number of messages in the history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Draft returns the current draft.
func (s *Store) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// PendingAttachment returns a copy of the pending attachment, or nil.
func (s *Store) PendingAttachment() *model.AttachmentRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRef(s.pending)
}

// AwaitingReply reports whether a request is in flight.
func (s *Store) AwaitingReply() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.awaiting
}

func (s *Store) copyHistory() []model.Message {
	out := make([]model.Message, len(s.history))
	for i, m := range s.history {
		m.Attachment = copyRef(m.Attachment)
		out[i] = m
	}
	return out
}

func copyRef(ref *model.AttachmentRef) *model.AttachmentRef {
	if ref == nil {
		return nil
	}
	r := *ref
	return &r
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers fn to be called after every change. Observers run
// synchronously on the mutating goroutine, in subscription order, after the
// store lock is released, so they may read the store. The returned function
// unsubscribes.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool {
			return o.id == id
		})
	}
}

func (s *Store) notify(events ...Event) {
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()

	for _, ev := range events {
		for _, o := range observers {
			o.fn(ev)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jeranaias/davut-tui/internal/conversation"
	"github.com/jeranaias/davut-tui/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "Hello. How can I assist you today?"

// fakeSender records every request and answers from a script.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	reply string
	err   error
	panic bool
	block chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.sent = append(f.sent, text)
	block, reply, err, shouldPanic := f.block, f.reply, f.err, f.panic
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if shouldPanic {
		panic("boom")
	}
	return reply, err
}

func (f *fakeSender) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newController(sender *fakeSender, opts ...Option) (*Controller, *conversation.Store) {
	store := conversation.New(greeting)
	return New(store, sender, opts...), store
}

// =============================================================================
// GUARD
// =============================================================================

func TestSeedInvariant(t *testing.T) {
	ctrl, store := newController(&fakeSender{})

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsBot())
	assert.Equal(t, StateIdle, ctrl.State())
	assert.False(t, ctrl.CanSend(), "empty draft cannot be sent")
}

func TestGuard_WhitespaceDraftRejected(t *testing.T) {
	for _, draft := range []string{"", " ", "\t\n  "} {
		sender := &fakeSender{reply: "x"}
		ctrl, store := newController(sender)
		ctrl.SetDraft(draft)

		assert.False(t, ctrl.CanSend())
		_, err := ctrl.Send(context.Background())
		assert.ErrorIs(t, err, ErrEmptyDraft)

		assert.Equal(t, 1, store.Len(), "no message appended")
		assert.Equal(t, draft, store.Draft(), "draft untouched")
		assert.False(t, store.AwaitingReply())
		assert.Empty(t, sender.calls(), "no request issued")
	}
}

func TestGuard_AttachmentAloneIsEnough(t *testing.T) {
	ctrl, _ := newController(&fakeSender{})
	ctrl.SetDraft("   ")
	ctrl.SetAttachment(&model.AttachmentRef{Name: "x.png"})

	assert.True(t, ctrl.CanSend())
}

// =============================================================================
// SINGLE FLIGHT
// =============================================================================

func TestSingleFlight_SecondSendRejected(t *testing.T) {
	sender := &fakeSender{reply: "hello"}
	ctrl, store := newController(sender)

	ctrl.SetDraft("first")
	turn, err := ctrl.Begin()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingReply, ctrl.State())

	ctrl.SetDraft("second")
	assert.False(t, ctrl.CanSend())
	_, err = ctrl.Begin()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = ctrl.Send(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	assert.Equal(t, 2, store.Len(), "only the first user message")
	assert.Equal(t, "second", store.Draft(), "typing continues while awaiting")

	require.True(t, ctrl.Complete(turn.Run(context.Background())))
	assert.Equal(t, []string{"first"}, sender.calls(), "exactly one request")
	assert.True(t, ctrl.CanSend())
}

func TestBegin_SendsTheDraftTheGuardAccepted(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	ctrl, store := newController(sender)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				ctrl.SetDraft("ready")
			} else {
				ctrl.SetDraft("   ")
			}
		}
	}()

	started := 0
	for i := 0; i < 500; i++ {
		turn, err := ctrl.Begin()
		if err != nil {
			assert.ErrorIs(t, err, ErrEmptyDraft)
			continue
		}
		started++
		assert.Equal(t, "ready", turn.Text, "a whitespace draft slipped past the guard")
		assert.Equal(t, "ready", turn.UserMessage.Text)
		require.True(t, ctrl.Complete(turn.Run(context.Background())))
	}
	close(stop)
	wg.Wait()

	for _, msg := range store.Messages() {
		if msg.IsUser() {
			assert.Equal(t, "ready", msg.Text)
		}
	}
	assert.Len(t, sender.calls(), started)
}

// =============================================================================
// ORDERING & COMPLETION
// =============================================================================

func TestOrdering_AppendOnly(t *testing.T) {
	sender := &fakeSender{reply: "a"}
	ctrl, store := newController(sender)

	const n = 4
	for i := 0; i < n; i++ {
		ctrl.SetDraft("q")
		res, err := ctrl.Send(context.Background())
		require.NoError(t, err)
		require.False(t, res.Failed())
	}

	msgs := store.Messages()
	require.Len(t, msgs, 1+2*n)
	for i := 0; i < n; i++ {
		assert.True(t, msgs[2*i+1].IsUser())
		assert.True(t, msgs[2*i+2].IsBot())
	}
}

func TestComplete_ExactlyOnce(t *testing.T) {
	sender := &fakeSender{reply: "hello"}
	ctrl, store := newController(sender)

	ctrl.SetDraft("hi")
	turn, err := ctrl.Begin()
	require.NoError(t, err)

	res := turn.Run(context.Background())
	assert.True(t, ctrl.Complete(res))
	assert.False(t, ctrl.Complete(res), "duplicate completion ignored")
	assert.False(t, ctrl.Complete(Result{TurnID: 999, Reply: "stale"}))

	assert.False(t, store.AwaitingReply())
	assert.Equal(t, 3, store.Len(), "exactly one bot message")
}

func TestComplete_OffGoroutine(t *testing.T) {
	block := make(chan struct{})
	sender := &fakeSender{reply: "hello", block: block}
	ctrl, store := newController(sender)

	ctrl.SetDraft("hi")
	turn, err := ctrl.Begin()
	require.NoError(t, err)

	results := make(chan Result, 1)
	go func() { results <- turn.Run(context.Background()) }()

	// state is settled before the reply arrives
	assert.True(t, store.AwaitingReply())
	assert.Equal(t, "", store.Draft())
	close(block)

	require.True(t, ctrl.Complete(<-results))
	assert.False(t, store.AwaitingReply())
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenario_Success(t *testing.T) {
	sender := &fakeSender{reply: "hello"}
	ctrl, store := newController(sender)

	ctrl.SetDraft("hi")
	res, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Failed())

	msgs := store.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, greeting, msgs[0].Text)
	assert.Equal(t, model.SenderUser, msgs[1].Sender)
	assert.Equal(t, "hi", msgs[1].Text)
	assert.Equal(t, model.SenderBot, msgs[2].Sender)
	assert.Equal(t, "hello", msgs[2].Text)
	assert.False(t, store.AwaitingReply())
	assert.Equal(t, []string{"hi"}, sender.calls())
}

func TestScenario_Failure(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	ctrl, store := newController(sender)

	ctrl.SetDraft("hi")
	res, err := ctrl.Send(context.Background())
	require.NoError(t, err, "a failed request is still an accepted send")
	assert.True(t, res.Failed())

	msgs := store.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi", msgs[1].Text)
	assert.Equal(t, DefaultFallbackText, msgs[2].Text)
	assert.True(t, msgs[2].IsBot())
	assert.False(t, store.AwaitingReply())
}

func TestScenario_CustomFallback(t *testing.T) {
	sender := &fakeSender{err: errors.New("down")}
	ctrl, store := newController(sender, WithFallbackText("Sorry, try again."))

	ctrl.SetDraft("hi")
	_, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sorry, try again.", store.Messages()[2].Text)
}

func TestScenario_AttachmentOnly(t *testing.T) {
	sender := &fakeSender{reply: "got it"}
	ctrl, store := newController(sender)

	ctrl.SetAttachment(&model.AttachmentRef{Name: "x.png"})
	res, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Failed())

	msgs := store.Messages()
	assert.Equal(t, " (Attached: x.png)", msgs[1].Text)
	assert.Equal(t, []string{""}, sender.calls(), "empty msg is sent; the file never is")
	assert.Nil(t, store.PendingAttachment())
}

func TestScenario_AttachmentDecoration(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	ctrl, store := newController(sender)

	ctrl.SetDraft("check this")
	ctrl.SetAttachment(&model.AttachmentRef{Name: "report.pdf"})
	turn, err := ctrl.Begin()
	require.NoError(t, err)

	assert.Equal(t, "check this", turn.Text)
	assert.Equal(t, "check this (Attached: report.pdf)", store.Messages()[1].Text)
	assert.Nil(t, store.PendingAttachment())
	assert.Empty(t, store.Draft())
}

func TestRun_RecoversPanic(t *testing.T) {
	sender := &fakeSender{panic: true}
	ctrl, store := newController(sender)

	ctrl.SetDraft("hi")
	res, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.False(t, store.AwaitingReply())
	assert.Equal(t, DefaultFallbackText, store.Messages()[2].Text)
}

// =============================================================================
// ATTACH & STATS
// =============================================================================

func TestAttach(t *testing.T) {
	ctrl, store := newController(&fakeSender{})
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0600))

	ref, err := ctrl.Attach(path)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", ref.Name)
	assert.Equal(t, "report.pdf", store.PendingAttachment().Name)

	_, err = ctrl.Attach(dir)
	assert.Error(t, err, "directories cannot be attached")

	_, err = ctrl.Attach(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ctrl.Attach("  ")
	assert.Error(t, err)

	assert.Equal(t, "report.pdf", store.PendingAttachment().Name, "failed attaches keep the previous file")

	ctrl.ClearAttachment()
	assert.Nil(t, store.PendingAttachment())
}

func TestStats(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	ctrl, _ := newController(sender)

	ctrl.SetDraft("one")
	_, _ = ctrl.Send(context.Background())

	sender.mu.Lock()
	sender.err = errors.New("down")
	sender.mu.Unlock()
	ctrl.SetDraft("two")
	_, _ = ctrl.Send(context.Background())

	stats := ctrl.Stats()
	assert.Equal(t, 2, stats.Turns)
	assert.Equal(t, 1, stats.Failures)
}

func TestObserver_MayQueryController(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	ctrl, store := newController(sender)

	var seen []State
	store.Subscribe(func(ev conversation.Event) {
		if ev.Kind == conversation.EventAwaitingChanged {
			_ = ctrl.Stats()
			seen = append(seen, ctrl.State())
		}
	})

	ctrl.SetDraft("hi")
	_, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []State{StateAwaitingReply, StateIdle}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting_reply", StateAwaitingReply.String())
}

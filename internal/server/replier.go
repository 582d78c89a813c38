// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/davut-tui/internal/config"
)

// Replier produces the bot reply for one message.
type Replier interface {
	Reply(ctx context.Context, msg string) (string, error)
	// Mode names the replier in logs and metrics.
	Mode() string
}

// NewReplier builds the replier selected by cfg.ReplyMode.
func NewReplier(cfg config.ServerConfig) (Replier, error) {
	switch cfg.ReplyMode {
	case "", config.ReplyModeEcho:
		return EchoReplier{}, nil
	case config.ReplyModeOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.New("reply_mode openai requires openai_key (or DAVUT_OPENAI_KEY)")
		}
		return NewOpenAIReplier(openai.DefaultConfig(cfg.OpenAIKey), cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown reply_mode %q", cfg.ReplyMode)
	}
}

// =============================================================================
// ECHO
// =============================================================================

// EchoReplier answers with the message it was given.
type EchoReplier struct{}

// Reply returns msg prefixed with "You said: ".
func (EchoReplier) Reply(_ context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "I received an empty message.", nil
	}
	return "You said: " + msg, nil
}

// Mode implements Replier.
func (EchoReplier) Mode() string { return config.ReplyModeEcho }

// =============================================================================
// OPENAI
// =============================================================================

// DefaultSystemPrompt frames single-turn completions.
const DefaultSystemPrompt = "You are Davut GPT, a concise and helpful assistant."

// OpenAIReplier sends each message as a single-turn chat completion.
type OpenAIReplier struct {
	api    *openai.Client
	model  string
	system string
}

// NewOpenAIReplier creates a replier from a go-openai client config. An
// empty model selects gpt-4o-mini.
func NewOpenAIReplier(cfg openai.ClientConfig, model string) *OpenAIReplier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIReplier{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		system: DefaultSystemPrompt,
	}
}

// Reply asks the model for a completion of msg.
func (r *OpenAIReplier) Reply(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		msg = "(the user sent an attachment without text)"
	}
	req := openai.ChatCompletionRequest{
		Model:  r.model,
		Stream: false,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.system},
			{Role: openai.ChatMessageRoleUser, Content: msg},
		},
	}

	resp, err := r.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Mode implements Replier.
func (r *OpenAIReplier) Mode() string { return config.ReplyModeOpenAI }

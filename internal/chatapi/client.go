// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/logging"
	"github.com/rs/zerolog"
)

// MaxResponseBytes caps how much of a reply body is read.
const MaxResponseBytes = 1 << 20

// errorSnippetBytes is how much of a non-2xx body goes into the error message.
const errorSnippetBytes = 256

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the chat client.
type ClientConfig struct {
	// BaseURL is scheme://host[:port] (default: http://localhost:8000)
	BaseURL string

	// Path is the chat route (default: /chat)
	Path string

	// Param is the query parameter carrying the text (default: msg)
	Param string

	// Timeout bounds one round trip. 0 means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return FromEndpoint(config.Default().Endpoint)
}

// FromEndpoint builds a client configuration from the [endpoint] config section.
func FromEndpoint(e config.EndpointConfig) *ClientConfig {
	return &ClientConfig{
		BaseURL: e.BaseURL,
		Path:    e.Path,
		Param:   e.Param,
		Timeout: e.Timeout(),
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts utterances to the chat endpoint.
//
// The Client is safe for concurrent use, though the controller never has
// more than one request in flight.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client. Empty fields fall back to the defaults.
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	defaults := config.Default().Endpoint
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.Param == "" {
		cfg.Param = defaults.Param
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		log:        logging.Component("chatapi"),
	}
}

// Endpoint returns the URL messages are posted to, without the query.
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.config.BaseURL, "/") + c.config.Path
}

// RequestURL returns the full request URL for text.
func (c *Client) RequestURL(text string) (string, error) {
	u, err := url.Parse(c.Endpoint())
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Del(c.config.Param)
	pair := encodeComponent(c.config.Param) + "=" + encodeComponent(text)
	if rest := q.Encode(); rest != "" {
		pair = rest + "&" + pair
	}
	u.RawQuery = pair
	return u.String(), nil
}

// encodeComponent escapes s for a query string with spaces as %20 rather
// than '+'. QueryEscape turns a literal '+' into %2B, so every '+' left in
// its output stands for a space.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// =============================================================================
// SEND
// =============================================================================

// chatReply is the only shape of success body we accept.
type chatReply struct {
	Response *json.RawMessage `json:"response"`
}

// Send posts text and returns the reply verbatim. Every failure is a
// *TransportError; Send never retries.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	start := time.Now()

	reqURL, err := c.RequestURL(text)
	if err != nil {
		return "", &TransportError{Kind: KindConnection, Message: "invalid endpoint URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, http.NoBody)
	if err != nil {
		return "", &TransportError{Kind: KindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := classifyDoError(err)
		c.logFailure(terr, start)
		return "", terr
	}
	defer resp.Body.Close()

	reply, terr := decodeReply(resp)
	if terr != nil {
		c.logFailure(terr, start)
		return "", terr
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("text_len", len(text)).
		Int("reply_len", len(reply)).
		Msg("chat round trip")
	return reply, nil
}

func (c *Client) logFailure(err *TransportError, start time.Time) {
	c.log.Warn().
		Err(err).
		Str("kind", err.Kind.String()).
		Int("status", err.Status).
		Dur("duration", time.Since(start)).
		Msg("chat request failed")
}

// classifyDoError maps an http.Client.Do error onto a TransportError.
func classifyDoError(err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &TransportError{Kind: KindConnection, Message: "request cancelled", Cause: err}
	}
	return &TransportError{Kind: KindConnection, Message: "endpoint unreachable", Cause: err}
}

// decodeReply reads a response body and extracts the reply string.
func decodeReply(resp *http.Response) (string, *TransportError) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return "", classifyReadError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{
			Kind:    KindStatus,
			Status:  resp.StatusCode,
			Message: "unexpected status: " + snippet(body),
		}
	}

	if len(body) > MaxResponseBytes {
		return "", &TransportError{Kind: KindMalformed, Message: "response body exceeds 1 MiB"}
	}

	var parsed chatReply
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &TransportError{Kind: KindMalformed, Message: "response is not a JSON object", Cause: err}
	}
	if parsed.Response == nil {
		return "", &TransportError{Kind: KindMalformed, Message: "response field missing"}
	}

	var reply string
	if err := json.Unmarshal(*parsed.Response, &reply); err != nil {
		return "", &TransportError{Kind: KindMalformed, Message: "response field is not a string", Cause: err}
	}
	return reply, nil
}

func classifyReadError(err error) *TransportError {
	terr := classifyDoError(err)
	if terr.Kind == KindConnection {
		terr.Message = "failed to read response"
	}
	return terr
}

func snippet(body []byte) string {
	s := string(bytes.TrimSpace(body))
	if s == "" {
		return "empty body"
	}
	if len(s) > errorSnippetBytes {
		s = s[:errorSnippetBytes] + "..."
	}
	return s
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health probes GET {base}/health. A 2xx answer means reachable.
// It is informational only and never gates Send.
func (c *Client) Health(ctx context.Context) error {
	healthURL := strings.TrimRight(c.config.BaseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return &TransportError{Kind: KindConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyDoError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorSnippetBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Kind: KindStatus, Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jeranaias/davut-tui/internal/config"
	"github.com/jeranaias/davut-tui/internal/logging"
)

const (
	replyTimeout    = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// chatResponse is the success body of the chat route.
type chatResponse struct {
	Response string `json:"response"`
}

// Server is the local chat endpoint.
type Server struct {
	cfg      config.ServerConfig
	route    config.EndpointConfig
	replier  Replier
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *Metrics
	limiters *clientLimiters
	log      zerolog.Logger
	started  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithEndpoint serves the chat route at ep.Path and reads the message from
// the ep.Param query parameter, so a client built from the same endpoint
// config reaches it. Empty fields keep the defaults.
func WithEndpoint(ep config.EndpointConfig) Option {
	return func(s *Server) {
		if ep.Path != "" {
			s.route.Path = ep.Path
		}
		if ep.Param != "" {
			s.route.Param = ep.Param
		}
	}
}

// New builds the server and its routes. It does not listen. The chat route
// defaults to the default endpoint config, POST /chat?msg=.
func New(cfg config.ServerConfig, replier Replier, opts ...Option) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		cfg:      cfg,
		route:    config.Default().Endpoint,
		replier:  replier,
		engine:   gin.New(),
		registry: reg,
		metrics:  NewMetrics(reg),
		limiters: newClientLimiters(cfg.RateLimit, cfg.RateBurst),
		log:      logging.Component("server"),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Registry exposes the Prometheus registry the server reports to.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) routes() {
	s.engine.Use(recovery(s.log), requestLogger(s.log), instrument(s.metrics))

	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	limited := s.engine.Group("/", rateLimit(s.limiters, s.metrics))
	limited.POST(s.route.Path, s.chat)
}

// Route returns the chat path and its message parameter.
func (s *Server) Route() (path, param string) {
	return s.route.Path, s.route.Param
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) chat(c *gin.Context) {
	msg, ok := c.GetQuery(s.route.Param)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter " + s.route.Param})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), replyTimeout)
	defer cancel()

	reply, err := s.replier.Reply(ctx, msg)
	s.metrics.RecordReply(s.replier.Mode(), err)
	if err != nil {
		s.log.Error().Err(err).Str("mode", s.replier.Mode()).Msg("reply failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "reply failed"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   s.replier.Mode(),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Run listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	if s.limiters.Enabled() {
		go s.limiters.runCleanup(done)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("addr", s.cfg.Addr).
			Str("mode", s.replier.Mode()).
			Msg("chat endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("shutting down chat endpoint")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

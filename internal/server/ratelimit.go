// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 30 * time.Minute
	limiterCleanupEvery = 5 * time.Minute
)

// clientLimiters hands out one token bucket per client key.
type clientLimiters struct {
	limit rate.Limit
	burst int

	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time
}

// newClientLimiters creates a limiter set. A limit of 0 disables limiting.
func newClientLimiters(perSecond float64, burst int) *clientLimiters {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiters{
		limit:      rate.Limit(perSecond),
		burst:      burst,
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
	}
}

// Enabled reports whether requests are limited at all.
func (l *clientLimiters) Enabled() bool {
	return l != nil && l.limit > 0
}

// Allow takes a token from key's bucket.
func (l *clientLimiters) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	return l.get(key).Allow()
}

func (l *clientLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[key] = time.Now()
	if limiter, ok := l.limiters[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[key] = limiter
	return limiter
}

// Len returns the number of tracked clients.
func (l *clientLimiters) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// cleanup drops limiters idle since before cutoff.
func (l *clientLimiters) cleanup(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, seen := range l.lastAccess {
		if seen.Before(cutoff) {
			delete(l.lastAccess, key)
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// runCleanup removes idle limiters until done is closed.
func (l *clientLimiters) runCleanup(done <-chan struct{}) {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.cleanup(time.Now().Add(-limiterIdleTTL))
		}
	}
}

// Package ratelimit provides per-key token bucket rate limiting for MCP tools.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter implements a per-key token bucket. Each key gets its own
// bucket with the configured rate and burst. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // max burst size, also the initial token count
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec)
// and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether a request for the given key should proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:    float64(l.burst),
			lastCheck: now,
		}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	if elapsed > 0 {
		b.tokens += l.rate * elapsed
		if b.tokens > float64(l.burst) {
			b.tokens = float64(l.burst)
		}
		b.lastCheck = now
	}

	if b.tokens < 1.0 {
		return false
	}

	b.tokens--
	return true
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default per-tool limiters. Write-heavy
// tools get tight limits; read tools are effectively free.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"mnemo_learn":    NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
		"mnemo_add":      NewLimiter(30.0/60.0, 5),
		"mnemo_connect":  NewLimiter(30.0/60.0, 5),
		"mnemo_save":     NewLimiter(30.0/60.0, 5),
		"mnemo_remove":   NewLimiter(10.0/60.0, 3),
		"mnemo_prune":    NewLimiter(5.0/60.0, 2),
		"mnemo_backup":   NewLimiter(5.0/60.0, 2),
		"mnemo_restore":  NewLimiter(5.0/60.0, 2),
		"mnemo_recall":   NewLimiter(2.0, 20), // 120/minute, burst 20
		"mnemo_crossref": NewLimiter(1.0, 10),
		"mnemo_context":  NewLimiter(2.0, 20),
		"mnemo_related":  NewLimiter(2.0, 20),
		"mnemo_query":    NewLimiter(2.0, 20),
		"mnemo_search":   NewLimiter(2.0, 20),
		"mnemo_status":   NewLimiter(1.0, 10),
	}
}

// CheckLimit checks the rate limit for a tool name. Returns nil if
// allowed. Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}

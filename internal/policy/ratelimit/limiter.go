// Package ratelimit implements per-host token buckets used to pace calls to
// the bookmark store and, optionally, link probes against a single host.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DelayObserver is notified when a Wait call was actually held back.
type DelayObserver func(host string, waited time.Duration)

// Limiter manages per-host rate limits.
type Limiter struct {
	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
	observe      DelayObserver
}

// Config holds rate limiter configuration.
//   - RPS: sustained requests per second per host; <= 0 disables limiting.
//   - Burst: bucket size (default 1).
//   - Observe: optional hook receiving non-trivial waits.
type Config struct {
	RPS     float64
	Burst   int
	Observe DelayObserver
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
		observe:      cfg.Observe,
	}
}

// Every converts a minimum spacing between calls into a Config, so callers can
// express "one call every three seconds" directly.
func Every(interval time.Duration) Config {
	if interval <= 0 {
		return Config{}
	}
	return Config{RPS: float64(rate.Every(interval)), Burst: 1}
}

// Unlimited reports whether the limiter never delays callers.
func (l *Limiter) Unlimited() bool {
	return l == nil || l.defaultRate == rate.Inf
}

// Wait blocks until a token is available for the host of rawURL, respecting
// the context. A nil Limiter never blocks.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if l.Unlimited() {
		return nil
	}
	host := hostOf(rawURL)
	l.mu.Lock()
	limiter, exists := l.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond && l.observe != nil {
		l.observe(host, waited)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Package ratelimit implements a per-identity sliding window limiter.
package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultLimit  = 10
	defaultWindow = 60 * time.Second
)

// Options configures a Limiter.
type Options struct {
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

// Limiter admits at most Limit requests per identity in any Window.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[int64][]time.Time
}

// New builds a Limiter; zero options mean 10 requests per 60s.
func New(opts Options) *Limiter {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Limiter{
		limit:  opts.Limit,
		window: opts.Window,
		now:    opts.Now,
		hits:   make(map[int64][]time.Time),
	}
}

// Allow prunes entries older than the window, then records the request if
// capacity remains. A rejected request is not recorded.
func (l *Limiter) Allow(id int64) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.hits[id][:0]
	for _, ts := range l.hits[id] {
		if now.Sub(ts) < l.window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.limit {
		l.hits[id] = kept
		return false
	}
	l.hits[id] = append(kept, now)
	return true
}

// Remaining reports how many requests id may still make right now.
func (l *Limiter) Remaining(id int64) int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ts := range l.hits[id] {
		if now.Sub(ts) < l.window {
			n++
		}
	}
	if n >= l.limit {
		return 0
	}
	return l.limit - n
}

// Package cache memoizes read paths for a fixed time window.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/uyizlang/uyizlangbot/core/logger"
)

const defaultTTL = 60 * time.Second

type entry struct {
	value    any
	storedAt time.Time
}

// Options configures a Cache.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

// Cache is a process-local TTL cache safe for concurrent use.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// New builds a Cache; zero options mean a 60s window and the wall clock.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{ttl: opts.TTL, now: opts.Now, entries: make(map[string]entry)}
}

// Key derives a cache key from a function name and its arguments.
func Key(name string, args ...any) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte(':')
		fmt.Fprintf(&b, "%v", a)
	}
	return b.String()
}

// Lookup returns the stored value and "hit", or nil with "miss" or "expired".
func (c *Cache) Lookup(key string) (any, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, "miss"
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		return nil, "expired"
	}
	return e.value, "hit"
}

// Get returns the value for key if it was stored less than TTL ago.
func (c *Cache) Get(key string) (any, bool) {
	v, status := c.Lookup(key)
	return v, status == "hit"
}

// Set stores value under key, overwriting any previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Delete drops the entry stored under key, if any.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	logger.Debug(logger.Background(), "cache", "cache.clear",
		slog.String("cache", "clear"),
		slog.Int("count", n),
	)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Memoize returns the cached result of fn for name and args, calling fn on a
// miss. Errors are returned to the caller and never stored.
func Memoize[T any](ctx context.Context, c *Cache, name string, args []any, fn func(context.Context) (T, error)) (T, error) {
	key := Key(name, args...)
	if v, status := c.Lookup(key); status == "hit" {
		if t, ok := v.(T); ok {
			logger.Debug(ctx, "cache", "cache.lookup",
				slog.String("cache", "hit"),
				slog.String("cache_key", key),
			)
			return t, nil
		}
	} else {
		logger.Debug(ctx, "cache", "cache.lookup",
			slog.String("cache", status),
			slog.String("cache_key", key),
		)
	}

	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	c.Set(key, out)
	return out, nil
}

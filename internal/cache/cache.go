// Package cache is the in-memory query cache shared by the auth queries.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

const defaultCleanupInterval = time.Minute

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache. Expired entries are dropped on read and
// by a background sweep that runs until Close.
type Cache struct {
	store sync.Map
	ttl   time.Duration
	now   func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// New returns a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return NewWithInterval(ttl, defaultCleanupInterval)
}

// NewWithInterval is New with a custom sweep interval.
func NewWithInterval(ttl, cleanup time.Duration) *Cache {
	c := &Cache{
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
	go c.startCleanup(cleanup)
	return c
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if c.now().After(e.expiresAt) {
		c.store.CompareAndDelete(key, val)
		slog.Debug("cache expired", "key", key)
		return nil, false
	}

	slog.Debug("cache hit", "key", key)
	return e.data, true
}

func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.store.Store(key, entry{data: value, expiresAt: c.now().Add(ttl)})
	slog.Debug("cache set", "key", key, "ttl", ttl)
}

// Delete drops a single key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Range(func(key, _ any) bool {
		c.store.Delete(key)
		return true
	})
	slog.Debug("cache cleared")
}

// Len counts live and not-yet-swept entries.
func (c *Cache) Len() int {
	n := 0
	c.store.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Cache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()
	c.store.Range(func(key, val any) bool {
		if now.After(val.(entry).expiresAt) {
			c.store.CompareAndDelete(key, val)
		}
		return true
	})
}

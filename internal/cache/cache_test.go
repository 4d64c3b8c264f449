package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)}
	c := NewWithInterval(ttl, time.Hour)
	c.now = clk.Now
	t.Cleanup(c.Close)
	return c, clk
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	c.Set("auth/user", "emma")

	v, ok := c.Get("auth/user")
	assert.True(t, ok)
	assert.Equal(t, "emma", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, clk := newTestCache(t, 5*time.Minute)
	c.Set("k", 1)

	clk.Advance(4 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should still be fresh")

	clk.Advance(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should have expired")
	assert.Equal(t, 0, c.Len())
}

func TestCache_SetWithTTL(t *testing.T) {
	c, clk := newTestCache(t, time.Hour)
	c.SetWithTTL("short", "x", time.Second)
	clk.Advance(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Sweep(t *testing.T) {
	c, clk := newTestCache(t, time.Second)
	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)
	clk.Advance(time.Minute)

	c.sweep()
	assert.Equal(t, 1, c.Len())
}

func TestCache_CloseIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Close()
	c.Close()
}

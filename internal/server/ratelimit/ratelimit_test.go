package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := bucket.take(start)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, reset := bucket.take(start)
	assert.False(t, allowed)
	assert.Equal(t, start.Add(3*time.Second), reset)
	assert.Equal(t, time.Second, bucket.retryAfter())

	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled after a second")
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/careers", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Equal(t, "default", info.Tier)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/careers", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 20; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/careers", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, _ := limiter.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)

	disabled, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 20; i++ {
		allowed, _ := disabled.Allow("10.0.0.3", "/api/compile", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_TiersShareBuckets(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	// The compile tier has a burst of 5 shared across its routes.
	paths := []string{"/api/compile", "/resume/compile", "/resume/download", "/api/compile", "/resume/compile"}
	for _, p := range paths {
		allowed, info := limiter.Allow("1.1.1.1", p, "POST")
		require.True(t, allowed, p)
		assert.Equal(t, "compile", info.Tier)
	}
	allowed, _ := limiter.Allow("1.1.1.1", "/resume/download", "POST")
	assert.False(t, allowed)

	// Another client is unaffected.
	allowed, _ = limiter.Allow("2.2.2.2", "/api/compile", "POST")
	assert.True(t, allowed)

	// Sync is keyed by tier, not by roadmap id.
	for _, id := range []string{"a", "b"} {
		allowed, info := limiter.Allow("1.1.1.1", "/roadmap/"+id+"/sync", "POST")
		require.True(t, allowed)
		assert.Equal(t, "sync", info.Tier)
	}
	allowed, _ = limiter.Allow("1.1.1.1", "/roadmap/c/sync", "POST")
	assert.False(t, allowed)
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []EndpointConfig{{Tier: "t", Path: "/x", Method: "POST", Limit: 60, Window: time.Minute, Burst: 1}},
	})

	allowed, _ := limiter.Allow("c", "/x", "POST")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/x", "POST")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = limiter.Allow("c", "/x", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var allowedCount atomic.Int32
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/profile", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(100), allowedCount.Load())
}

func TestLimiter_Sweep(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i), "/careers", "GET")
	}

	clock.Advance(30 * time.Minute)
	for i := 0; i < 4; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i), "/careers", "GET")
	}

	clock.Advance(45 * time.Minute)
	assert.Equal(t, 6, limiter.sweep())
	assert.Len(t, limiter.buckets, 4)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: 10 * time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter, _ := newTestLimiter(t, nil)

	allowed, info := limiter.Allow("127.0.0.1", "/careers", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(Settings{
		Enabled:       true,
		DefaultLimit:  50,
		DefaultWindow: time.Minute,
		Whitelist:     []string{"127.0.0.1", ""},
	})
	assert.True(t, cfg.Whitelist["127.0.0.1"])
	assert.Len(t, cfg.Whitelist, 1)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	assert.False(t, NewConfig(Settings{Enabled: false}).Enabled)
}

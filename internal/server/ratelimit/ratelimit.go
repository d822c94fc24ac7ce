// Package ratelimit provides per-client token bucket rate limiting with
// separate tiers for compile, assistant, auth and sync endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// staleAfter is how long an idle bucket is kept before cleanup drops it.
const staleAfter = time.Hour

// tokenBucket allows capacity requests at once, refilling at refillRate per
// second.
type tokenBucket struct {
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

// take refills, then consumes one token if available. It reports the tokens
// left and when the bucket will be full again.
func (tb *tokenBucket) take(now time.Time) (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastRefill); elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	}
	tb.lastRefill = now
	tb.lastAccess = now

	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}

	resetTime = now
	if tb.tokens < tb.capacity && tb.refillRate > 0 {
		secs := (tb.capacity - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secs * float64(time.Second)))
	}
	return allowed, int(tb.tokens), resetTime
}

// retryAfter is how long until one token is available.
func (tb *tokenBucket) retryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens >= 1 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1 - tb.tokens) / tb.refillRate * float64(time.Second))
}

func (tb *tokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastAccess
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter tracks one bucket per client and tier.
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.RWMutex
	buckets map[string]*tokenBucket

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLimiter creates a rate limiter. When enabled with a cleanup interval it
// starts a goroutine that must be released with Stop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	} else {
		close(l.done)
	}
	return l
}

// Allow checks whether clientID may call method path now, consuming a token
// when it may.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ep := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if ep == nil {
		ep = &EndpointConfig{
			Tier:   "default",
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if ep.Limit <= 0 {
		return true, Info{Allowed: true, Tier: ep.Tier}
	}

	bucket := l.bucket(clientID+":"+ep.key(), ep)
	allowed, remaining, resetTime := bucket.take(l.now())

	info := Info{
		Allowed:   allowed,
		Tier:      ep.Tier,
		Limit:     ep.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		info.RetryAfter = bucket.retryAfter()
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ep *EndpointConfig) *tokenBucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	b = newTokenBucket(capacity, float64(ep.Limit)/ep.Window.Seconds(), l.now())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than staleAfter and returns how many.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine and waits for it. It is safe to call more
// than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

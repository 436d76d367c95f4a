package auth

import (
	"sync"
	"time"
)

// RateLimitConfig tunes the login rate limiter. Zero values fall back to
// the defaults noted per field.
type RateLimitConfig struct {
	MaxAttempts     int           // failed attempts before lockout (5)
	WindowDuration  time.Duration // sliding window for counting attempts (15m)
	LockoutDuration time.Duration // lockout length once the limit is hit (30m)
	CleanupInterval time.Duration // sweep cadence for stale records (5m)
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = 15 * time.Minute
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

// loginAttempts is the failure history for one IP+username pair.
type loginAttempts struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// RateLimiter throttles login attempts per IP+username pair. Keying on the
// pair means an attacker spraying one username from one address gets locked
// out without blocking the legitimate user on their own address.
type RateLimiter struct {
	cfg RateLimitConfig

	mu      sync.RWMutex
	pairs   map[string]*loginAttempts
	stopped chan struct{}
}

// NewRateLimiter creates a rate limiter and starts its cleanup sweep.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		pairs:   make(map[string]*loginAttempts),
		stopped: make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopped)
}

func pairKey(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter says how long until the lockout expires.
func (rl *RateLimiter) Allow(ip, username string) (allowed bool, retryAfter time.Duration) {
	now := time.Now()

	rl.mu.RLock()
	record, exists := rl.pairs[pairKey(ip, username)]
	rl.mu.RUnlock()

	switch {
	case !exists:
		return true, 0
	case !record.lockedUntil.IsZero() && now.Before(record.lockedUntil):
		return false, record.lockedUntil.Sub(now)
	case now.Sub(record.windowStart) > rl.cfg.WindowDuration:
		return true, 0
	case record.count < rl.cfg.MaxAttempts:
		return true, 0
	default:
		return false, rl.cfg.LockoutDuration
	}
}

// RecordFailure counts a failed login and reports whether the pair just
// crossed into lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) (locked bool, retryAfter time.Duration) {
	key := pairKey(ip, username)
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.pairs[key]
	if !exists {
		record = &loginAttempts{windowStart: now}
		rl.pairs[key] = record
	} else if now.Sub(record.windowStart) > rl.cfg.WindowDuration {
		// Window expired, start counting fresh
		*record = loginAttempts{windowStart: now}
	}

	record.count++
	if record.count >= rl.cfg.MaxAttempts {
		record.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true, rl.cfg.LockoutDuration
	}
	return false, 0
}

// RecordSuccess clears the failure history after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.pairs, pairKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.stopped:
			return
		}
	}
}

// dropStale removes pairs whose window and lockout have both lapsed.
func (rl *RateLimiter) dropStale() {
	now := time.Now()
	horizon := rl.cfg.WindowDuration + rl.cfg.LockoutDuration

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, record := range rl.pairs {
		if now.Sub(record.windowStart) > horizon &&
			(record.lockedUntil.IsZero() || now.After(record.lockedUntil)) {
			delete(rl.pairs, key)
		}
	}
}

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits failed sign-in attempts per client IP and login name.
// Every failure spends a token from a bucket that refills MaxAttempts tokens
// per Window. Once the bucket is empty the key is locked out for Lockout.
type LoginThrottle struct {
	mu        sync.Mutex
	entries   map[string]*throttleEntry
	limit     rate.Limit
	burst     int
	lockout   time.Duration
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type throttleEntry struct {
	failures    *rate.Limiter
	lockedUntil time.Time
	lastSeen    time.Time
}

// LoginThrottleConfig configures a LoginThrottle. Zero values fall back to
// 5 attempts per 15 minutes and a 30 minute lockout.
type LoginThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// NewLoginThrottle creates a throttle with the given configuration.
func NewLoginThrottle(cfg LoginThrottleConfig) *LoginThrottle {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 30 * time.Minute
	}

	return &LoginThrottle{
		entries: make(map[string]*throttleEntry),
		limit:   rate.Limit(float64(cfg.MaxAttempts) / cfg.Window.Seconds()),
		burst:   cfg.MaxAttempts,
		lockout: cfg.Lockout,
		idleTTL: cfg.Window + cfg.Lockout,
		now:     time.Now,
	}
}

func throttleKey(ip, login string) string {
	return ip + "|" + login
}

// Allow reports whether a sign-in attempt may proceed. When it may not, the
// returned duration is the remaining lockout.
func (t *LoginThrottle) Allow(ip, login string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweepLocked(now)

	e, ok := t.entries[throttleKey(ip, login)]
	if !ok || !now.Before(e.lockedUntil) {
		return true, 0
	}
	return false, e.lockedUntil.Sub(now)
}

// RecordFailure spends one attempt and reports whether the key is now
// locked out, and for how long.
func (t *LoginThrottle) RecordFailure(ip, login string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := throttleKey(ip, login)
	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{failures: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}
	e.lastSeen = now

	if e.failures.AllowN(now, 1) && e.failures.TokensAt(now) >= 1 {
		return false, 0
	}
	e.lockedUntil = now.Add(t.lockout)
	return true, t.lockout
}

// RecordSuccess forgets the failures of a key after a successful sign-in.
func (t *LoginThrottle) RecordSuccess(ip, login string) {
	t.mu.Lock()
	delete(t.entries, throttleKey(ip, login))
	t.mu.Unlock()
}

// Len returns the number of tracked keys.
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *LoginThrottle) sweepLocked(now time.Time) {
	if now.Sub(t.lastSweep) < t.idleTTL/2 {
		return
	}
	t.lastSweep = now
	for key, e := range t.entries {
		if now.Sub(e.lastSeen) > t.idleTTL && !now.Before(e.lockedUntil) {
			delete(t.entries, key)
		}
	}
}

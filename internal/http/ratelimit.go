package http

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per key with a token bucket. Keys are
// device ids or client addresses depending on the middleware used.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*keyLimiter
	lastGC   time.Time
}

// NewRateLimiter allows perSecond sustained requests per key with bursts up
// to burst. perSecond <= 0 disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*keyLimiter),
	}
}

// Allow reports whether key may make another request now, and if not, how
// long until it may.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l.limit == rate.Inf {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > limiterIdleTTL {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// DeviceMiddleware rejects requests over the device's budget with 429. It
// must run after the device middleware.
func (l *RateLimiter) DeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		device := GetDevice(c)
		if device == nil {
			c.Next()
			return
		}
		l.check(c, device.ID)
	}
}

// ClientMiddleware rejects requests over the client address's budget with
// 429. It runs before device registration so rotating device ids cannot
// create server-side state faster than the budget allows.
func (l *RateLimiter) ClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.check(c, c.ClientIP())
	}
}

func (l *RateLimiter) check(c *gin.Context, key string) {
	if ok, retryAfter := l.Allow(key); !ok {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "too many requests",
			Code:  CodeRateLimited,
		})
		return
	}
	c.Next()
}

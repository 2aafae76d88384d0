package middleware

import (
	"sync"
	"time"

	"filevault/config"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type tokenBucket struct {
	tokens     int
	capacity   int
	refillRate time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
}

func newTokenBucket(capacity int, refillRate time.Duration) *tokenBucket {
	return &tokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillRate {
		tokensToAdd := int(elapsed / tb.refillRate)
		if tb.tokens+tokensToAdd > tb.capacity {
			tb.tokens = tb.capacity
		} else {
			tb.tokens += tokensToAdd
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

type rateLimiter struct {
	visitors map[string]*visitor
	mutex    sync.Mutex
	window   time.Duration
	requests int
}

type visitor struct {
	bucket   *tokenBucket
	lastSeen time.Time
}

func newRateLimiter(window time.Duration, requests int) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		window:   window,
		requests: requests,
	}
	go rl.cleanupVisitors()
	return rl
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mutex.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{bucket: newTokenBucket(rl.requests, rl.window / time.Duration(rl.requests))}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	rl.mutex.Unlock()

	return v.bucket.allow()
}

func (rl *rateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > 30*time.Minute {
				delete(rl.visitors, key)
			}
		}
		rl.mutex.Unlock()
	}
}

// RateLimitMiddleware limits requests per client IP
func RateLimitMiddleware() gin.HandlerFunc {
	cfg := config.AppConfig
	// A non-positive budget would leave the refill interval undefined, so it
	// disables limiting the same way the feature flag does.
	if cfg == nil || !cfg.RateLimitEnabled || cfg.RateLimitRequests < 1 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg.RateLimitWindow, cfg.RateLimitRequests)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			utils.TooManyRequestsResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

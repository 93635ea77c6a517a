package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per client IP inside a fixed window.
// The whole counter map is dropped when the window rolls over, so a
// client's budget resets at once rather than sliding.
type RateLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time
	limit       int
	window      time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:      make(map[string]int),
		windowStart: time.Now(),
		limit:       limit,
		window:      window,
	}
}

// allow records one request for the client and reports whether it is
// still within budget.
func (l *RateLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.windowStart) > l.window {
		l.counts = make(map[string]int)
		l.windowStart = time.Now()
	}

	if l.counts[clientIP] >= l.limit {
		return false
	}
	l.counts[clientIP]++
	return true
}

// RateLimit rejects clients that exceed limit requests per window.
// Uploads run a full analysis round-trip each, so the budget guards
// the analysis backend as much as this server.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.allow(clientIP) {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

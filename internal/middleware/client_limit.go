package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/foodgram/backend/internal/i18n"
)

const (
	clientLimiterIdle    = time.Hour
	clientLimiterCleanup = 10 * time.Minute
)

// ClientRateLimiter is an in-process token bucket per client IP with
// periodic cleanup of idle buckets.
type ClientRateLimiter struct {
	limiters  map[string]*clientLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	interval  time.Duration
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
}

type clientLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewClientRateLimiter allows reqsPerWindow requests per window per IP and
// starts the cleanup goroutine. Call Stop to release it.
func NewClientRateLimiter(reqsPerWindow int, window time.Duration) *ClientRateLimiter {
	interval := window / time.Duration(reqsPerWindow)
	rl := &ClientRateLimiter{
		limiters:  make(map[string]*clientLimiterEntry),
		rate:      rate.Every(interval),
		interval:  interval,
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
	go rl.startCleanup(clientLimiterCleanup)
	return rl
}

// Allow checks if a request from the given IP is allowed
func (rl *ClientRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &clientLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects clients over their budget with 429.
func (rl *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			RateLimitedTotal.WithLabelValues("client").Inc()
			c.Header("Retry-After", strconv.Itoa(int(rl.interval.Seconds())+1))
			Abort(c, http.StatusTooManyRequests, i18n.M(i18n.RateLimited))
			return
		}
		c.Next()
	}
}

func (rl *ClientRateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-clientLimiterIdle))
		case <-rl.stopClean:
			return
		}
	}
}

func (rl *ClientRateLimiter) cleanup(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Size returns the number of tracked clients.
func (rl *ClientRateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop stops the cleanup goroutine
func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}

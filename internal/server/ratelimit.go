package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiterConfig holds configuration for per-IP rate limiting.
type RateLimiterConfig struct {
	// RequestsPerMin is the per-IP request budget.
	RequestsPerMin int
	// CleanupInterval is how often stale buckets are purged.
	CleanupInterval time.Duration
}

// tokenBucket implements a simple token bucket rate limiter.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newTokenBucket(maxTokens float64, refillRate float64) *tokenBucket {
	return &tokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) stale(ttl time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Since(b.lastRefill) > ttl
}

// RateLimiter provides per-IP rate limiting with background cleanup of
// stale buckets. Call Stop() to release resources.
type RateLimiter struct {
	config  RateLimiterConfig
	buckets sync.Map // map[string]*tokenBucket keyed by IP
	stopCh  chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup goroutine.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config: config,
		stopCh: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow reports whether the given IP has request budget remaining.
func (rl *RateLimiter) Allow(ip string) bool {
	v, _ := rl.buckets.LoadOrStore(ip, newTokenBucket(
		float64(rl.config.RequestsPerMin),
		float64(rl.config.RequestsPerMin)/60.0,
	))
	return v.(*tokenBucket).allow()
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			ttl := 10 * time.Minute
			rl.buckets.Range(func(key, value any) bool {
				if b, ok := value.(*tokenBucket); ok && b.stale(ttl) {
					rl.buckets.Delete(key)
				}
				return true
			})
		}
	}
}

// IPRateLimitMiddleware rejects requests from IPs that exceed their budget.
func IPRateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clientIP(r)) {
				respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the remote IP, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"imgguard/internal/config"
	"imgguard/pkg/utils"
)

const (
	// Fallbacks for zero values in config
	DefaultRequests = 20
	BurstSize       = 50

	// Garbage Collection
	VisitorTTL      = 5 * time.Minute // Time before an inactive IP is removed from memory
	CleanupInterval = 3 * time.Minute // Frequency of the cleanup routine
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a token bucket per client IP.
type RateLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	trusted []*net.IPNet

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter keys buckets on the peer address, or on the forwarded client
// address when the peer is one of trustedProxies.
func NewRateLimiter(conf config.RateLimitConfig, trustedProxies []*net.IPNet) *RateLimiter {
	window := conf.Window
	if window <= 0 {
		window = time.Second
	}

	requests := conf.Requests
	if requests == 0 {
		requests = DefaultRequests
	}

	burst := conf.Burst
	if burst == 0 {
		burst = BurstSize
	}

	return &RateLimiter{
		enabled:  conf.Enabled,
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		trusted:  trustedProxies,
		visitors: make(map[string]*visitor),
	}
}

// Run removes stale visitor entries until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.cleanup(VisitorTTL)
		}
	}
}

func (rl *RateLimiter) cleanup(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware blocks excessive requests with a 429 JSON response.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := utils.GetRealIP(r, rl.trusted)
		if !rl.getVisitor(ip).Allow() {
			utils.WriteError(
				w,
				http.StatusTooManyRequests,
				utils.ErrRequestRateLimitExceeded,
				"Too many requests. Please wait a moment.",
			)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wiredhikari/eix/internal/apierrors"
)

// rateLimiter tracks request rates per IP
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

// clientLimiter tracks requests for a single client
type clientLimiter struct {
	tokens     int
	lastRefill time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// NewRateLimiter creates a rate limiting middleware
// limit: requests per minute, 0 disables limiting
func NewRateLimiter(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newRateLimiter(limit)

	// Cleanup old clients every minute
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()

	return limiter.middleware
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			apierrors.WriteError(w, apierrors.ErrCodeRateLimited, "Too many requests", http.StatusTooManyRequests, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow checks if a request is allowed
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	client, exists := rl.clients[clientIP]
	if !exists {
		client = &clientLimiter{
			tokens:     rl.limit,
			lastRefill: now,
		}
		rl.clients[clientIP] = client
	}

	// Full refill once a minute has passed
	if now.Sub(client.lastRefill) >= time.Minute {
		client.tokens = rl.limit
		client.lastRefill = now
	}

	if client.tokens > 0 {
		client.tokens--
		return true
	}
	return false
}

// cleanup removes old client entries
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, client := range rl.clients {
		if now.Sub(client.lastRefill) > 2*time.Minute {
			delete(rl.clients, ip)
		}
	}
}

// getClientIP extracts client IP from request. Only the first
// X-Forwarded-For hop is used.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

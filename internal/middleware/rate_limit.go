package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-IP token bucket rate limiting
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
}

// NewRateLimiter creates a new rate limiter with the specified rate and burst
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		cleanup: time.NewTicker(time.Minute),
	}

	go rl.cleanupOldLimiters()

	return rl
}

// NewAPIRateLimiter provides general API rate limiting
func NewAPIRateLimiter() *RateLimiter {
	// 10 requests per second per IP with burst of 20
	return NewRateLimiter(10.0, 20)
}

// NewAuthRateLimiter provides stricter rate limiting for authentication endpoints
func NewAuthRateLimiter() *RateLimiter {
	// 5 attempts per minute per IP
	return NewRateLimiter(5.0/60.0, 5)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(key)
	if !exists {
		newLimiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Store(key, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) cleanupOldLimiters() {
	for {
		<-rl.cleanup.C
		rl.limiters.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			// A full bucket means the limiter has been idle; safe to drop
			if limiter.Tokens() == float64(rl.burst) {
				rl.limiters.Delete(key)
			}
			return true
		})
	}
}

// getClientIP extracts the real client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}

// RateLimit returns a middleware that limits requests per IP
func (rl *RateLimiter) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(getClientIP(r))

		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": "Rate limit exceeded. Please try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close stops the cleanup ticker
func (rl *RateLimiter) Close() {
	rl.cleanup.Stop()
}

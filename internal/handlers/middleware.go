package handlers

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(perSecond, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for key, c := range l.limiters {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// RateLimitMiddleware rate-limits requests by client IP with a token bucket
func (h *Handler) RateLimitMiddleware(perSecond, burst int) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perSecond, burst)
	retryAfter := strconv.Itoa(max(1, burst/max(1, perSecond)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil || ip == "" {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				w.Header().Set("Retry-After", retryAfter)
				h.errorResponse(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

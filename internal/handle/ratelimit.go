package handle

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles upstream lookups with one token bucket per host.
// A nil *RateLimiter never throttles.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perSecond requests per host with
// the given burst. A non-positive perSecond disables throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until a request to host may proceed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	if r == nil {
		return nil
	}
	return r.forHost(host).Wait(ctx)
}

// Allow reports whether a request to host may proceed now, consuming a token if so.
func (r *RateLimiter) Allow(host string) bool {
	if r == nil {
		return true
	}
	return r.forHost(host).Allow()
}

// forHost returns the bucket for host, creating it on first use.
func (r *RateLimiter) forHost(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[host]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[host] = l
	}
	return l
}

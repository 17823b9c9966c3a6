// Package globalthrottle guards the whole gateway with a process-local
// token bucket. It sits in front of the per-identity gate as a blunt
// overload valve; per-caller fairness is the request limiter's job.
package globalthrottle

import (
	"math"

	"golang.org/x/time/rate"
)

type Service struct {
	limiter    *rate.Limiter
	retryAfter int
}

// New creates a throttle admitting rps requests per second with the given
// burst headroom.
func New(rps float64, burst int) *Service {
	return &Service{
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		retryAfter: refillSeconds(rps, burst),
	}
}

// Check consumes one token. Purely in-memory, so it cannot fail.
func (s *Service) Check() bool {
	return s.limiter.Allow()
}

// RetryAfter is the backoff hint, in seconds, handed to rejected clients.
func (s *Service) RetryAfter() int {
	return s.retryAfter
}

// refillSeconds estimates how long a fully drained bucket takes to refill,
// clamped to at least one second so the hint stays a valid Retry-After.
func refillSeconds(rps float64, burst int) int {
	if rps <= 0 {
		return 60
	}
	secs := int(math.Ceil(float64(burst) / rps))
	if secs < 1 {
		return 1
	}
	return secs
}

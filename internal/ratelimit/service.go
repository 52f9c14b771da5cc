package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"matchbet-server/internal/clients/redis"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/observability"

	"golang.org/x/time/rate"
)

const (
	window = time.Minute
	// local limiters beyond this many are pruned once idle
	maxLocalKeys = 10000
)

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Service limits requests per key, usually a user ID. With Redis the
// window is shared between instances; otherwise, or when Redis fails,
// each instance keeps its own token buckets.
type Service struct {
	redis  *redis.Client
	rpm    int
	burst  int
	clock  clock.Clock
	logger *observability.Logger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewService creates a new rate limiting service. redis may be nil.
func NewService(redisClient *redis.Client, requestsPerMinute, burst int, clk clock.Clock, logger *observability.Logger) *Service {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &Service{
		redis:  redisClient,
		rpm:    requestsPerMinute,
		burst:  burst,
		clock:  clk,
		logger: logger,
		local:  make(map[string]*rate.Limiter),
	}
}

// Allow records a request for key and reports whether it may proceed
func (s *Service) Allow(ctx context.Context, key string) Result {
	if s.redis.IsEnabled() {
		result, err := s.allowRedis(ctx, key)
		if err == nil {
			return result
		}
		s.logger.Warn(ctx, fmt.Sprintf("redis rate limit check failed, using local limiter: %v", err))
	}
	return s.allowLocal(key)
}

// allowRedis uses a one minute sliding window. The window holds RPM plus
// burst hits so short spikes behave like the local token bucket.
func (s *Service) allowRedis(ctx context.Context, key string) (Result, error) {
	limit := s.rpm + s.burst
	count, err := s.redis.SlidingWindow(ctx, "rl:"+key, s.clock.Now(), window)
	if err != nil {
		return Result{}, err
	}

	if int(count) > limit {
		return Result{
			Allowed:    false,
			Limit:      s.rpm,
			RetryAfter: window / time.Duration(s.rpm),
		}, nil
	}
	return Result{Allowed: true, Limit: s.rpm, Remaining: limit - int(count)}, nil
}

func (s *Service) allowLocal(key string) Result {
	now := s.clock.Now()
	limiter := s.limiter(key, now)

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, Limit: s.rpm, RetryAfter: delay}
	}

	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: s.rpm, Remaining: remaining}
}

func (s *Service) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.local[key]; ok {
		return l
	}
	if len(s.local) >= maxLocalKeys {
		s.pruneLocked(now)
	}
	l := rate.NewLimiter(rate.Every(window/time.Duration(s.rpm)), s.burst)
	s.local[key] = l
	return l
}

// pruneLocked drops limiters whose bucket has refilled, since a fresh
// limiter would behave identically.
func (s *Service) pruneLocked(now time.Time) {
	for key, l := range s.local {
		if l.TokensAt(now) >= float64(s.burst) {
			delete(s.local, key)
		}
	}
}

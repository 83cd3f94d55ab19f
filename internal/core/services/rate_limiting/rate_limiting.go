package ratelimiting

import (
	"context"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	ratelimiter "medbot/internal/core/domain/rate_limiter"
	"medbot/internal/core/services"
)

type keyed interface {
	GetRateLimitKey() string
}

type limited[T keyed, S any] struct {
	log         logging.Logger
	rateLimiter ratelimiter.RateLimiter
	limit       ratelimiter.Limit
	inner       services.Service[T, S]
}

// WithRateLimiting rejects calls with ErrRateLimitExceeded once the input's key
// has been used more than limit allows, without reaching inner.
func WithRateLimiting[T keyed, S any](
	log logging.Logger,
	rateLimiter ratelimiter.RateLimiter,
	limit ratelimiter.Limit,
	inner services.Service[T, S],
) services.Service[T, S] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if rateLimiter == nil {
		panic(e.NewNilArgumentError("rateLimiter"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &limited[T, S]{
		log:         log,
		rateLimiter: rateLimiter,
		limit:       limit,
		inner:       inner,
	}
}

func (s *limited[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	key := input.GetRateLimitKey()
	if s.rateLimiter.CheckLimit(ctx, key, s.limit).IsAllowed {
		return s.inner.Run(ctx, input)
	}

	s.log.Warning(
		ctx,
		"Rate limit exceeded.",
		logging.Entry("key", key),
		logging.Entry("limit", s.limit.Value),
		logging.Entry("interval", s.limit.Interval.Duration()),
	)
	return result, ratelimiter.ErrRateLimitExceeded
}

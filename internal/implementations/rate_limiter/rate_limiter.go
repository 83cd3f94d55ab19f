package ratelimiter

import (
	"context"
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	ratelimiter "medbot/internal/core/domain/rate_limiter"
	"time"

	"github.com/go-redis/redis/v9"
)

// Redis counts hits per fixed window. Redis failures let requests through.
type Redis struct {
	redisClient *redis.Client
	log         logging.Logger
	now         func() time.Time
}

func NewRedis(redisClient *redis.Client, log logging.Logger, now func() time.Time) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Redis{redisClient: redisClient, log: log, now: now}
}

func (r *Redis) CheckLimit(ctx context.Context, key string, limit ratelimiter.Limit) ratelimiter.Result {
	k := key + "::" + limit.Interval.Window(r.now())

	var incr *redis.IntCmd
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, limit.Interval.Duration())
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return ratelimiter.NotAllowed()
	}
	if err != nil {
		r.log.Error(
			ctx,
			"Could not check rate limit due to Redis client error.",
			logging.Entry("key", k),
			logging.Entry("err", err),
		)
		return ratelimiter.Allowed()
	}
	if incr.Val() > int64(limit.Value) {
		return ratelimiter.NotAllowed()
	}
	return ratelimiter.Allowed()
}

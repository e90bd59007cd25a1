package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trackflow/tracking-service/internal/core/ports"
)

// RateLimiter is a sliding-window limiter. Each key is a sorted set of
// request timestamps in microseconds, trimmed to the window on every call.
// Key format: ratelimit:<key>
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

var _ ports.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (ports.RateLimitResult, error) {
	now := r.now()
	redisKey := "ratelimit:" + key
	windowStart := now.Add(-window)
	member := strconv.FormatInt(now.UnixMicro(), 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart.UnixMicro(), 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		pipe.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return ports.RateLimitResult{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(card.Val())
	reset := now.Add(window)
	if zs := oldest.Val(); len(zs) > 0 {
		reset = time.UnixMicro(int64(zs[0].Score)).Add(window)
	}

	if count > limit {
		// Rejected requests do not consume the window.
		_ = r.client.ZRem(ctx, redisKey, member).Err()
		return ports.RateLimitResult{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return ports.RateLimitResult{Allowed: true, Remaining: limit - count, Reset: reset}, nil
}

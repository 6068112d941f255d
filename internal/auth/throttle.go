package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle limits login attempts per key. Attempt reserves a slot before the
// password is checked, so concurrent attempts cannot overshoot the limit.
type Throttle interface {
	Attempt(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisThrottle keeps attempt counters in Redis with a fixed window that starts
// at the first attempt. A successful login resets the counter.
type RedisThrottle struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewRedisThrottle constructs a RedisThrottle.
func NewRedisThrottle(client redis.Cmdable, maxFailures int, window time.Duration) *RedisThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisThrottle{client: client, maxAttempts: int64(maxFailures), window: window}
}

// Attempt counts an attempt for key and reports whether it is within the limit.
// The window is set by the same MULTI block as the increment.
func (t *RedisThrottle) Attempt(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, throttleKey(key), 0, t.window)
		incr = pipe.Incr(ctx, throttleKey(key))
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= t.maxAttempts, nil
}

// Reset clears the counter for key.
func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, throttleKey(key)).Err()
}

func throttleKey(key string) string {
	return "auth:login_attempts:" + key
}

var _ Throttle = (*RedisThrottle)(nil)

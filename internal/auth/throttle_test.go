package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(t *testing.T, max int, window time.Duration) (*RedisThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisThrottle(client, max, window), mr
}

func TestRedisThrottleBlocksAfterLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := throttle.Attempt(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i)
	}

	allowed, err := throttle.Attempt(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	other, err := throttle.Attempt(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestRedisThrottleConcurrentAttemptsRespectLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := throttle.Attempt(context.Background(), "alice@x.com")
			if err == nil && ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 3, allowed.Load())
}

func TestRedisThrottleWindowSetWithFirstAttempt(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := throttle.Attempt(ctx, "alice@x.com")
	require.NoError(t, err)
	require.True(t, allowed)
	assert.Equal(t, time.Minute, mr.TTL(throttleKey("alice@x.com")))

	mr.FastForward(30 * time.Second)
	allowed, err = throttle.Attempt(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 30*time.Second, mr.TTL(throttleKey("alice@x.com")), "later attempts keep the original window")

	mr.FastForward(31 * time.Second)
	allowed, err = throttle.Attempt(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisThrottleReset(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_, err := throttle.Attempt(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NoError(t, throttle.Reset(ctx, "alice@x.com"))
	assert.False(t, mr.Exists(throttleKey("alice@x.com")))
}

func TestRedisThrottleReportsRedisErrors(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	mr.Close()

	_, err := throttle.Attempt(context.Background(), "alice@x.com")
	assert.Error(t, err)
}

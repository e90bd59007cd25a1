package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocker_LockAndRelease(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewLocker(client, time.Second)

	unlock, err := l.Lock(context.Background(), "CZ1234567890123")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:tracking:CZ1234567890123"))

	unlock()
	assert.False(t, mr.Exists("lock:tracking:CZ1234567890123"))
}

func TestLocker_ContextCancelled(t *testing.T) {
	_, client := newTestClient(t)
	l := NewLocker(client, 5*time.Second)

	unlock, err := l.Lock(context.Background(), "X")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "X")
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewLocker(client, time.Second)

	unlock, err := l.Lock(context.Background(), "X")
	require.NoError(t, err)

	// Our lock expired and someone else took it.
	require.NoError(t, mr.Set("lock:tracking:X", "other-token"))
	unlock()

	got, err := mr.Get("lock:tracking:X")
	require.NoError(t, err)
	assert.Equal(t, "other-token", got)
}

func TestLocker_SerializesHolders(t *testing.T) {
	_, client := newTestClient(t)
	l := NewLocker(client, 2*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "X")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	_, client := newTestClient(t)
	rl := NewRateLimiter(client)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := rl.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		now = now.Add(time.Second)
	}

	res, err := rl.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC), res.Reset.UTC())

	// Other keys are independent.
	res, err = rl.Allow(ctx, "ip:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// Once the first request leaves the window a slot frees up.
	now = time.Date(2024, 5, 1, 12, 1, 0, int(time.Millisecond), time.UTC)
	res, err = rl.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestRateLimiter_Unavailable(t *testing.T) {
	mr, client := newTestClient(t)
	mr.Close()

	_, err := NewRateLimiter(client).Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}

func TestConnect_WithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	_, err := Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: time.Second})
	assert.Error(t, err)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), Password: "s3cret", Timeout: time.Second})
	require.NoError(t, err)
	_ = client.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.ErrorContains(t, err, "redis ping")
}

package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalValidation(t *testing.T) {
	t.Parallel()

	_, err := NewLocal(0, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewLocal(3, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLocalAdmitsBurstThenBlocks(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(0.001, 2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(short), ErrRateLimited)
}

func newRedisLimiter(t *testing.T, max int, window time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l, err := NewRedis(rdb, "vkr", "12345", max, window)
	require.NoError(t, err)
	return l, mr
}

func TestNewRedisValidation(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(nil, "", "1", 1, time.Second)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRedisFixedWindow(t *testing.T) {
	t.Parallel()

	l, mr := newRedisLimiter(t, 2, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, 10*time.Second, mr.TTL("vkr:12345"))

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(short), ErrRateLimited)
}

func TestRedisWindowResets(t *testing.T) {
	t.Parallel()

	l, mr := newRedisLimiter(t, 1, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	mr.FastForward(2 * time.Second)
	require.NoError(t, l.Wait(ctx))
}

func TestRedisUnavailable(t *testing.T) {
	t.Parallel()

	l, mr := newRedisLimiter(t, 1, time.Second)
	mr.Close()

	assert.ErrorIs(t, l.Wait(context.Background()), ErrRedisUnavailable)
}

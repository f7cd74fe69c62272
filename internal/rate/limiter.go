package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	xrate "golang.org/x/time/rate"
)

// Limiter admits outgoing calls.
type Limiter interface {
	// Wait blocks until a call may proceed or ctx ends.
	Wait(ctx context.Context) error
}

// Local is an in-process token bucket.
type Local struct {
	limiter *xrate.Limiter
}

// NewLocal allows rps calls per second with bursts of up to burst calls.
func NewLocal(rps float64, burst int) (*Local, error) {
	if rps <= 0 || burst <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Local{limiter: xrate.NewLimiter(xrate.Limit(rps), burst)}, nil
}

// Wait implements [Limiter].
func (l *Local) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

// Redis is a fixed-window limiter shared through Redis.
type Redis struct {
	redis  redis.UniversalClient
	key    string
	max    int64
	window time.Duration
}

// NewRedis allows max calls per window for the given app id.
func NewRedis(client redis.UniversalClient, prefix, appID string, max int, window time.Duration) (*Redis, error) {
	if client == nil || max <= 0 || window <= 0 {
		return nil, ErrInvalidConfig
	}
	if prefix == "" {
		prefix = "vkr"
	}
	return &Redis{
		redis:  client,
		key:    prefix + ":" + appID,
		max:    int64(max),
		window: window,
	}, nil
}

// Wait implements [Limiter]. While the window is exhausted it sleeps until
// the window key expires and tries again.
func (l *Redis) Wait(ctx context.Context) error {
	for {
		count, err := l.incrementWithTTL(ctx)
		if err != nil {
			return err
		}
		if count <= l.max {
			return nil
		}

		wait, err := l.redis.PTTL(ctx, l.key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if wait <= 0 {
			// Key lost its TTL (or expired in between); start a fresh window.
			if err := l.redis.Expire(ctx, l.key, l.window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
			wait = l.window
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", ErrRateLimited, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *Redis) incrementWithTTL(ctx context.Context) (int64, error) {
	count, err := l.redis.Incr(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key, l.window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

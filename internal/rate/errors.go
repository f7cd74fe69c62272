package rate

import "errors"

var (
	// ErrRateLimited is returned when a call could not be admitted before the
	// context ended.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures of the shared limiter.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrInvalidConfig is returned for non-positive limits.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
)

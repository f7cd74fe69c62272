package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any Redis transport failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrNotFound is returned when no record exists for a user.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned by Save for a record whose token already expired.
	ErrExpired = errors.New("session expired")
	// ErrInvalidUser is returned for non-positive user ids.
	ErrInvalidUser = errors.New("invalid user id")
)

// Store persists token [Record] values in Redis, one key per VK user.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
//
//	Docs: docs/session.md
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "vks"
	}
	return &Store{
		redis:  redis,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(userID int64) string {
	return s.prefix + ":" + strconv.FormatInt(userID, 10)
}

// Save writes rec, replacing any previous token for the same user. The key
// expires together with the token; offline tokens are stored without a TTL.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.UserID <= 0 {
		return ErrInvalidUser
	}

	ttl := rec.TTL(s.now())
	if ttl < 0 {
		return ErrExpired
	}

	data, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(rec.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get loads the record for userID. A record whose token expired while the
// key was still alive is deleted and reported as [ErrNotFound].
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, userID int64) (*Record, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if rec.Expired(s.now()) {
		if err := s.Delete(ctx, userID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return rec, nil
}

// Delete removes the record for userID. Deleting a missing record is not an
// error.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

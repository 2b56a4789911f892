package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// attemptStore is the counter backend for the throttle. Redis is the
// production implementation; tests substitute an in-memory one.
type attemptStore interface {
	Count(ctx context.Context, key string) (int, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, window time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisAttemptStore struct {
	client *redis.Client
}

func (s redisAttemptStore) Count(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (s redisAttemptStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s redisAttemptStore) Expire(ctx context.Context, key string, window time.Duration) error {
	return s.client.Expire(ctx, key, window).Err()
}

func (s redisAttemptStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// LoginThrottle counts failed login attempts per email.
// Key format: login_attempts:<email>
type LoginThrottle struct {
	store       attemptStore
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle wraps the given Redis client. A nil client disables
// throttling entirely.
func NewLoginThrottle(client *redis.Client, maxAttempts, windowMinutes int) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if windowMinutes <= 0 {
		windowMinutes = 15
	}
	var store attemptStore
	if client != nil {
		store = redisAttemptStore{client: client}
	}
	return &LoginThrottle{
		store:       store,
		maxAttempts: maxAttempts,
		window:      time.Duration(windowMinutes) * time.Minute,
	}
}

// Blocked reports whether the email has exceeded the failure budget.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	if t == nil || t.store == nil {
		return false, nil
	}
	count, err := t.store.Count(ctx, t.key(email))
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return count >= t.maxAttempts, nil
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if t == nil || t.store == nil {
		return nil
	}
	key := t.key(email)
	count, err := t.store.Incr(ctx, key)
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if count == 1 {
		return t.store.Expire(ctx, key, t.window)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if t == nil || t.store == nil {
		return nil
	}
	return t.store.Del(ctx, t.key(email))
}

func (t *LoginThrottle) key(email string) string {
	return "login_attempts:" + email
}

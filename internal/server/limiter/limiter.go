// Package limiter throttles failed logins per email address.
package limiter

import (
	"context"
	"time"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/redis/go-redis/v9"
)

// LoginLimiter decides whether a login attempt for an email may proceed.
type LoginLimiter interface {
	// Reserve counts one attempt before the password is checked and returns
	// common.ErrRateLimited once the budget of the current window is spent.
	Reserve(ctx context.Context, email string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, email string) error
}

// RedisLimiter keeps one fixed-window counter per email. The window starts
// with the first attempt and is not extended by later ones.
type RedisLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

// Reserve increments the counter and arms its TTL in one MULTI/EXEC, so
// concurrent attempts each see a distinct count.
func (l *RedisLimiter) Reserve(ctx context.Context, email string) error {
	key := loginKey(email)

	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return common.Internal(err)
	}

	if incr.Val() > int64(l.maxAttempts) {
		return common.ErrRateLimited
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return common.Internal(err)
	}
	return nil
}

func loginKey(email string) string {
	return "finauth:login:" + email
}

// Nop never limits.
type Nop struct{}

func (Nop) Reserve(context.Context, string) error { return nil }
func (Nop) Reset(context.Context, string) error   { return nil }

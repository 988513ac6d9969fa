package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const RedisOTPAttemptKeyPrefix = "otp:attempts:"

// incrWithExpiryScript counts a failed attempt. The window starts at the first
// failure and is not extended by later ones.
//
// KEYS[1] attempt counter, ARGV[1] window in milliseconds.
var incrWithExpiryScript = redis.NewScript(`
	local attempts = redis.call('INCR', KEYS[1])
	if attempts == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return attempts
`)

// OTPAttemptLimiter bounds failed OTP verifications per username.
type OTPAttemptLimiter interface {
	Exceeded(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) (int64, error)
	Reset(ctx context.Context, username string) error
}

type redisOTPAttemptLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewRedisOTPAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) OTPAttemptLimiter {
	return &redisOTPAttemptLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (l *redisOTPAttemptLimiter) Exceeded(ctx context.Context, username string) (bool, error) {
	if l.maxAttempts <= 0 {
		return false, nil
	}
	attempts, err := l.client.Get(ctx, RedisOTPAttemptKeyPrefix+username).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return attempts >= l.maxAttempts, nil
}

func (l *redisOTPAttemptLimiter) RecordFailure(ctx context.Context, username string) (int64, error) {
	return incrWithExpiryScript.Run(ctx, l.client,
		[]string{RedisOTPAttemptKeyPrefix + username},
		l.window.Milliseconds(),
	).Int64()
}

func (l *redisOTPAttemptLimiter) Reset(ctx context.Context, username string) error {
	return l.client.Del(ctx, RedisOTPAttemptKeyPrefix+username).Err()
}

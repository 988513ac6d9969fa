package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RedisAuthTokenKeyPrefix = "auth_token:"

// CachedToken is the slice of an AuthToken and its user needed to authorize a request.
type CachedToken struct {
	Key      string    `json:"key"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	RoleID   int       `json:"role_id"`
	IsActive bool      `json:"is_active"`
}

type TokenCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, tokenID uuid.UUID) (*CachedToken, error)
	Set(ctx context.Context, tokenID uuid.UUID, token *CachedToken) error
	Delete(ctx context.Context, tokenID uuid.UUID) error
}

type redisTokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenCache(client *redis.Client, ttl time.Duration) TokenCache {
	return &redisTokenCache{client: client, ttl: ttl}
}

func (c *redisTokenCache) Get(ctx context.Context, tokenID uuid.UUID) (*CachedToken, error) {
	raw, err := c.client.Get(ctx, RedisAuthTokenKeyPrefix+tokenID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var token CachedToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *redisTokenCache) Set(ctx context.Context, tokenID uuid.UUID, token *CachedToken) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, RedisAuthTokenKeyPrefix+tokenID.String(), raw, c.ttl).Err()
}

func (c *redisTokenCache) Delete(ctx context.Context, tokenID uuid.UUID) error {
	return c.client.Del(ctx, RedisAuthTokenKeyPrefix+tokenID.String()).Err()
}

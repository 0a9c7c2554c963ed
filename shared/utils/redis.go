package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/shared/config"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// InitRedis initializes the Redis client. The cache is optional: when
// Redis is unreachable the API still works, it just validates every
// token cryptographically instead of hitting the session cache.
func InitRedis() error {
	cfg := config.GetRedisConfig()
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logrus.WithField("addr", addr).Info("connected to Redis")
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// TokenSession is the cached identity behind a bearer token.
type TokenSession struct {
	UserID     string    `json:"user_id"`
	StoreID    string    `json:"store_id,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// IsExpired checks whether the session has passed its expiry
func (s *TokenSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// tokenHash derives the Redis key from the raw token so the token
// itself is never stored.
func tokenHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func sessionKey(token string) string {
	return fmt.Sprintf("token:session:%s", tokenHash(token))
}

// CreateTokenSession caches the identity resolved from a freshly issued token.
func CreateTokenSession(token string, session TokenSession, ttl time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	now := time.Now()
	session.CreatedAt = now
	session.LastUsedAt = now
	session.ExpiresAt = now.Add(ttl)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return RedisClient.Set(ctx, sessionKey(token), data, ttl).Err()
}

// GetTokenSession looks up the cached identity for a bearer token.
func GetTokenSession(token string) (*TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	key := sessionKey(token)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session TokenSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		RedisClient.Del(ctx, key)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// RevokeTokenSession removes a token session from Redis
func RevokeTokenSession(token string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return RedisClient.Del(ctx, sessionKey(token)).Err()
}

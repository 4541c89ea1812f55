package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session:"

// SessionCache keeps a token to user-id mapping in Redis so the current-user
// lookup can skip Postgres on the hot path. It is best effort only: Postgres
// stays authoritative and every cache failure degrades to a DB read.
type SessionCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionCache builds a cache around the shared redis client. A nil client
// disables caching entirely.
func NewSessionCache(client *redis.Client, logger *zap.Logger) *SessionCache {
	return &SessionCache{client: client, logger: logger}
}

// Put records token -> userID. Sessions never expire in this system, so no
// TTL is set.
func (c *SessionCache) Put(ctx context.Context, token string, userID int64) {
	if c == nil || c.client == nil || token == "" {
		return
	}
	if err := c.client.Set(ctx, sessionKeyPrefix+token, userID, 0).Err(); err != nil {
		c.logger.Debug("session cache put failed", zap.Error(err))
	}
}

// Get resolves a token to a user id. ok is false on miss or cache failure.
func (c *SessionCache) Get(ctx context.Context, token string) (int64, bool) {
	if c == nil || c.client == nil || token == "" {
		return 0, false
	}
	val, err := c.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("session cache get failed", zap.Error(err))
		}
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Delete drops a token mapping, typically on logout or token rotation.
func (c *SessionCache) Delete(ctx context.Context, token string) {
	if c == nil || c.client == nil || token == "" {
		return
	}
	if err := c.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		c.logger.Debug("session cache delete failed", zap.Error(err))
	}
}

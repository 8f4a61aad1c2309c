package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"challengeboard/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// BoardKeyPrefix prefixes the per-board leaderboard entries
	BoardKeyPrefix = "leaderboard:board:"

	// VersionKey tracks the global leaderboard version for efficient change detection
	VersionKey = "leaderboard:version"
)

// RedisCache stores one serialized leaderboard per board key. SET replaces
// the whole value atomically, which is what keeps concurrent recomputes
// benign: readers see the previous entry or the new one, never a mix.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed leaderboard cache
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

func boardKey(boardID string) string {
	return BoardKeyPrefix + boardID
}

// Get returns the cached leaderboard for a board, or nil when none exists.
func (c *RedisCache) Get(ctx context.Context, boardID string) (*models.Leaderboard, error) {
	payload, err := c.client.Get(ctx, boardKey(boardID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var lb models.Leaderboard
	if err := json.Unmarshal(payload, &lb); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for board %s: %w", boardID, err)
	}
	return &lb, nil
}

// Set replaces a board's entry wholesale and bumps the global version
// counter so the websocket hub can detect the change without re-reading
// every board.
func (c *RedisCache) Set(ctx context.Context, lb *models.Leaderboard) error {
	payload, err := json.Marshal(lb)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, boardKey(lb.BoardID), payload, 0)
	pipe.Incr(ctx, VersionKey)
	_, err = pipe.Exec(ctx)
	return err
}

// Version returns the current global version number
func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, VersionKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil // Version not set yet, return 0
		}
		return 0, err
	}
	return version, nil
}

// Invalidate drops a board's entry; the next read recomputes lazily.
func (c *RedisCache) Invalidate(ctx context.Context, boardID string) error {
	return c.client.Del(ctx, boardKey(boardID)).Err()
}

// Ping checks if Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

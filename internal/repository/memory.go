package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"challengeboard/internal/models"
)

// MemoryCache is a process-local leaderboard cache with the same contract
// as RedisCache. Used in tests and as the fallback when Redis is disabled.
type MemoryCache struct {
	mu      sync.RWMutex
	boards  map[string]*models.Leaderboard
	version atomic.Int64
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		boards: make(map[string]*models.Leaderboard),
	}
}

// Get returns the cached leaderboard for a board, or nil when none exists.
func (c *MemoryCache) Get(ctx context.Context, boardID string) (*models.Leaderboard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lb, ok := c.boards[boardID]
	if !ok {
		return nil, nil
	}
	// Copy so callers can never mutate the cached entry in place.
	clone := *lb
	clone.Scores = append([]models.LeaderboardScore(nil), lb.Scores...)
	return &clone, nil
}

// Set replaces a board's entry wholesale.
func (c *MemoryCache) Set(ctx context.Context, lb *models.Leaderboard) error {
	clone := *lb
	clone.Scores = append([]models.LeaderboardScore(nil), lb.Scores...)

	c.mu.Lock()
	c.boards[lb.BoardID] = &clone
	c.mu.Unlock()

	c.version.Add(1)
	return nil
}

// Version returns the current version number
func (c *MemoryCache) Version(ctx context.Context) (int64, error) {
	return c.version.Load(), nil
}

// Invalidate drops a board's entry.
func (c *MemoryCache) Invalidate(ctx context.Context, boardID string) error {
	c.mu.Lock()
	delete(c.boards, boardID)
	c.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory cache.
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory cache.
func (c *MemoryCache) Close() error {
	return nil
}

package scoring

import (
	"context"
	"time"

	"challengeboard/internal/models"
)

// Cache holds one ranked result per board. Implementations must replace an
// entry atomically: a reader sees either the previous entry or the new one,
// never a partial update.
type Cache interface {
	// Get returns the cached leaderboard for a board, or nil when no
	// entry exists yet.
	Get(ctx context.Context, boardID string) (*models.Leaderboard, error)
	// Set replaces the board's entry wholesale.
	Set(ctx context.Context, lb *models.Leaderboard) error
}

// NeedsRecompute is the incremental-recompute decision: a board is rebuilt
// only when the latest relevant event is strictly newer than the cached
// entry's stamp. A missing entry always needs computing.
func NeedsRecompute(latestEvent time.Time, cached *models.Leaderboard) bool {
	if cached == nil {
		return true
	}
	return latestEvent.After(cached.Timestamp)
}

package models

import "time"

// Leaderboard is the cached ranked result for one board. Timestamp is the
// newest contributing event the entry reflects and is stamped before the
// entry is persisted, so a reader never sees a list staler than its stamp.
type Leaderboard struct {
	BoardID   string             `json:"board_id"`
	Timestamp time.Time          `json:"timestamp"`
	Scores    []LeaderboardScore `json:"scores"`
	Total     int                `json:"total"`
}

// LeaderboardScore is one team's computed entry. Entries are recomputed
// wholesale on every board recompute and never partially mutated.
type LeaderboardScore struct {
	Rank           int       `json:"rank"`
	TeamID         string    `json:"team_id"`
	Name           string    `json:"name"`
	AnonymizedName string    `json:"anonymized_name"`
	Organization   string    `json:"organization"`
	Badges         string    `json:"badges"`
	Score          int       `json:"score"`
	DurationMS     int64     `json:"duration_ms"`
	SuccessCount   int       `json:"success_count"`
	PartialCount   int       `json:"partial_count"`
	FailureCount   int       `json:"failure_count"`
	ProblemCount   int       `json:"problem_count"`
	Start          time.Time `json:"start"`
	MaxMinutes     int       `json:"max_minutes"`
}

// ExportRow is a denormalized projection of one leaderboard entry for
// reporting; the export surface does no new computation.
type ExportRow struct {
	BoardID      string `json:"board_id"`
	Rank         int    `json:"rank"`
	Team         string `json:"team"`
	Organization string `json:"organization"`
	Score        int    `json:"score"`
	DurationMS   int64  `json:"duration_ms"`
	SuccessCount int    `json:"success_count"`
	PartialCount int    `json:"partial_count"`
	FailureCount int    `json:"failure_count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

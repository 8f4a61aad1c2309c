package models

import "time"

// Team is the competing unit on a board.
// Updated is bumped on any moderator-visible change, not only score changes;
// the leaderboard cache uses it as an invalidation signal.
type Team struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Organization string    `gorm:"size:100" json:"organization"`
	Number       int       `gorm:"not null;default:0" json:"number"`
	Badges       string    `gorm:"size:200" json:"badges"`
	Disabled     bool      `gorm:"not null;default:false" json:"disabled"`
	Updated      time.Time `gorm:"index" json:"updated"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamBoard joins a team to a board it competes on. Score is a cached
// denormalization maintained by the score aggregator; ranking never reads it.
type TeamBoard struct {
	TeamID             string    `gorm:"primaryKey;type:uuid" json:"team_id"`
	BoardID            string    `gorm:"primaryKey;type:uuid" json:"board_id"`
	Start              time.Time `json:"start"`
	OverrideMaxMinutes *int      `json:"override_max_minutes,omitempty"`
	Score              int       `gorm:"not null;default:0" json:"score"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (TeamBoard) TableName() string {
	return "team_boards"
}

// MaxMinutes resolves the effective time limit for this team on the board.
func (tb *TeamBoard) MaxMinutes(board *Board) int {
	if tb.OverrideMaxMinutes != nil {
		return *tb.OverrideMaxMinutes
	}
	if board != nil {
		return board.MaxMinutes
	}
	return 0
}

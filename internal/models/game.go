package models

import "time"

// Game represents the active competition: a set of scored boards plus
// the game-wide settings the leaderboard engine needs.
type Game struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	MaxTeamSize    int       `gorm:"not null;default:1" json:"max_team_size"`
	AnonymizeNames bool      `gorm:"not null;default:false" json:"anonymize_names"`
	Active         bool      `gorm:"not null;default:true;index" json:"active"`
	Boards         []Board   `gorm:"foreignKey:GameID" json:"boards"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Game) TableName() string {
	return "games"
}

// AnonymizeTag is the middle segment of every anonymized display name:
// "Team" for team games, "Player" for solo games.
func (g *Game) AnonymizeTag() string {
	if g.MaxTeamSize > 1 {
		return "Team"
	}
	return "Player"
}

// Board is a named collection of challenges with a shared time limit.
type Board struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	GameID     string    `gorm:"type:uuid;index;not null" json:"game_id"`
	Name       string    `gorm:"size:200;not null" json:"name"`
	MaxMinutes int       `gorm:"not null;default:0" json:"max_minutes"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Board) TableName() string {
	return "boards"
}

// Challenge is a reusable problem definition from the challenge catalogue.
// TokenCount > 1 marks a multi-stage challenge.
type Challenge struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	LinkID         string    `gorm:"size:64;uniqueIndex;not null" json:"link_id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	MaxPoints      int       `gorm:"not null" json:"max_points"`
	TokenCount     int       `gorm:"not null;default:1" json:"token_count"`
	MaxSubmissions int       `gorm:"not null;default:0" json:"max_submissions"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// MultiStage reports whether the challenge requires sequential sub-flags.
func (c *Challenge) MultiStage() bool {
	return c.TokenCount > 1
}

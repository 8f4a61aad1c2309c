package models

import "time"

// Problem is one team's running instance of a challenge on a board.
// At most one active Problem exists per (team, challenge) pair; a reset
// deletes problems together with their submissions and tokens.
type Problem struct {
	ID              string        `gorm:"primaryKey;type:uuid" json:"id"`
	TeamID          string        `gorm:"type:uuid;index;not null" json:"team_id"`
	BoardID         string        `gorm:"type:uuid;index;not null" json:"board_id"`
	ChallengeLinkID *string       `gorm:"size:64;index" json:"challenge_link_id,omitempty"`
	Score           int           `gorm:"not null;default:0" json:"score"`
	Start           time.Time     `json:"start"`
	End             *time.Time    `json:"end,omitempty"`
	Status          ProblemStatus `gorm:"size:20;not null;default:'registered'" json:"status"`
	Submissions     []Submission  `gorm:"foreignKey:ProblemID" json:"submissions"`
	Tokens          []ProblemToken `gorm:"foreignKey:ProblemID" json:"tokens"`
}

func (Problem) TableName() string {
	return "problems"
}

// Attempted reports whether the team has made at least one submission.
func (p *Problem) Attempted() bool {
	return len(p.Submissions) > 0
}

// ProblemToken is one sub-flag slot of a multi-stage problem, carrying the
// latest graded state and partial-credit percentage for that stage.
type ProblemToken struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	ProblemID string      `gorm:"type:uuid;index;not null" json:"problem_id"`
	Index     int         `gorm:"not null" json:"index"`
	Status    TokenStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Percent   int         `gorm:"not null;default:0" json:"percent"`
}

func (ProblemToken) TableName() string {
	return "problem_tokens"
}

// Submission is one graded attempt against a problem. Immutable once
// created; the grading outcome lives in the attached token results.
type Submission struct {
	ID        string           `gorm:"primaryKey;type:uuid" json:"id"`
	ProblemID string           `gorm:"type:uuid;index;not null" json:"problem_id"`
	UserID    string           `gorm:"type:uuid" json:"user_id"`
	Timestamp time.Time        `gorm:"index" json:"timestamp"`
	Status    SubmissionStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Tokens    []TokenResult    `gorm:"foreignKey:SubmissionID" json:"tokens"`
}

func (Submission) TableName() string {
	return "submissions"
}

// CorrectPercent sums the awarded percentages across correct token results.
// The leaderboard builder uses it to decide which submission gets credited
// for a problem's duration.
func (s *Submission) CorrectPercent() int {
	total := 0
	for _, t := range s.Tokens {
		if t.Status == TokenCorrect {
			total += t.Percent
		}
	}
	return total
}

// TokenResult is the graded result for one sub-flag within one submission.
type TokenResult struct {
	ID           string      `gorm:"primaryKey;type:uuid" json:"id"`
	SubmissionID string      `gorm:"type:uuid;index;not null" json:"submission_id"`
	Value        string      `gorm:"size:200" json:"value"`
	Index        int         `gorm:"not null" json:"index"`
	Status       TokenStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Percent      int         `gorm:"not null;default:0" json:"percent"`
}

func (TokenResult) TableName() string {
	return "token_results"
}

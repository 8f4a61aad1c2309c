package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"challengeboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresRepository handles all PostgreSQL operations
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new Postgres repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// ActiveGame returns the current game with its boards preloaded.
// The engine cannot run without one; callers treat a miss as a contract
// violation, not a user-facing condition.
func (r *PostgresRepository) ActiveGame(ctx context.Context) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("Boards").
		Where("active = ?", true).
		First(&game).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no active game configured")
		}
		return nil, err
	}
	return &game, nil
}

// FindBoard looks up a single board by id; a miss returns nil.
func (r *PostgresRepository) FindBoard(ctx context.Context, boardID string) (*models.Board, error) {
	var board models.Board
	err := r.db.WithContext(ctx).Where("id = ?", boardID).First(&board).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

// Teams returns every team keyed by id.
func (r *PostgresRepository) Teams(ctx context.Context) (map[string]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).Find(&teams).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	return byID, nil
}

// TeamBoards returns the team/board joins for one board keyed by team id.
func (r *PostgresRepository) TeamBoards(ctx context.Context, boardID string) (map[string]models.TeamBoard, error) {
	var rows []models.TeamBoard
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	byTeam := make(map[string]models.TeamBoard, len(rows))
	for _, tb := range rows {
		byTeam[tb.TeamID] = tb
	}
	return byTeam, nil
}

// BoardProblems returns every problem on a board, grouped by team, with
// submission history and token results preloaded in timestamp/index order.
func (r *PostgresRepository) BoardProblems(ctx context.Context, boardID string) (map[string][]models.Problem, error) {
	var problems []models.Problem
	err := r.db.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submissions.timestamp ASC")
		}).
		Preload("Submissions.Tokens", func(db *gorm.DB) *gorm.DB {
			return db.Order("token_results.index ASC")
		}).
		Preload("Tokens", func(db *gorm.DB) *gorm.DB {
			return db.Order("problem_tokens.index ASC")
		}).
		Where("board_id = ?", boardID).
		Find(&problems).Error
	if err != nil {
		return nil, err
	}

	byTeam := make(map[string][]models.Problem)
	for _, p := range problems {
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}
	return byTeam, nil
}

// TeamProblems returns one team's problems on one board, submissions included.
func (r *PostgresRepository) TeamProblems(ctx context.Context, teamID, boardID string) ([]models.Problem, error) {
	var problems []models.Problem
	err := r.db.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submissions.timestamp ASC")
		}).
		Preload("Submissions.Tokens").
		Where("team_id = ? AND board_id = ?", teamID, boardID).
		Find(&problems).Error
	return problems, err
}

// FindProblem loads one problem with its full submission history; a miss
// returns nil.
func (r *PostgresRepository) FindProblem(ctx context.Context, problemID string) (*models.Problem, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submissions.timestamp ASC")
		}).
		Preload("Submissions.Tokens", func(db *gorm.DB) *gorm.DB {
			return db.Order("token_results.index ASC")
		}).
		Where("id = ?", problemID).
		First(&problem).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &problem, nil
}

// Challenges returns the challenge catalogue keyed by link id.
func (r *PostgresRepository) Challenges(ctx context.Context) (map[string]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).Find(&challenges).Error; err != nil {
		return nil, err
	}
	byLink := make(map[string]models.Challenge, len(challenges))
	for _, c := range challenges {
		byLink[c.LinkID] = c
	}
	return byLink, nil
}

// FindChallengeByLinkID resolves one catalogue entry; a miss returns nil.
func (r *PostgresRepository) FindChallengeByLinkID(ctx context.Context, linkID string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).First(&challenge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

// LatestScoringSubmission returns the timestamp of the newest submission on
// the board whose problem has a positive score. Zero time when none exists.
func (r *PostgresRepository) LatestScoringSubmission(ctx context.Context, boardID string) (time.Time, error) {
	var ts sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN problems ON problems.id = submissions.problem_id").
		Where("problems.board_id = ? AND problems.score > 0", boardID).
		Select("MAX(submissions.timestamp)").
		Scan(&ts).Error
	if err != nil || !ts.Valid {
		return time.Time{}, err
	}
	return ts.Time, nil
}

// LatestTeamUpdate returns the newest Team.Updated among teams enrolled on
// the board. Team edits invalidate the leaderboard even without new scores.
func (r *PostgresRepository) LatestTeamUpdate(ctx context.Context, boardID string) (time.Time, error) {
	var ts sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Joins("JOIN team_boards ON team_boards.team_id = teams.id").
		Where("team_boards.board_id = ?", boardID).
		Select("MAX(teams.updated)").
		Scan(&ts).Error
	if err != nil || !ts.Valid {
		return time.Time{}, err
	}
	return ts.Time, nil
}

// UpsertTeamBoardScore writes the aggregator's cached score for one
// team/board pair. Uses ON CONFLICT so repeated writes stay idempotent.
func (r *PostgresRepository) UpsertTeamBoardScore(ctx context.Context, teamID, boardID string, score int) error {
	row := models.TeamBoard{
		TeamID:  teamID,
		BoardID: boardID,
		Score:   score,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "board_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&row).Error
}

// Ping checks if database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs database migrations
func (r *PostgresRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.Game{},
		&models.Board{},
		&models.Challenge{},
		&models.Team{},
		&models.TeamBoard{},
		&models.Problem{},
		&models.ProblemToken{},
		&models.Submission{},
		&models.TokenResult{},
	)
}

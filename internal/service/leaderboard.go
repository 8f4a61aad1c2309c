package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"challengeboard/internal/models"
	"challengeboard/internal/scoring"
	"challengeboard/internal/worker"
)

// Store is the slice of the persistence layer the engine consumes. The
// engine never issues queries itself; it works on the in-memory snapshots
// these calls return.
type Store interface {
	ActiveGame(ctx context.Context) (*models.Game, error)
	Teams(ctx context.Context) (map[string]models.Team, error)
	TeamBoards(ctx context.Context, boardID string) (map[string]models.TeamBoard, error)
	BoardProblems(ctx context.Context, boardID string) (map[string][]models.Problem, error)
	TeamProblems(ctx context.Context, teamID, boardID string) ([]models.Problem, error)
	FindProblem(ctx context.Context, problemID string) (*models.Problem, error)
	Challenges(ctx context.Context) (map[string]models.Challenge, error)
	FindChallengeByLinkID(ctx context.Context, linkID string) (*models.Challenge, error)
	LatestScoringSubmission(ctx context.Context, boardID string) (time.Time, error)
	LatestTeamUpdate(ctx context.Context, boardID string) (time.Time, error)
	UpsertTeamBoardScore(ctx context.Context, teamID, boardID string, score int) error
}

// ScorePersister is the write-behind sink for TeamBoard cached scores.
// *worker.WorkerPool implements it.
type ScorePersister interface {
	Submit(task worker.ScoreWriteTask) error
}

// LeaderboardService orchestrates the scoring engine: it fetches consistent
// snapshots, runs the pure builder, and keeps the per-board cache fresh.
type LeaderboardService struct {
	store       Store
	cache       scoring.Cache
	pool        ScorePersister
	summarySize int
}

// NewLeaderboardService creates a new leaderboard service. pool may be nil,
// in which case score writes go to the store synchronously.
func NewLeaderboardService(store Store, cache scoring.Cache, pool ScorePersister, summarySize int) *LeaderboardService {
	if summarySize <= 0 {
		summarySize = 10
	}
	return &LeaderboardService{
		store:       store,
		cache:       cache,
		pool:        pool,
		summarySize: summarySize,
	}
}

// Calculate sweeps every board of the active game and recomputes the ones
// with new activity. It returns only the boards whose cache entry actually
// changed, each truncated to the summary page, for push fan-out.
//
// Boards are independent: one board failing to compute does not stop the
// sweep, and a missing game is the only fatal condition.
func (s *LeaderboardService) Calculate(ctx context.Context) ([]models.Leaderboard, error) {
	game, err := s.store.ActiveGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard sweep needs a game catalogue: %w", err)
	}

	var changed []models.Leaderboard
	for i := range game.Boards {
		board := game.Boards[i]
		lb, recomputed, err := s.ensureBoard(ctx, game, &board)
		if err != nil {
			log.Printf("❌ Failed to recompute board %s: %v", board.ID, err)
			continue
		}
		if recomputed {
			changed = append(changed, *s.summarize(lb))
		}
	}
	return changed, nil
}

// Get returns the filtered, anonymized view of one board's leaderboard,
// recomputing first if the cached entry is stale. An unknown board yields
// an empty leaderboard rather than an error.
func (s *LeaderboardService) Get(ctx context.Context, boardID string, f Filter, v Viewer) (*models.Leaderboard, error) {
	game, err := s.store.ActiveGame(ctx)
	if err != nil {
		return nil, err
	}

	board := findBoard(game, boardID)
	if board == nil {
		return &models.Leaderboard{BoardID: boardID}, nil
	}

	lb, _, err := s.ensureBoard(ctx, game, board)
	if err != nil {
		return nil, err
	}
	return Render(lb, f, v, game.AnonymizeNames), nil
}

// GetTeamScore returns one team's cached entry on a board, or a zero-valued
// placeholder when the team has no cached score yet.
func (s *LeaderboardService) GetTeamScore(ctx context.Context, boardID, teamID string) (*models.LeaderboardScore, error) {
	cached, err := s.cache.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		for i := range cached.Scores {
			if cached.Scores[i].TeamID == teamID {
				entry := cached.Scores[i]
				return &entry, nil
			}
		}
	}
	return &models.LeaderboardScore{TeamID: teamID}, nil
}

// Export flattens the cached leaderboard into report rows. It reads the
// cache as-is and performs no new computation.
func (s *LeaderboardService) Export(ctx context.Context, boardID string) ([]models.ExportRow, error) {
	cached, err := s.cache.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}

	rows := []models.ExportRow{}
	if cached == nil {
		return rows, nil
	}
	for _, sc := range cached.Scores {
		rows = append(rows, models.ExportRow{
			BoardID:      boardID,
			Rank:         sc.Rank,
			Team:         sc.Name,
			Organization: sc.Organization,
			Score:        sc.Score,
			DurationMS:   sc.DurationMS,
			SuccessCount: sc.SuccessCount,
			PartialCount: sc.PartialCount,
			FailureCount: sc.FailureCount,
		})
	}
	return rows, nil
}

// RecomputeTeamBoardScore re-sums one team's problem scores on a board and
// persists the TeamBoard denormalization. Called right after a grading
// event so the team sees a consistent total before the next full sweep.
func (s *LeaderboardService) RecomputeTeamBoardScore(ctx context.Context, teamID, boardID string) (int, error) {
	problems, err := s.store.TeamProblems(ctx, teamID, boardID)
	if err != nil {
		return 0, fmt.Errorf("failed to load team problems: %w", err)
	}

	score := scoring.TeamBoardScore(teamID, boardID, problems)

	if s.pool != nil {
		// Backpressure drops are tolerable here: the cached field is a
		// convenience, the next write restores it.
		_ = s.pool.Submit(worker.ScoreWriteTask{TeamID: teamID, BoardID: boardID, Score: score})
		return score, nil
	}
	if err := s.store.UpsertTeamBoardScore(ctx, teamID, boardID, score); err != nil {
		return score, fmt.Errorf("failed to persist team board score: %w", err)
	}
	return score, nil
}

// AttemptsAtCurrentStage reports how many submissions a problem has spent
// on its current unsolved stage, against the challenge's submission limit.
// An unknown problem or challenge yields zero attempts and no limit rather
// than an error.
func (s *LeaderboardService) AttemptsAtCurrentStage(ctx context.Context, problemID string) (attempts, limit int, err error) {
	problem, err := s.store.FindProblem(ctx, problemID)
	if err != nil {
		return 0, 0, err
	}
	if problem == nil || problem.ChallengeLinkID == nil {
		return 0, 0, nil
	}

	challenge, err := s.store.FindChallengeByLinkID(ctx, *problem.ChallengeLinkID)
	if err != nil {
		return 0, 0, err
	}
	if challenge == nil {
		return 0, 0, nil
	}

	attempts = scoring.AttemptsAtCurrentStage(
		challenge.MaxSubmissions,
		challenge.MultiStage(),
		challenge.TokenCount,
		problem.Submissions,
	)
	return attempts, challenge.MaxSubmissions, nil
}

// HealthCheck checks the health of the backing stores
func (s *LeaderboardService) HealthCheck(ctx context.Context) error {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("store health check failed: %w", err)
		}
	}
	if p, ok := s.cache.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("cache health check failed: %w", err)
		}
	}
	return nil
}

// ensureBoard returns the board's leaderboard, recomputing it only when the
// latest relevant event outranks the cached stamp. The bool reports whether
// a recompute actually happened.
func (s *LeaderboardService) ensureBoard(ctx context.Context, game *models.Game, board *models.Board) (*models.Leaderboard, bool, error) {
	latest, err := s.latestEvent(ctx, board.ID)
	if err != nil {
		return nil, false, err
	}

	cached, err := s.cache.Get(ctx, board.ID)
	if err != nil {
		return nil, false, err
	}
	if !scoring.NeedsRecompute(latest, cached) {
		return cached, false, nil
	}

	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, false, err
	}
	teamBoards, err := s.store.TeamBoards(ctx, board.ID)
	if err != nil {
		return nil, false, err
	}
	problemsByTeam, err := s.store.BoardProblems(ctx, board.ID)
	if err != nil {
		return nil, false, err
	}
	challenges, err := s.store.Challenges(ctx)
	if err != nil {
		return nil, false, err
	}

	scores := scoring.BuildLeaderboard(scoring.BuildInput{
		Game:           *game,
		Board:          *board,
		Teams:          teams,
		TeamBoards:     teamBoards,
		ProblemsByTeam: problemsByTeam,
		Challenges: func(linkID string) *models.Challenge {
			if c, ok := challenges[linkID]; ok {
				return &c
			}
			return nil
		},
	})

	// The entry is stamped with the latest-event time before the write so
	// a concurrent reader never sees a list staler than its own stamp.
	lb := &models.Leaderboard{
		BoardID:   board.ID,
		Timestamp: latest,
		Scores:    scores,
		Total:     len(scores),
	}
	if err := s.cache.Set(ctx, lb); err != nil {
		return nil, false, fmt.Errorf("failed to cache board %s: %w", board.ID, err)
	}
	return lb, true, nil
}

// latestEvent computes the newest timestamp that can affect a board's
// ranking: a scoring submission, or a moderator-visible team change.
func (s *LeaderboardService) latestEvent(ctx context.Context, boardID string) (time.Time, error) {
	subTS, err := s.store.LatestScoringSubmission(ctx, boardID)
	if err != nil {
		return time.Time{}, err
	}
	teamTS, err := s.store.LatestTeamUpdate(ctx, boardID)
	if err != nil {
		return time.Time{}, err
	}
	return scoring.LatestEvent(subTS, teamTS), nil
}

// summarize truncates a leaderboard to the default summary page used for
// push fan-out.
func (s *LeaderboardService) summarize(lb *models.Leaderboard) *models.Leaderboard {
	summary := *lb
	if len(summary.Scores) > s.summarySize {
		summary.Scores = append([]models.LeaderboardScore(nil), summary.Scores[:s.summarySize]...)
	}
	return &summary
}

func findBoard(game *models.Game, boardID string) *models.Board {
	for i := range game.Boards {
		if game.Boards[i].ID == boardID {
			return &game.Boards[i]
		}
	}
	return nil
}

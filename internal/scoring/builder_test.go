package scoring

import (
	"testing"
	"time"

	"challengeboard/internal/models"
)

func catalogue(challenges ...models.Challenge) ChallengeLookup {
	byLink := make(map[string]models.Challenge, len(challenges))
	for _, c := range challenges {
		byLink[c.LinkID] = c
	}
	return func(linkID string) *models.Challenge {
		if c, ok := byLink[linkID]; ok {
			return &c
		}
		return nil
	}
}

func linkID(s string) *string { return &s }

func testInput() BuildInput {
	return BuildInput{
		Game:       models.Game{MaxTeamSize: 5},
		Board:      models.Board{ID: "board-1", MaxMinutes: 480},
		Teams:      map[string]models.Team{},
		TeamBoards: map[string]models.TeamBoard{},
		ProblemsByTeam: map[string][]models.Problem{},
		Challenges: catalogue(models.Challenge{LinkID: "web-100", MaxPoints: 100, TokenCount: 1}),
	}
}

func TestBuildLeaderboardSingleSolve(t *testing.T) {
	// Scenario: one problem worth 100, solved 5 minutes after start.
	in := testInput()
	in.Teams["t1"] = models.Team{ID: "t1", Name: "alpha", Organization: "acme", Number: 7}
	in.ProblemsByTeam["t1"] = []models.Problem{{
		TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 100, Start: base,
		Submissions: []models.Submission{
			sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
		},
	}}

	scores := BuildLeaderboard(in)
	if len(scores) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(scores))
	}
	s := scores[0]
	if s.Rank != 1 || s.Score != 100 || s.DurationMS != 300000 {
		t.Errorf("unexpected entry: rank=%d score=%d duration=%d", s.Rank, s.Score, s.DurationMS)
	}
	if s.SuccessCount != 1 || s.FailureCount != 0 || s.PartialCount != 0 {
		t.Errorf("unexpected counts: %d/%d/%d", s.SuccessCount, s.PartialCount, s.FailureCount)
	}
	if s.AnonymizedName != "acme-Team-7" {
		t.Errorf("unexpected anonymized name %q", s.AnonymizedName)
	}
}

func TestBuildLeaderboardExcludesZeroScoreTeams(t *testing.T) {
	in := testInput()
	in.Teams["t1"] = models.Team{ID: "t1", Name: "alpha"}
	in.ProblemsByTeam["t1"] = []models.Problem{{
		TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 0, Start: base,
		Submissions: []models.Submission{
			sub(1*time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0)),
			sub(2*time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0)),
		},
	}}

	if scores := BuildLeaderboard(in); len(scores) != 0 {
		t.Fatalf("zero-score team must not appear, got %d entries", len(scores))
	}
}

func TestBuildLeaderboardFailureCountsWhenTeamStillScores(t *testing.T) {
	in := testInput()
	in.Teams["t1"] = models.Team{ID: "t1", Name: "alpha"}
	in.ProblemsByTeam["t1"] = []models.Problem{
		{
			TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
			Score: 100, Start: base,
			Submissions: []models.Submission{
				sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
			},
		},
		{
			TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
			Score: 0, Start: base,
			Submissions: []models.Submission{
				sub(7*time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0)),
			},
		},
	}

	scores := BuildLeaderboard(in)
	if len(scores) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(scores))
	}
	if scores[0].FailureCount != 1 || scores[0].SuccessCount != 1 {
		t.Errorf("expected success=1 failure=1, got success=%d failure=%d",
			scores[0].SuccessCount, scores[0].FailureCount)
	}
}

func TestBuildLeaderboardDurationTieBreak(t *testing.T) {
	// Equal totals: the faster team ranks first.
	in := testInput()
	in.Teams["a"] = models.Team{ID: "a", Name: "fast"}
	in.Teams["b"] = models.Team{ID: "b", Name: "slow"}
	in.ProblemsByTeam["a"] = []models.Problem{{
		TeamID: "a", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 50, Start: base,
		Submissions: []models.Submission{
			sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 50)),
		},
	}}
	in.ProblemsByTeam["b"] = []models.Problem{{
		TeamID: "b", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 50, Start: base,
		Submissions: []models.Submission{
			sub(20*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 50)),
		},
	}}

	scores := BuildLeaderboard(in)
	if len(scores) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(scores))
	}
	if scores[0].TeamID != "a" || scores[0].Rank != 1 {
		t.Errorf("expected team a at rank 1, got %s at rank %d", scores[0].TeamID, scores[0].Rank)
	}
	if scores[1].TeamID != "b" || scores[1].Rank != 2 {
		t.Errorf("expected team b at rank 2, got %s at rank %d", scores[1].TeamID, scores[1].Rank)
	}
}

func TestBuildLeaderboardRankDensity(t *testing.T) {
	in := testInput()
	names := []string{"w", "x", "y", "z"}
	for i, name := range names {
		id := name
		in.Teams[id] = models.Team{ID: id, Name: name}
		in.ProblemsByTeam[id] = []models.Problem{{
			TeamID: id, BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
			Score: 50, Start: base,
			Submissions: []models.Submission{
				sub(time.Duration(i+1)*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 50)),
			},
		}}
	}

	scores := BuildLeaderboard(in)
	if len(scores) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(scores))
	}
	for i, s := range scores {
		if s.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", i, i+1, s.Rank)
		}
	}
}

func TestBuildLeaderboardSuccessCountTieBreakAscending(t *testing.T) {
	// Same score, same duration: fewer successes ranks higher.
	in := testInput()
	in.Challenges = catalogue(
		models.Challenge{LinkID: "web-100", MaxPoints: 100, TokenCount: 1},
		models.Challenge{LinkID: "web-50", MaxPoints: 50, TokenCount: 1},
	)
	in.Teams["one"] = models.Team{ID: "one", Name: "one-solve"}
	in.Teams["two"] = models.Team{ID: "two", Name: "two-solves"}
	in.ProblemsByTeam["one"] = []models.Problem{{
		TeamID: "one", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 100, Start: base,
		Submissions: []models.Submission{
			sub(10*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
		},
	}}
	in.ProblemsByTeam["two"] = []models.Problem{
		{
			TeamID: "two", BoardID: "board-1", ChallengeLinkID: linkID("web-50"),
			Score: 50, Start: base,
			Submissions: []models.Submission{
				sub(4*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
			},
		},
		{
			TeamID: "two", BoardID: "board-1", ChallengeLinkID: linkID("web-50"),
			Score: 50, Start: base,
			Submissions: []models.Submission{
				sub(6*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
			},
		},
	}

	scores := BuildLeaderboard(in)
	if len(scores) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(scores))
	}
	if scores[0].TeamID != "one" {
		t.Errorf("expected the one-success team first, got %s", scores[0].TeamID)
	}
}

func TestBuildLeaderboardExcludesUnknownChallengeFromCounts(t *testing.T) {
	in := testInput()
	in.Teams["t1"] = models.Team{ID: "t1", Name: "alpha"}
	in.ProblemsByTeam["t1"] = []models.Problem{
		{
			TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
			Score: 100, Start: base,
			Submissions: []models.Submission{
				sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
			},
		},
		{
			TeamID: "t1", BoardID: "board-1", ChallengeLinkID: linkID("gone"),
			Score: 30, Start: base,
			Submissions: []models.Submission{
				sub(9*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
			},
		},
	}

	scores := BuildLeaderboard(in)
	if len(scores) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(scores))
	}
	s := scores[0]
	if s.ProblemCount != 1 || s.SuccessCount != 1 || s.PartialCount != 0 {
		t.Errorf("orphan challenge leaked into counts: problems=%d success=%d partial=%d",
			s.ProblemCount, s.SuccessCount, s.PartialCount)
	}
	// The orphan problem's points still count toward the total.
	if s.Score != 130 {
		t.Errorf("expected total 130, got %d", s.Score)
	}
}

func TestBuildLeaderboardExcludesDisabledAndUnknownTeams(t *testing.T) {
	in := testInput()
	in.Teams["off"] = models.Team{ID: "off", Name: "banned", Disabled: true}
	solved := []models.Problem{{
		TeamID: "off", BoardID: "board-1", ChallengeLinkID: linkID("web-100"),
		Score: 100, Start: base,
		Submissions: []models.Submission{
			sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 100)),
		},
	}}
	in.ProblemsByTeam["off"] = solved
	in.ProblemsByTeam["ghost"] = solved

	if scores := BuildLeaderboard(in); len(scores) != 0 {
		t.Fatalf("disabled/unknown teams must be excluded, got %d entries", len(scores))
	}
}

func TestCreditedSubmissionPrefersMoreCompleteLaterOne(t *testing.T) {
	early := sub(5*time.Minute, models.SubmissionPassed, tok(0, models.TokenCorrect, 50))
	later := sub(30*time.Minute, models.SubmissionPassed,
		tok(0, models.TokenCorrect, 50), tok(1, models.TokenCorrect, 50))
	equal := sub(45*time.Minute, models.SubmissionPassed,
		tok(0, models.TokenCorrect, 50), tok(1, models.TokenCorrect, 50))

	got := creditedSubmission([]models.Submission{early, later, equal})
	if got == nil || !got.Timestamp.Equal(later.Timestamp) {
		t.Fatalf("expected the later, more complete submission to be credited")
	}

	// With equal completeness the earlier submission keeps the credit.
	got = creditedSubmission([]models.Submission{later, equal})
	if got == nil || !got.Timestamp.Equal(later.Timestamp) {
		t.Fatalf("equal completeness must not displace the earlier candidate")
	}
}

func TestNeedsRecompute(t *testing.T) {
	cached := &models.Leaderboard{BoardID: "b", Timestamp: base}

	if NeedsRecompute(base, cached) {
		t.Error("equal timestamp must not trigger recompute")
	}
	if NeedsRecompute(base.Add(-time.Second), cached) {
		t.Error("older event must not trigger recompute")
	}
	if !NeedsRecompute(base.Add(time.Second), cached) {
		t.Error("newer event must trigger recompute")
	}
	if !NeedsRecompute(base, nil) {
		t.Error("missing cache entry must trigger recompute")
	}
}

func TestTeamBoardScoreSumsMatchingProblemsOnly(t *testing.T) {
	problems := []models.Problem{
		{TeamID: "t1", BoardID: "b1", Score: 40},
		{TeamID: "t1", BoardID: "b1", Score: 60},
		{TeamID: "t1", BoardID: "b2", Score: 500},
		{TeamID: "t2", BoardID: "b1", Score: 75},
	}

	if got := TeamBoardScore("t1", "b1", problems); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
	if got := TeamBoardScore("t3", "b1", problems); got != 0 {
		t.Errorf("expected 0 for unknown team, got %d", got)
	}
}

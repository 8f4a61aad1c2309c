package scoring

import (
	"fmt"
	"sort"
	"time"

	"challengeboard/internal/models"
)

// ChallengeLookup resolves a challenge link id against the challenge
// catalogue. A miss returns nil; affected problems are excluded from
// counts rather than failing the whole board.
type ChallengeLookup func(linkID string) *models.Challenge

// BuildInput is the consistent snapshot one board recompute operates on.
type BuildInput struct {
	Game           models.Game
	Board          models.Board
	Teams          map[string]models.Team
	TeamBoards     map[string]models.TeamBoard
	ProblemsByTeam map[string][]models.Problem
	Challenges     ChallengeLookup
}

// BuildLeaderboard turns one board's raw problems and submissions into the
// fully ranked score list. Teams with a total score of zero or less are
// excluded entirely, as are teams missing from the team snapshot and
// disabled teams.
func BuildLeaderboard(in BuildInput) []models.LeaderboardScore {
	scores := make([]models.LeaderboardScore, 0, len(in.ProblemsByTeam))
	tag := in.Game.AnonymizeTag()

	for teamID, problems := range in.ProblemsByTeam {
		team, ok := in.Teams[teamID]
		if !ok || team.Disabled {
			continue
		}

		entry := models.LeaderboardScore{
			TeamID:         teamID,
			Name:           team.Name,
			AnonymizedName: fmt.Sprintf("%s-%s-%d", team.Organization, tag, team.Number),
			Organization:   team.Organization,
			Badges:         team.Badges,
		}

		if tb, ok := in.TeamBoards[teamID]; ok {
			entry.Start = tb.Start
			entry.MaxMinutes = tb.MaxMinutes(&in.Board)
		} else {
			entry.MaxMinutes = in.Board.MaxMinutes
		}

		for i := range problems {
			p := &problems[i]
			entry.Score += p.Score

			if p.Score > 0 {
				if credited := creditedSubmission(p.Submissions); credited != nil {
					entry.DurationMS += credited.Timestamp.Sub(p.Start).Milliseconds()
				}
			}

			ch := lookupChallenge(in.Challenges, p.ChallengeLinkID)
			if ch == nil {
				continue
			}
			entry.ProblemCount++
			switch {
			case p.Score >= ch.MaxPoints && ch.MaxPoints > 0:
				entry.SuccessCount++
			case p.Score == 0 && p.Attempted():
				entry.FailureCount++
			case p.Score > 0:
				entry.PartialCount++
			}
		}

		if entry.Score <= 0 {
			continue
		}
		scores = append(scores, entry)
	}

	sortScores(scores)
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores
}

// sortScores applies the tie-break chain: score descending, duration
// ascending, success count ascending, display name ascending. The
// ascending success count is intentional (carried over behavior).
func sortScores(scores []models.LeaderboardScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DurationMS != b.DurationMS {
			return a.DurationMS < b.DurationMS
		}
		if a.SuccessCount != b.SuccessCount {
			return a.SuccessCount < b.SuccessCount
		}
		return a.Name < b.Name
	})
}

// creditedSubmission selects the single submission a scoring problem's
// duration is charged to: the earliest submission, superseded by any later
// one whose correct-token percentage is strictly higher. A later, more
// complete submission therefore wins over an earlier partial one.
func creditedSubmission(subs []models.Submission) *models.Submission {
	if len(subs) == 0 {
		return nil
	}
	ordered := make([]models.Submission, len(subs))
	copy(ordered, subs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	candidate := ordered[0]
	best := candidate.CorrectPercent()
	for _, sub := range ordered[1:] {
		if pct := sub.CorrectPercent(); pct > best {
			candidate = sub
			best = pct
		}
	}
	return &candidate
}

func lookupChallenge(lookup ChallengeLookup, linkID *string) *models.Challenge {
	if lookup == nil || linkID == nil || *linkID == "" {
		return nil
	}
	return lookup(*linkID)
}

// LatestEvent picks the newer of two event timestamps; zero values lose.
func LatestEvent(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

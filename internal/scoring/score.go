package scoring

import "challengeboard/internal/models"

// TeamBoardScore sums the scores of one team's problems on one board.
// This is the aggregator's definition of a team's total; the leaderboard
// builder recomputes the same sum from raw problems rather than trusting
// the cached TeamBoard field.
func TeamBoardScore(teamID, boardID string, problems []models.Problem) int {
	total := 0
	for _, p := range problems {
		if p.TeamID == teamID && p.BoardID == boardID {
			total += p.Score
		}
	}
	return total
}

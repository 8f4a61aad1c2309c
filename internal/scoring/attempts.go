package scoring

import (
	"sort"

	"challengeboard/internal/models"
)

// AttemptsAtCurrentStage reports how many submissions count against the
// limit for the stage the team is currently stuck on.
//
// Submission limits apply per unsolved stage, not globally: a team that
// solves stage 1 quickly and struggles only on stage 2 is evaluated only
// against stage 2's incorrect count. For single-stage challenges every
// graded (non-pending) submission counts. Once every stage is solved the
// function returns maxSubmissions as an exhausted sentinel.
//
// Pure function: no side effects, no I/O.
func AttemptsAtCurrentStage(maxSubmissions int, multiStage bool, tokenCount int, history []models.Submission) int {
	if maxSubmissions <= 0 || len(history) == 0 {
		return 0
	}

	if !multiStage {
		graded := 0
		for _, s := range history {
			if s.Status != models.SubmissionPending {
				graded++
			}
		}
		return graded
	}

	ordered := make([]models.Submission, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	incorrect := make([]int, tokenCount)
	stage := 0

	for _, sub := range ordered {
		tokens := make([]models.TokenResult, len(sub.Tokens))
		copy(tokens, sub.Tokens)
		sort.SliceStable(tokens, func(i, j int) bool {
			return tokens[i].Index < tokens[j].Index
		})

		for _, tok := range tokens {
			if tok.Index < 0 || tok.Index >= tokenCount {
				continue
			}
			switch tok.Status {
			case models.TokenIncorrect:
				incorrect[tok.Index]++
			case models.TokenCorrect:
				// Progress is monotonic: a re-solved earlier stage
				// never moves the pointer backwards.
				if tok.Index+1 > stage {
					stage = tok.Index + 1
				}
			}
		}
	}

	if stage >= tokenCount {
		// Fully solved: report the limit so callers treat the
		// challenge as having no attempts left to spend.
		return maxSubmissions
	}
	return incorrect[stage]
}

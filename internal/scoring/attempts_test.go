package scoring

import (
	"testing"
	"time"

	"challengeboard/internal/models"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func sub(at time.Duration, status models.SubmissionStatus, tokens ...models.TokenResult) models.Submission {
	return models.Submission{
		Timestamp: base.Add(at),
		Status:    status,
		Tokens:    tokens,
	}
}

func tok(index int, status models.TokenStatus, percent int) models.TokenResult {
	return models.TokenResult{Index: index, Status: status, Percent: percent}
}

func TestAttemptsUnlimitedOrEmpty(t *testing.T) {
	history := []models.Submission{sub(time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0))}

	if got := AttemptsAtCurrentStage(0, true, 2, history); got != 0 {
		t.Errorf("maxSubmissions=0: expected 0, got %d", got)
	}
	if got := AttemptsAtCurrentStage(-1, false, 1, history); got != 0 {
		t.Errorf("maxSubmissions=-1: expected 0, got %d", got)
	}
	if got := AttemptsAtCurrentStage(3, true, 2, nil); got != 0 {
		t.Errorf("empty history: expected 0, got %d", got)
	}
}

func TestAttemptsSingleStageCountsGradedOnly(t *testing.T) {
	history := []models.Submission{
		sub(1*time.Minute, models.SubmissionFailed),
		sub(2*time.Minute, models.SubmissionPending),
		sub(3*time.Minute, models.SubmissionFailed),
		sub(4*time.Minute, models.SubmissionPassed),
	}

	if got := AttemptsAtCurrentStage(5, false, 1, history); got != 3 {
		t.Errorf("expected 3 graded attempts, got %d", got)
	}
}

func TestAttemptsMultiStageIsolation(t *testing.T) {
	// Two incorrect then one correct at stage 0, then one incorrect at
	// stage 1: only the stage-1 incorrect counts.
	history := []models.Submission{
		sub(1*time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0)),
		sub(2*time.Minute, models.SubmissionFailed, tok(0, models.TokenIncorrect, 0)),
		sub(3*time.Minute, models.SubmissionFailed, tok(0, models.TokenCorrect, 50)),
		sub(4*time.Minute, models.SubmissionFailed, tok(0, models.TokenCorrect, 50), tok(1, models.TokenIncorrect, 0)),
	}

	if got := AttemptsAtCurrentStage(3, true, 2, history); got != 1 {
		t.Errorf("expected 1 attempt at stage 1, got %d", got)
	}
}

func TestAttemptsMultiStageCompletionSentinel(t *testing.T) {
	history := []models.Submission{
		sub(1*time.Minute, models.SubmissionPassed,
			tok(0, models.TokenCorrect, 50), tok(1, models.TokenCorrect, 50)),
	}

	if got := AttemptsAtCurrentStage(3, true, 2, history); got != 3 {
		t.Errorf("expected sentinel 3 after full solve, got %d", got)
	}
}

func TestAttemptsMultiStageUnorderedHistory(t *testing.T) {
	// History arrives out of timestamp order; the walk must still process
	// submissions chronologically.
	history := []models.Submission{
		sub(4*time.Minute, models.SubmissionFailed, tok(1, models.TokenIncorrect, 0)),
		sub(1*time.Minute, models.SubmissionFailed, tok(0, models.TokenCorrect, 50)),
		sub(6*time.Minute, models.SubmissionFailed, tok(1, models.TokenIncorrect, 0)),
	}

	if got := AttemptsAtCurrentStage(5, true, 2, history); got != 2 {
		t.Errorf("expected 2 incorrect attempts at stage 1, got %d", got)
	}
}

func TestAttemptsIgnoresOutOfRangeTokenIndexes(t *testing.T) {
	history := []models.Submission{
		sub(1*time.Minute, models.SubmissionFailed,
			tok(-1, models.TokenIncorrect, 0),
			tok(5, models.TokenIncorrect, 0),
			tok(0, models.TokenIncorrect, 0)),
	}

	if got := AttemptsAtCurrentStage(3, true, 2, history); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

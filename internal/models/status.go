package models

import "strings"

// ProblemStatus is the lifecycle state of a team's problem instance.
type ProblemStatus string

const (
	ProblemRegistered ProblemStatus = "registered"
	ProblemReady      ProblemStatus = "ready"
	ProblemSuccess    ProblemStatus = "success"
	ProblemFailure    ProblemStatus = "failure"
	ProblemError      ProblemStatus = "error"
)

// SubmissionStatus is the graded outcome of one submission.
type SubmissionStatus string

const (
	SubmissionPassed  SubmissionStatus = "passed"
	SubmissionFailed  SubmissionStatus = "failed"
	SubmissionPending SubmissionStatus = "pending"
)

// TokenStatus is the graded outcome of a single sub-flag result.
type TokenStatus string

const (
	TokenCorrect   TokenStatus = "correct"
	TokenIncorrect TokenStatus = "incorrect"
	TokenPending   TokenStatus = "pending"
)

// ParseProblemStatus normalizes an externally supplied status string.
// Matching is case-insensitive; unknown values map to ProblemRegistered.
func ParseProblemStatus(s string) ProblemStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready":
		return ProblemReady
	case "success":
		return ProblemSuccess
	case "failure":
		return ProblemFailure
	case "error":
		return ProblemError
	default:
		return ProblemRegistered
	}
}

// ParseSubmissionStatus normalizes an externally supplied status string.
func ParseSubmissionStatus(s string) SubmissionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed":
		return SubmissionPassed
	case "failed":
		return SubmissionFailed
	default:
		return SubmissionPending
	}
}

// ParseTokenStatus normalizes an externally supplied token status string.
func ParseTokenStatus(s string) TokenStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return TokenCorrect
	case "incorrect":
		return TokenIncorrect
	default:
		return TokenPending
	}
}

package models

import "testing"

func TestParseStatusesAreCaseInsensitive(t *testing.T) {
	if got := ParseProblemStatus("  SUCCESS "); got != ProblemSuccess {
		t.Errorf("expected success, got %q", got)
	}
	if got := ParseProblemStatus("bogus"); got != ProblemRegistered {
		t.Errorf("unknown status must default to registered, got %q", got)
	}
	if got := ParseSubmissionStatus("Passed"); got != SubmissionPassed {
		t.Errorf("expected passed, got %q", got)
	}
	if got := ParseSubmissionStatus(""); got != SubmissionPending {
		t.Errorf("empty must default to pending, got %q", got)
	}
	if got := ParseTokenStatus("InCorrect"); got != TokenIncorrect {
		t.Errorf("expected incorrect, got %q", got)
	}
}

func TestAnonymizeTag(t *testing.T) {
	solo := Game{MaxTeamSize: 1}
	if solo.AnonymizeTag() != "Player" {
		t.Errorf("solo game should tag Player, got %q", solo.AnonymizeTag())
	}
	squad := Game{MaxTeamSize: 5}
	if squad.AnonymizeTag() != "Team" {
		t.Errorf("team game should tag Team, got %q", squad.AnonymizeTag())
	}
}

func TestTeamBoardMaxMinutesOverride(t *testing.T) {
	board := Board{MaxMinutes: 480}
	tb := TeamBoard{}
	if tb.MaxMinutes(&board) != 480 {
		t.Errorf("expected board default 480, got %d", tb.MaxMinutes(&board))
	}
	override := 60
	tb.OverrideMaxMinutes = &override
	if tb.MaxMinutes(&board) != 60 {
		t.Errorf("expected override 60, got %d", tb.MaxMinutes(&board))
	}
}

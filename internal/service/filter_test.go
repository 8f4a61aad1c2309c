package service

import (
	"testing"

	"challengeboard/internal/models"
)

func sampleBoard() *models.Leaderboard {
	return &models.Leaderboard{
		BoardID: "b1",
		Scores: []models.LeaderboardScore{
			{Rank: 1, TeamID: "t1", Name: "alpha", AnonymizedName: "acme-Team-1", Organization: "acme", Badges: "finalist sponsor", Score: 300, DurationMS: 100},
			{Rank: 2, TeamID: "t2", Name: "bravo", AnonymizedName: "umbrella-Team-2", Organization: "umbrella", Score: 200, DurationMS: 50},
			{Rank: 3, TeamID: "t3", Name: "charlie", AnonymizedName: "acme-Team-3", Organization: "acme", Score: 100, DurationMS: 25},
		},
	}
}

func TestRenderAnonymizesForRegularViewers(t *testing.T) {
	view := Render(sampleBoard(), Filter{}, Viewer{TeamID: "t2"}, true)

	if view.Scores[0].Name != "acme-Team-1" {
		t.Errorf("foreign team must be anonymized, got %q", view.Scores[0].Name)
	}
	if view.Scores[1].Name != "bravo" {
		t.Errorf("own team must keep its real name, got %q", view.Scores[1].Name)
	}
}

func TestRenderKeepsRealNamesForElevatedViewers(t *testing.T) {
	view := Render(sampleBoard(), Filter{}, Viewer{Elevated: true}, true)
	for i, s := range view.Scores {
		if s.Name == s.AnonymizedName {
			t.Errorf("entry %d unexpectedly anonymized for elevated viewer", i)
		}
	}
}

func TestRenderSearchCannotDeAnonymize(t *testing.T) {
	// Searching a hidden real name must find nothing: anonymization is
	// applied before the term match.
	view := Render(sampleBoard(), Filter{Term: "alpha"}, Viewer{TeamID: "t2"}, true)
	if len(view.Scores) != 0 {
		t.Fatalf("real-name probe matched %d anonymized entries", len(view.Scores))
	}

	// The anonymized tag is what the viewer can search by.
	view = Render(sampleBoard(), Filter{Term: "acme-team"}, Viewer{TeamID: "t2"}, true)
	if len(view.Scores) != 2 {
		t.Errorf("expected 2 anonymized matches, got %d", len(view.Scores))
	}
}

func TestRenderDoesNotMutateCachedEntry(t *testing.T) {
	cached := sampleBoard()
	Render(cached, Filter{Term: "nothing", Sort: "name"}, Viewer{}, true)

	if cached.Scores[0].Name != "alpha" || len(cached.Scores) != 3 {
		t.Fatalf("render mutated the cached leaderboard: %+v", cached.Scores)
	}
}

func TestRenderKeyValueFilter(t *testing.T) {
	view := Render(sampleBoard(), Filter{Key: "org", Value: "ACME"}, Viewer{Elevated: true}, false)
	if len(view.Scores) != 2 {
		t.Errorf("org filter: expected 2, got %d", len(view.Scores))
	}

	view = Render(sampleBoard(), Filter{Key: "badge", Value: "finalist"}, Viewer{Elevated: true}, false)
	if len(view.Scores) != 1 || view.Scores[0].TeamID != "t1" {
		t.Errorf("badge filter: unexpected result %+v", view.Scores)
	}
}

func TestRenderSortAndPagination(t *testing.T) {
	view := Render(sampleBoard(), Filter{Sort: "duration", Skip: 1, Take: 1}, Viewer{Elevated: true}, false)
	if view.Total != 3 {
		t.Errorf("Total must reflect the pre-pagination count, got %d", view.Total)
	}
	if len(view.Scores) != 1 || view.Scores[0].TeamID != "t2" {
		t.Errorf("expected the middle entry by duration, got %+v", view.Scores)
	}

	view = Render(sampleBoard(), Filter{Skip: 10}, Viewer{Elevated: true}, false)
	if len(view.Scores) != 0 {
		t.Errorf("skip past the end must return empty, got %d", len(view.Scores))
	}
}

package service

import (
	"sort"
	"strings"

	"challengeboard/internal/models"
)

// Viewer is the already-authorized identity a view is rendered for.
// Elevated viewers (moderators, observers) see real team names.
type Viewer struct {
	TeamID   string
	Elevated bool
}

// Filter is the caller-supplied shaping of a leaderboard view.
type Filter struct {
	Term  string `query:"term" validate:"omitempty,max=100"`
	Key   string `query:"key" validate:"omitempty,oneof=org badge"`
	Value string `query:"value" validate:"omitempty,max=100"`
	Sort  string `query:"sort" validate:"omitempty,oneof=rank score duration name"`
	Skip  int    `query:"skip" validate:"min=0"`
	Take  int    `query:"take" validate:"min=0,max=500"`
}

// Render produces a caller-specific view of a cached leaderboard: clone,
// anonymize, search, key/value filter, sort override, then pagination.
//
// Anonymization runs before search on purpose: matching always happens
// against the names the viewer would see, so a hidden name cannot be
// probed by trial-and-error term queries. The cached entry is never
// mutated.
func Render(lb *models.Leaderboard, f Filter, v Viewer, anonymize bool) *models.Leaderboard {
	view := *lb
	view.Scores = append([]models.LeaderboardScore(nil), lb.Scores...)

	if anonymize {
		for i := range view.Scores {
			entry := &view.Scores[i]
			if v.Elevated || (v.TeamID != "" && v.TeamID == entry.TeamID) {
				continue
			}
			entry.Name = entry.AnonymizedName
		}
	}

	if term := strings.ToLower(strings.TrimSpace(f.Term)); term != "" {
		view.Scores = filterSlice(view.Scores, func(s models.LeaderboardScore) bool {
			return strings.Contains(strings.ToLower(s.Name), term)
		})
	}

	switch f.Key {
	case "org":
		view.Scores = filterSlice(view.Scores, func(s models.LeaderboardScore) bool {
			return strings.EqualFold(s.Organization, f.Value)
		})
	case "badge":
		view.Scores = filterSlice(view.Scores, func(s models.LeaderboardScore) bool {
			return hasBadge(s.Badges, f.Value)
		})
	}

	switch f.Sort {
	case "score":
		sort.SliceStable(view.Scores, func(i, j int) bool {
			return view.Scores[i].Score > view.Scores[j].Score
		})
	case "duration":
		sort.SliceStable(view.Scores, func(i, j int) bool {
			return view.Scores[i].DurationMS < view.Scores[j].DurationMS
		})
	case "name":
		sort.SliceStable(view.Scores, func(i, j int) bool {
			return view.Scores[i].Name < view.Scores[j].Name
		})
	}

	view.Total = len(view.Scores)
	view.Scores = pageSlice(view.Scores, f.Skip, f.Take)
	return &view
}

// hasBadge matches one tag inside a space-delimited badge list.
func hasBadge(badges, want string) bool {
	for _, b := range strings.Fields(badges) {
		if strings.EqualFold(b, want) {
			return true
		}
	}
	return false
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := in[:0:0]
	for _, item := range in {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func pageSlice[T any](in []T, skip, take int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(in) {
		return []T{}
	}
	in = in[skip:]
	if take > 0 && take < len(in) {
		in = in[:take]
	}
	return in
}

package analytics

import (
	"sort"

	"crickalytics/pkg/contracts/domain"
)

// SummaryFilter narrows the match summary table. An empty field does not
// filter. Teams match when any of Team1, Team2 or the winner is selected.
type SummaryFilter struct {
	Years  []int
	Teams  []string
	Venues []string
}

func (f SummaryFilter) apply(rows []domain.MatchSummary) []domain.MatchSummary {
	years := make(map[int]struct{}, len(f.Years))
	for _, y := range f.Years {
		years[y] = struct{}{}
	}
	teams := toSet(f.Teams)
	venues := toSet(f.Venues)

	out := make([]domain.MatchSummary, 0, len(rows))
	for _, m := range rows {
		if len(years) > 0 {
			if _, ok := years[m.Year]; !ok {
				continue
			}
		}
		if len(teams) > 0 && !anyIn(teams, m.Team1, m.Team2, m.Winner) {
			continue
		}
		if len(venues) > 0 && !anyIn(venues, m.Venue) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Count is a label with an occurrence count.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// YearCount is the number of distinct matches played in a year.
type YearCount struct {
	Year    int `json:"year"`
	Matches int `json:"matches"`
}

// MatchesPerYear counts distinct matches per year. Matches with an
// unparseable date are left out.
func (e *Engine) MatchesPerYear(f SummaryFilter) []YearCount {
	ids := make(map[int]map[int64]struct{})
	for _, m := range f.apply(e.snap.MatchSummaries) {
		if m.Year == 0 {
			continue
		}
		set, ok := ids[m.Year]
		if !ok {
			set = make(map[int64]struct{})
			ids[m.Year] = set
		}
		set[m.MatchID] = struct{}{}
	}
	rows := make([]YearCount, 0, len(ids))
	for y, set := range ids {
		rows = append(rows, YearCount{Year: y, Matches: len(set)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// TopWinners counts wins per team and keeps the n most successful.
func (e *Engine) TopWinners(f SummaryFilter, n int) []Count {
	counts := make(map[string]int)
	for _, m := range f.apply(e.snap.MatchSummaries) {
		if m.Winner != "" {
			counts[m.Winner]++
		}
	}
	return truncate(sortCounts(counts), n)
}

// TopVenues counts matches per venue and keeps the n busiest.
func (e *Engine) TopVenues(f SummaryFilter, n int) []Count {
	counts := make(map[string]int)
	for _, m := range f.apply(e.snap.MatchSummaries) {
		if m.Venue != "" {
			counts[m.Venue]++
		}
	}
	return truncate(sortCounts(counts), n)
}

// TossOutcome counts matches for one toss choice and result text.
type TossOutcome struct {
	Choice string `json:"toss_choice"`
	Result string `json:"result"`
	Count  int    `json:"count"`
}

// TossImpact counts matches per toss choice and result text, ordered by
// choice then result.
func (e *Engine) TossImpact(f SummaryFilter) []TossOutcome {
	type key struct{ choice, result string }
	counts := make(map[key]int)
	for _, m := range f.apply(e.snap.MatchSummaries) {
		if m.TossChoice == "" || m.ResultText == "" {
			continue
		}
		counts[key{m.TossChoice, m.ResultText}]++
	}
	rows := make([]TossOutcome, 0, len(counts))
	for k, c := range counts {
		rows = append(rows, TossOutcome{Choice: k.choice, Result: k.result, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Choice != rows[j].Choice {
			return rows[i].Choice < rows[j].Choice
		}
		return rows[i].Result < rows[j].Result
	})
	return rows
}

func sortCounts(counts map[string]int) []Count {
	rows := make([]Count, 0, len(counts))
	for label, c := range counts {
		rows = append(rows, Count{Label: label, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func anyIn(set map[string]struct{}, values ...string) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Package entities derives the selectable entity lists (bowlers, batsmen,
// teams, matches, venues, years) from a dataset snapshot and validates filter
// input against them.
package entities

import (
	"sort"
	"strconv"

	"crickalytics/internal/dataset"
)

// TopN bounds.
const (
	DefaultTopN = 10
	MinTopN     = 5
	MaxTopN     = 50
)

// MaxOvers is the last over of an ODI innings.
const MaxOvers = 50

// Resolver holds the entity lists of one snapshot. It is immutable and safe
// for concurrent use.
type Resolver struct {
	snap *dataset.Snapshot

	bowlers          []string
	batsmen          []string
	teams            []string
	matches          []int64
	partnershipTeams []string
	years            []int
	venues           []string
	summaryTeams     []string

	bowlerSet  map[string]struct{}
	batsmanSet map[string]struct{}
	teamSet    map[string]struct{}
	matchSet   map[int64]struct{}
	venueSet   map[string]struct{}
	yearSet    map[int]struct{}
	summarySet map[string]struct{}
}

// NewResolver computes every entity list of snap.
func NewResolver(snap *dataset.Snapshot) *Resolver {
	r := &Resolver{snap: snap}

	wickets := make(map[string]int)
	teams := make(map[string]struct{})
	for _, b := range snap.Bowling {
		if b.PlayerName != "" {
			wickets[b.PlayerName] += b.Wickets
		}
		teams[b.Team] = struct{}{}
	}
	bowlers := make(map[string]struct{})
	for name, w := range wickets {
		if w > 0 {
			bowlers[name] = struct{}{}
		}
	}
	r.bowlers, r.bowlerSet = sortedKeys(bowlers), bowlers
	r.teams, r.teamSet = sortedKeys(teams), teams

	batsmen := make(map[string]struct{})
	partnershipTeams := make(map[string]struct{})
	for _, p := range snap.Partnerships {
		addName(batsmen, p.Player1Name)
		addName(batsmen, p.Player2Name)
		partnershipTeams[p.Team] = struct{}{}
	}
	for _, f := range snap.FallOfWickets {
		addName(batsmen, f.PlayerName)
	}
	r.batsmen, r.batsmanSet = sortedKeys(batsmen), batsmen
	r.partnershipTeams = sortedKeys(partnershipTeams)

	bowled := make(map[int64]struct{})
	for _, b := range snap.Bowling {
		if b.Overs <= MaxOvers {
			bowled[b.MatchID] = struct{}{}
		}
	}
	matches := make(map[int64]struct{})
	for _, f := range snap.FallOfWickets {
		if _, ok := bowled[f.MatchID]; ok && f.Over <= MaxOvers {
			matches[f.MatchID] = struct{}{}
		}
	}
	r.matchSet = matches
	r.matches = make([]int64, 0, len(matches))
	for id := range matches {
		r.matches = append(r.matches, id)
	}
	sort.Slice(r.matches, func(i, j int) bool { return r.matches[i] < r.matches[j] })

	years := make(map[int]struct{})
	venues := make(map[string]struct{})
	summaryTeams := make(map[string]struct{})
	for _, m := range snap.MatchSummaries {
		if m.Year > 0 {
			years[m.Year] = struct{}{}
		}
		addName(venues, m.Venue)
		addName(summaryTeams, m.Team1)
		addName(summaryTeams, m.Team2)
		addName(summaryTeams, m.Winner)
	}
	r.yearSet = years
	r.years = make([]int, 0, len(years))
	for y := range years {
		r.years = append(r.years, y)
	}
	sort.Ints(r.years)
	r.venues, r.venueSet = sortedKeys(venues), venues
	r.summaryTeams, r.summarySet = sortedKeys(summaryTeams), summaryTeams

	return r
}

// Snapshot returns the snapshot the lists were built from.
func (r *Resolver) Snapshot() *dataset.Snapshot { return r.snap }

// Bowlers returns named bowlers with at least one wicket.
func (r *Resolver) Bowlers() []string { return clone(r.bowlers) }

// Batsmen returns every named player in partnerships or fall-of-wicket rows.
func (r *Resolver) Batsmen() []string { return clone(r.batsmen) }

// Teams returns the distinct bowling teams.
func (r *Resolver) Teams() []string { return clone(r.teams) }

// PartnershipTeams returns the distinct batting teams of partnership rows.
func (r *Resolver) PartnershipTeams() []string { return clone(r.partnershipTeams) }

// Matches returns the analyzable match ids in ascending order.
func (r *Resolver) Matches() []int64 {
	out := make([]int64, len(r.matches))
	copy(out, r.matches)
	return out
}

// Years returns the distinct match years of the summary table.
func (r *Resolver) Years() []int {
	out := make([]int, len(r.years))
	copy(out, r.years)
	return out
}

// Venues returns the distinct summary venues.
func (r *Resolver) Venues() []string { return clone(r.venues) }

// SummaryTeams returns every team named in the summary table.
func (r *Resolver) SummaryTeams() []string { return clone(r.summaryTeams) }

// Opponents returns every team that met team, whichever side bowled.
func (r *Resolver) Opponents(team string) []string {
	opp := make(map[string]struct{})
	for _, b := range r.snap.Bowling {
		switch team {
		case b.Team:
			opp[b.Opposition] = struct{}{}
		case b.Opposition:
			opp[b.Team] = struct{}{}
		}
	}
	return sortedKeys(opp)
}

// ValidateBowler checks name against Bowlers.
func (r *Resolver) ValidateBowler(name string) error {
	return check(r.bowlerSet, "bowler", name)
}

// ValidateBatsman checks name against Batsmen.
func (r *Resolver) ValidateBatsman(name string) error {
	return check(r.batsmanSet, "batsman", name)
}

// ValidateTeam checks name against Teams.
func (r *Resolver) ValidateTeam(field, name string) error {
	return check(r.teamSet, field, name)
}

// ValidateOpponent checks that opponent met team.
func (r *Resolver) ValidateOpponent(team, opponent string) error {
	for _, o := range r.Opponents(team) {
		if o == opponent {
			return nil
		}
	}
	return &InvalidFilterError{Field: "team2", Value: opponent}
}

// ValidateMatch checks id against Matches.
func (r *Resolver) ValidateMatch(id int64) error {
	if _, ok := r.matchSet[id]; !ok {
		return &InvalidFilterError{Field: "match_id", Value: strconv.FormatInt(id, 10)}
	}
	return nil
}

// FilterKnownTeams keeps the values that are known bowling teams and returns
// the rest separately. Order is preserved and duplicates are dropped.
func (r *Resolver) FilterKnownTeams(values []string) (known, dropped []string) {
	return partition(r.teamSet, values)
}

// FilterKnownPartnershipTeams is FilterKnownTeams over partnership teams.
func (r *Resolver) FilterKnownPartnershipTeams(values []string) (known, dropped []string) {
	set := make(map[string]struct{}, len(r.partnershipTeams))
	for _, t := range r.partnershipTeams {
		set[t] = struct{}{}
	}
	return partition(set, values)
}

// FilterKnownSummaryTeams is FilterKnownTeams over summary teams.
func (r *Resolver) FilterKnownSummaryTeams(values []string) (known, dropped []string) {
	return partition(r.summarySet, values)
}

// FilterKnownVenues keeps known summary venues.
func (r *Resolver) FilterKnownVenues(values []string) (known, dropped []string) {
	return partition(r.venueSet, values)
}

// FilterKnownYears keeps known summary years.
func (r *Resolver) FilterKnownYears(values []int) (known, dropped []int) {
	seen := make(map[int]struct{}, len(values))
	for _, y := range values {
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		if _, ok := r.yearSet[y]; ok {
			known = append(known, y)
		} else {
			dropped = append(dropped, y)
		}
	}
	return known, dropped
}

// ClampTopN bounds n to [MinTopN, MaxTopN]. Zero or a negative value selects
// DefaultTopN.
func ClampTopN(n int) int {
	switch {
	case n <= 0:
		return DefaultTopN
	case n < MinTopN:
		return MinTopN
	case n > MaxTopN:
		return MaxTopN
	}
	return n
}

func check(set map[string]struct{}, field, value string) error {
	if _, ok := set[value]; !ok || value == "" {
		return &InvalidFilterError{Field: field, Value: value}
	}
	return nil
}

func partition(set map[string]struct{}, values []string) (known, dropped []string) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			known = append(known, v)
		} else {
			dropped = append(dropped, v)
		}
	}
	return known, dropped
}

func addName(set map[string]struct{}, name string) {
	if name != "" {
		set[name] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

package analytics

import (
	"math"
	"sort"

	"crickalytics/internal/dataset"
)

// OverScore is the runs scored in one over and the running total.
type OverScore struct {
	Over       int `json:"over"`
	Runs       int `json:"runs"`
	Cumulative int `json:"cumulative"`
}

// WicketMarker places a dismissal on the innings curve.
type WicketMarker struct {
	Over       int    `json:"over"`
	Cumulative int    `json:"cumulative"`
	Runs       int    `json:"runs"`
	Player     string `json:"player"`
	Wicket     int    `json:"wicket"`
}

// InningsCurve is the cumulative score of one batting team.
type InningsCurve struct {
	Team    string         `json:"team"`
	Overs   []OverScore    `json:"overs"`
	Wickets []WicketMarker `json:"wickets"`
}

// Total returns the final cumulative score.
func (c InningsCurve) Total() int {
	if len(c.Overs) == 0 {
		return 0
	}
	return c.Overs[len(c.Overs)-1].Cumulative
}

// InningsProgression rebuilds each innings of a match from the runs its
// bowlers conceded. The batting team is the bowling opposition. Overs are
// numbered floor(overs)+1 and reindexed to 1..InningsOvers with zero fill.
// Teams appear in the order they first bat in the source rows.
func (e *Engine) InningsProgression(matchID int64) ([]InningsCurve, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColConceded); err != nil {
		return nil, err
	}

	innings := int(e.phases.InningsOvers)
	var order []string
	perTeam := make(map[string][]int)
	for _, b := range e.snap.Bowling {
		if b.MatchID != matchID {
			continue
		}
		runs, ok := perTeam[b.Opposition]
		if !ok {
			runs = make([]int, innings+1)
			perTeam[b.Opposition] = runs
			order = append(order, b.Opposition)
		}
		over := int(math.Floor(b.Overs)) + 1
		if over < 1 || over > innings {
			continue
		}
		runs[over] += b.Conceded
	}

	curves := make([]InningsCurve, 0, len(order))
	index := make(map[string]int, len(order))
	for _, team := range order {
		runs := perTeam[team]
		curve := InningsCurve{Team: team, Overs: make([]OverScore, 0, innings), Wickets: []WicketMarker{}}
		total := 0
		for over := 1; over <= innings; over++ {
			total += runs[over]
			curve.Overs = append(curve.Overs, OverScore{Over: over, Runs: runs[over], Cumulative: total})
		}
		index[team] = len(curves)
		curves = append(curves, curve)
	}

	for _, f := range e.snap.FallOfWickets {
		if f.MatchID != matchID {
			continue
		}
		i, ok := index[f.Team]
		if !ok {
			continue
		}
		over := int(math.Floor(f.Over)) + 1
		if over < 1 || over > innings {
			continue
		}
		curves[i].Wickets = append(curves[i].Wickets, WicketMarker{
			Over:       over,
			Cumulative: curves[i].Overs[over-1].Cumulative,
			Runs:       f.Runs,
			Player:     f.PlayerName,
			Wicket:     f.Wicket,
		})
	}
	for i := range curves {
		w := curves[i].Wickets
		sort.SliceStable(w, func(a, b int) bool { return w[a].Over < w[b].Over })
	}
	return curves, nil
}

// MatchPartnerships lists the partnerships of one match ordered by wicket.
func (e *Engine) MatchPartnerships(matchID int64) ([]PartnershipRow, error) {
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColForWicket, dataset.ColPartnershipRuns); err != nil {
		return nil, err
	}

	rows := make([]PartnershipRow, 0)
	for _, p := range e.snap.Partnerships {
		if p.MatchID == matchID {
			rows = append(rows, partnershipRow(p))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ForWicket < rows[j].ForWicket })
	return rows, nil
}

// BowlerMatchRow summarises one bowler's spell in a match.
type BowlerMatchRow struct {
	Team     string   `json:"team"`
	BowlerID int64    `json:"bowler_id"`
	Bowler   string   `json:"bowler"`
	Overs    float64  `json:"overs"`
	Wickets  int      `json:"wickets"`
	Conceded int      `json:"conceded"`
	Economy  *float64 `json:"economy"`
}

type bowlerKey struct {
	team string
	id   int64
}

// MatchBowlerSummary aggregates per team and bowler: the highest over value,
// summed wickets and conceded runs, and the first recorded economy. Rows are
// ordered by wickets descending, then by first appearance.
func (e *Engine) MatchBowlerSummary(matchID int64) ([]BowlerMatchRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets, dataset.ColConceded, dataset.ColEconomy); err != nil {
		return nil, err
	}

	index := make(map[bowlerKey]int)
	rows := make([]BowlerMatchRow, 0)
	for _, b := range e.snap.Bowling {
		if b.MatchID != matchID {
			continue
		}
		k := bowlerKey{b.Team, b.BowlerID}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, BowlerMatchRow{
				Team:     b.Team,
				BowlerID: b.BowlerID,
				Bowler:   b.PlayerName,
				Overs:    b.Overs,
			})
		}
		r := &rows[i]
		if b.Overs > r.Overs {
			r.Overs = b.Overs
		}
		r.Wickets += b.Wickets
		r.Conceded += b.Conceded
		if r.Economy == nil {
			r.Economy = Optional(b.Economy)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Wickets > rows[j].Wickets })
	return rows, nil
}

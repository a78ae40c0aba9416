package analytics

import (
	"fmt"
	"sort"

	"crickalytics/internal/dataset"
	"crickalytics/pkg/contracts/domain"
)

// DismissalPosition counts how often a batsman fell at one wicket ordinal.
type DismissalPosition struct {
	Wicket  int     `json:"wicket"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// WicketLabel renders a wicket ordinal such as "2nd Wicket".
func WicketLabel(n int) string {
	switch n {
	case 1:
		return "1st Wicket"
	case 2:
		return "2nd Wicket"
	case 3:
		return "3rd Wicket"
	}
	return fmt.Sprintf("%dth Wicket", n)
}

// DismissalPositions counts the batsman's dismissals per wicket ordinal,
// ordered by ordinal. Percent is the share of all the batsman's dismissals.
func (e *Engine) DismissalPositions(batsman string) ([]DismissalPosition, error) {
	if err := e.snap.Require(dataset.TableFallOfWickets, dataset.ColWicket); err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	total := 0
	for _, f := range e.snap.FallOfWickets {
		if f.PlayerName == batsman && batsman != "" {
			counts[f.Wicket]++
			total++
		}
	}

	rows := make([]DismissalPosition, 0, len(counts))
	for w, c := range counts {
		rows = append(rows, DismissalPosition{
			Wicket:  w,
			Label:   WicketLabel(w),
			Count:   c,
			Percent: float64(c) / float64(total) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Wicket < rows[j].Wicket })
	return rows, nil
}

// PartnerRuns is the runs a batsman added with one partner.
type PartnerRuns struct {
	Partner string `json:"partner"`
	Runs    int    `json:"runs"`
}

// TopPartners sums partnership runs per partner of batsman and keeps the n
// most productive. Unresolved partners are skipped.
func (e *Engine) TopPartners(batsman string, n int) ([]PartnerRuns, error) {
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColPartnershipRuns); err != nil {
		return nil, err
	}

	sums := make(map[string]int)
	for _, p := range e.snap.Partnerships {
		var partner string
		switch batsman {
		case "":
			continue
		case p.Player1Name:
			partner = p.Player2Name
		case p.Player2Name:
			partner = p.Player1Name
		default:
			continue
		}
		if partner == "" {
			continue
		}
		sums[partner] += p.Runs
	}

	rows := make([]PartnerRuns, 0, len(sums))
	for name, runs := range sums {
		rows = append(rows, PartnerRuns{Partner: name, Runs: runs})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Runs != rows[j].Runs {
			return rows[i].Runs > rows[j].Runs
		}
		return rows[i].Partner < rows[j].Partner
	})
	return truncate(rows, n), nil
}

// PairRuns is the aggregate of every stand between two players. Player1 is
// always the lexicographically smaller name.
type PairRuns struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Runs    int    `json:"runs"`
}

// Pair renders the pair as "A & B".
func (p PairRuns) Pair() string { return p.Player1 + " & " + p.Player2 }

type pairKey struct{ a, b string }

func canonicalPair(x, y string) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{x, y}
}

// ProlificPairs sums runs per unordered pair of named players and keeps the
// n most productive pairs.
func (e *Engine) ProlificPairs(n int) ([]PairRuns, error) {
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColPartnershipRuns); err != nil {
		return nil, err
	}

	sums := make(map[pairKey]int)
	for _, p := range e.snap.Partnerships {
		if p.Player1Name == "" || p.Player2Name == "" {
			continue
		}
		sums[canonicalPair(p.Player1Name, p.Player2Name)] += p.Runs
	}

	rows := make([]PairRuns, 0, len(sums))
	for k, runs := range sums {
		rows = append(rows, PairRuns{Player1: k.a, Player2: k.b, Runs: runs})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Runs != rows[j].Runs {
			return rows[i].Runs > rows[j].Runs
		}
		return rows[i].Pair() < rows[j].Pair()
	})
	return truncate(rows, n), nil
}

// PartnershipRow is a single partnership with resolved names.
type PartnershipRow struct {
	MatchID   int64  `json:"match_id"`
	Team      string `json:"team"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	ForWicket int    `json:"for_wicket"`
	Runs      int    `json:"runs"`
	Balls     int    `json:"balls"`
}

// Pair renders the pair as "A & B".
func (p PartnershipRow) Pair() string { return p.Player1 + " & " + p.Player2 }

func partnershipRow(p domain.Partnership) PartnershipRow {
	return PartnershipRow{
		MatchID:   p.MatchID,
		Team:      p.Team,
		Player1:   p.Player1Name,
		Player2:   p.Player2Name,
		ForWicket: p.ForWicket,
		Runs:      p.Runs,
		Balls:     p.Balls,
	}
}

// TopPartnerships returns the n highest individual partnerships between
// named players. Ties keep source order.
func (e *Engine) TopPartnerships(n int) ([]PartnershipRow, error) {
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColPartnershipRuns); err != nil {
		return nil, err
	}

	rows := make([]PartnershipRow, 0, len(e.snap.Partnerships))
	for _, p := range e.snap.Partnerships {
		if p.Player1Name == "" || p.Player2Name == "" {
			continue
		}
		rows = append(rows, partnershipRow(p))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Runs > rows[j].Runs })
	return truncate(rows, n), nil
}

// RunRateRow is a partnership with its scoring rate.
type RunRateRow struct {
	PartnershipRow
	RunRate float64 `json:"run_rate"`
}

// RunRates lists partnerships of the given teams that faced at least one
// ball, with runs per hundred balls. A nil teams slice selects every team.
func (e *Engine) RunRates(teams []string) ([]RunRateRow, error) {
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColPartnershipRuns, dataset.ColPartnershipBalls); err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	if teams != nil {
		allowed = make(map[string]struct{}, len(teams))
		for _, t := range teams {
			allowed[t] = struct{}{}
		}
	}

	rows := make([]RunRateRow, 0)
	for _, p := range e.snap.Partnerships {
		if allowed != nil {
			if _, ok := allowed[p.Team]; !ok {
				continue
			}
		}
		rate, ok := RunRate(p.Runs, p.Balls)
		if !ok {
			continue
		}
		rows = append(rows, RunRateRow{PartnershipRow: partnershipRow(p), RunRate: rate})
	}
	return rows, nil
}

func truncate[T any](rows []T, n int) []T {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

package analytics

import (
	"math"
	"sort"

	"crickalytics/internal/dataset"
	"crickalytics/pkg/contracts/domain"
)

// PhaseTeamRow aggregates one team's bowling in one phase.
type PhaseTeamRow struct {
	Phase       domain.Phase `json:"phase"`
	Team        string       `json:"team"`
	Wickets     int          `json:"wickets"`
	Conceded    int          `json:"conceded"`
	MeanEconomy *float64     `json:"mean_economy"`
	Rows        int          `json:"rows"`
}

type phaseTeamKey struct {
	phase domain.Phase
	team  string
}

type phaseAcc struct {
	wickets, conceded, rows int
	economy                 meanAcc
}

// PhaseComparison aggregates wickets, conceded runs and mean economy per
// phase and team. Rows are ordered by phase, then team.
func (e *Engine) PhaseComparison() ([]PhaseTeamRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets, dataset.ColConceded, dataset.ColEconomy); err != nil {
		return nil, err
	}

	groups := make(map[phaseTeamKey]*phaseAcc)
	for _, b := range e.snap.Bowling {
		phase := e.phases.Classify(b.Overs)
		if phase == domain.PhaseNone {
			continue
		}
		k := phaseTeamKey{phase, b.Team}
		acc, ok := groups[k]
		if !ok {
			acc = &phaseAcc{}
			groups[k] = acc
		}
		acc.wickets += b.Wickets
		acc.conceded += b.Conceded
		acc.rows++
		acc.economy.add(b.Economy)
	}

	rows := make([]PhaseTeamRow, 0, len(groups))
	for k, acc := range groups {
		rows = append(rows, PhaseTeamRow{
			Phase:       k.phase,
			Team:        k.team,
			Wickets:     acc.wickets,
			Conceded:    acc.conceded,
			MeanEconomy: Optional(acc.economy.value()),
			Rows:        acc.rows,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Phase != rows[j].Phase {
			return phaseIndex(rows[i].Phase) < phaseIndex(rows[j].Phase)
		}
		return rows[i].Team < rows[j].Team
	})
	return rows, nil
}

// PhaseWicketsRow is summed wickets for one phase and team.
type PhaseWicketsRow struct {
	Phase   domain.Phase `json:"phase"`
	Team    string       `json:"team"`
	Wickets int          `json:"wickets"`
}

// PhaseWickets sums wickets per phase and team.
func (e *Engine) PhaseWickets() ([]PhaseWicketsRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets); err != nil {
		return nil, err
	}

	sums := make(map[phaseTeamKey]int)
	for _, b := range e.snap.Bowling {
		phase := e.phases.Classify(b.Overs)
		if phase == domain.PhaseNone {
			continue
		}
		sums[phaseTeamKey{phase, b.Team}] += b.Wickets
	}

	rows := make([]PhaseWicketsRow, 0, len(sums))
	for k, w := range sums {
		rows = append(rows, PhaseWicketsRow{Phase: k.phase, Team: k.team, Wickets: w})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Phase != rows[j].Phase {
			return phaseIndex(rows[i].Phase) < phaseIndex(rows[j].Phase)
		}
		return rows[i].Team < rows[j].Team
	})
	return rows, nil
}

// TeamPhaseRow is one team's bowling in one phase.
type TeamPhaseRow struct {
	Phase       domain.Phase `json:"phase"`
	Wickets     int          `json:"wickets"`
	MeanEconomy *float64     `json:"mean_economy"`
	Conceded    int          `json:"conceded"`
	Overs       int          `json:"overs"`
}

// TeamPhaseBreakdown returns exactly one row per phase for team, zero-filled
// when the team bowled nothing in a phase.
func (e *Engine) TeamPhaseBreakdown(team string) ([]TeamPhaseRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets, dataset.ColConceded, dataset.ColEconomy); err != nil {
		return nil, err
	}

	accs := make(map[domain.Phase]*phaseAcc, len(domain.Phases))
	for _, p := range domain.Phases {
		accs[p] = &phaseAcc{}
	}
	for _, b := range e.snap.Bowling {
		if b.Team != team {
			continue
		}
		acc, ok := accs[e.phases.Classify(b.Overs)]
		if !ok {
			continue
		}
		acc.wickets += b.Wickets
		acc.conceded += b.Conceded
		acc.rows++
		acc.economy.add(b.Economy)
	}

	rows := make([]TeamPhaseRow, 0, len(domain.Phases))
	for _, p := range domain.Phases {
		acc := accs[p]
		rows = append(rows, TeamPhaseRow{
			Phase:       p,
			Wickets:     acc.wickets,
			MeanEconomy: Optional(acc.economy.value()),
			Conceded:    acc.conceded,
			Overs:       acc.rows,
		})
	}
	return rows, nil
}

// OppositionWickets is a bowler's wickets against one opposition.
type OppositionWickets struct {
	Opposition string `json:"opposition"`
	Wickets    int    `json:"wickets"`
}

// WicketsVsOpposition sums the named bowler's wickets per opposition,
// ordered by opposition.
func (e *Engine) WicketsVsOpposition(bowler string) ([]OppositionWickets, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets); err != nil {
		return nil, err
	}

	sums := make(map[string]int)
	for _, b := range e.snap.Bowling {
		if b.PlayerName == bowler && bowler != "" {
			sums[b.Opposition] += b.Wickets
		}
	}

	rows := make([]OppositionWickets, 0, len(sums))
	for opp, w := range sums {
		rows = append(rows, OppositionWickets{Opposition: opp, Wickets: w})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Opposition < rows[j].Opposition })
	return rows, nil
}

// EconomySummary is the distribution of one bowler's economy rates.
type EconomySummary struct {
	Bowler string    `json:"bowler"`
	Values []float64 `json:"values"`
	Count  int       `json:"count"`
	Min    float64   `json:"min"`
	Q1     float64   `json:"q1"`
	Median float64   `json:"median"`
	Q3     float64   `json:"q3"`
	Max    float64   `json:"max"`
	Mean   float64   `json:"mean"`
}

// EconomyDistribution collects every recorded economy of bowler with its
// five-number summary. Missing economies are skipped. Count is zero when
// nothing was recorded.
func (e *Engine) EconomyDistribution(bowler string) (EconomySummary, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColEconomy); err != nil {
		return EconomySummary{}, err
	}

	out := EconomySummary{Bowler: bowler, Values: []float64{}}
	var acc meanAcc
	for _, b := range e.snap.Bowling {
		if b.PlayerName != bowler || bowler == "" {
			continue
		}
		if math.IsNaN(b.Economy) {
			continue
		}
		acc.add(b.Economy)
		out.Values = append(out.Values, b.Economy)
	}
	out.Count = len(out.Values)
	if out.Count == 0 {
		return out, nil
	}

	sorted := make([]float64, out.Count)
	copy(sorted, out.Values)
	sort.Float64s(sorted)
	out.Min = sorted[0]
	out.Q1 = quantile(sorted, 0.25)
	out.Median = quantile(sorted, 0.5)
	out.Q3 = quantile(sorted, 0.75)
	out.Max = sorted[len(sorted)-1]
	out.Mean = acc.value()
	return out, nil
}

// HeadToHeadRow is the wickets one team took against another.
type HeadToHeadRow struct {
	Team     string `json:"team"`
	Opponent string `json:"opponent"`
	Wickets  int    `json:"wickets"`
}

// HeadToHead returns two rows, team1 against team2 then team2 against team1.
// A side that never bowled at the other reports zero.
func (e *Engine) HeadToHead(team1, team2 string) ([]HeadToHeadRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets); err != nil {
		return nil, err
	}

	rows := []HeadToHeadRow{
		{Team: team1, Opponent: team2},
		{Team: team2, Opponent: team1},
	}
	for _, b := range e.snap.Bowling {
		switch {
		case b.Team == team1 && b.Opposition == team2:
			rows[0].Wickets += b.Wickets
		case b.Team == team2 && b.Opposition == team1:
			rows[1].Wickets += b.Wickets
		}
	}
	return rows, nil
}

// TeamWicketsRow is total wickets by one team.
type TeamWicketsRow struct {
	Team    string `json:"team"`
	Wickets int    `json:"wickets"`
}

// TeamWickets sums wickets per bowling team, ordered by team.
func (e *Engine) TeamWickets() ([]TeamWicketsRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets); err != nil {
		return nil, err
	}
	sums := make(map[string]int)
	for _, b := range e.snap.Bowling {
		sums[b.Team] += b.Wickets
	}
	rows := make([]TeamWicketsRow, 0, len(sums))
	for team, w := range sums {
		rows = append(rows, TeamWicketsRow{Team: team, Wickets: w})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Team < rows[j].Team })
	return rows, nil
}

// TeamComparisonRow compares selected teams on wickets and partnerships.
type TeamComparisonRow struct {
	Team                string   `json:"team"`
	Wickets             int      `json:"wickets"`
	MeanPartnershipRuns *float64 `json:"mean_partnership_runs"`
	Partnerships        int      `json:"partnerships"`
}

// TeamComparison reports total wickets and mean partnership runs (two
// decimals) for each of teams, in the given order.
func (e *Engine) TeamComparison(teams []string) ([]TeamComparisonRow, error) {
	if err := e.snap.Require(dataset.TableBowling, dataset.ColWickets); err != nil {
		return nil, err
	}
	if err := e.snap.Require(dataset.TablePartnerships, dataset.ColPartnershipRuns); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(teams))
	rows := make([]TeamComparisonRow, 0, len(teams))
	for _, t := range teams {
		if _, dup := index[t]; dup {
			continue
		}
		index[t] = len(rows)
		rows = append(rows, TeamComparisonRow{Team: t})
	}

	for _, b := range e.snap.Bowling {
		if i, ok := index[b.Team]; ok {
			rows[i].Wickets += b.Wickets
		}
	}
	runs := make([]meanAcc, len(rows))
	for _, p := range e.snap.Partnerships {
		if i, ok := index[p.Team]; ok {
			runs[i].add(float64(p.Runs))
		}
	}
	for i := range rows {
		rows[i].Partnerships = runs[i].n
		if runs[i].n > 0 {
			rows[i].MeanPartnershipRuns = Optional(Round(runs[i].value(), 2))
		}
	}
	return rows, nil
}

// Overview holds the headline dataset metrics.
type Overview struct {
	Matches int `json:"matches"`
	Players int `json:"players"`
	Wickets int `json:"wickets"`
}

// Overview counts distinct bowling matches, distinct named partnership
// players and total wickets.
func (e *Engine) Overview() Overview {
	matches := make(map[int64]struct{})
	wickets := 0
	for _, b := range e.snap.Bowling {
		matches[b.MatchID] = struct{}{}
		wickets += b.Wickets
	}
	players := make(map[string]struct{})
	for _, p := range e.snap.Partnerships {
		if p.Player1Name != "" {
			players[p.Player1Name] = struct{}{}
		}
		if p.Player2Name != "" {
			players[p.Player2Name] = struct{}{}
		}
	}
	return Overview{Matches: len(matches), Players: len(players), Wickets: wickets}
}

func phaseIndex(p domain.Phase) int {
	for i, q := range domain.Phases {
		if q == p {
			return i
		}
	}
	return len(domain.Phases)
}

package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crickalytics/internal/analytics"
	"crickalytics/internal/dataset"
	"crickalytics/internal/entities"
	"crickalytics/internal/exporter"
	"crickalytics/internal/projector"
	api "crickalytics/pkg/contracts/api/v1"
)

// Default selections used when a request leaves a filter empty.
const (
	defaultComparisonTeams = 3
	defaultRunRateTeams    = 2
	defaultTopVenues       = 15
)

// ViewMeta describes the snapshot and the effective filters behind a result.
type ViewMeta struct {
	Filters     map[string]any `json:"filters"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	LoadedAt    *time.Time     `json:"loaded_at,omitempty"`
	Degraded    bool           `json:"degraded"`
}

// ViewResult is the answer to one view request.
type ViewResult struct {
	View     string           `json:"view"`
	Rows     any              `json:"rows"`
	Count    int              `json:"count"`
	Chart    *projector.Chart `json:"chart,omitempty"`
	Warnings []string         `json:"warnings"`
	Meta     ViewMeta         `json:"meta"`

	// Table is the flat export form of Rows.
	Table *exporter.Table `json:"-"`
}

// Outcome classifies the result for metrics.
func (r *ViewResult) Outcome() string {
	switch {
	case r.Meta.Degraded:
		return "degraded"
	case r.Count == 0:
		return "empty"
	}
	return "ok"
}

// degradedResult is returned when the data a view needs is unavailable.
func degradedResult(view string, cause error) *ViewResult {
	return &ViewResult{
		View:     view,
		Rows:     []any{},
		Warnings: []string{cause.Error()},
		Meta:     ViewMeta{Filters: map[string]any{}, Degraded: true},
		Table:    exporter.NewTable(view),
	}
}

// viewState bundles one snapshot with the resolver and engine derived from it.
type viewState struct {
	snap     *dataset.Snapshot
	sources  dataset.Sources
	resolver *entities.Resolver
	engine   *analytics.Engine
}

func newViewState(snap *dataset.Snapshot, sources dataset.Sources, phases analytics.PhaseBoundaries) *viewState {
	return &viewState{
		snap:     snap,
		sources:  sources,
		resolver: entities.NewResolver(snap),
		engine:   analytics.NewEngine(snap, phases),
	}
}

// dispatch maps req onto exactly one engine call.
func (s *viewState) dispatch(req api.ViewRequest) (*ViewResult, error) {
	loadedAt := s.snap.LoadedAt
	b := &viewBuilder{
		state: s,
		req:   req,
		result: &ViewResult{
			View:     req.View,
			Warnings: []string{},
			Meta: ViewMeta{
				Filters:     map[string]any{},
				Fingerprint: s.snap.Fingerprint,
				LoadedAt:    &loadedAt,
			},
		},
	}

	build, ok := viewBuilders[req.View]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, req.View)
	}

	if err := build(b); err != nil {
		var schemaErr *dataset.SchemaError
		var missingErr *dataset.MissingDataError
		if errors.As(err, &schemaErr) || errors.As(err, &missingErr) {
			b.degrade(err)
			return b.result, nil
		}
		return nil, err
	}

	if b.result.Count == 0 {
		b.warn(EmptyResultWarning)
	}
	return b.result, nil
}

var viewBuilders = map[string]func(*viewBuilder) error{
	api.ViewPhaseComparison:     (*viewBuilder).phaseComparison,
	api.ViewPhaseWickets:        (*viewBuilder).phaseWickets,
	api.ViewTeamPhaseBreakdown:  (*viewBuilder).teamPhaseBreakdown,
	api.ViewWicketsVsOpposition: (*viewBuilder).wicketsVsOpposition,
	api.ViewEconomyDistribution: (*viewBuilder).economyDistribution,
	api.ViewDismissalPositions:  (*viewBuilder).dismissalPositions,
	api.ViewTopPartners:         (*viewBuilder).topPartners,
	api.ViewProlificPairs:       (*viewBuilder).prolificPairs,
	api.ViewTopPartnerships:     (*viewBuilder).topPartnerships,
	api.ViewRunRates:            (*viewBuilder).runRates,
	api.ViewHeadToHead:          (*viewBuilder).headToHead,
	api.ViewInningsProgression:  (*viewBuilder).inningsProgression,
	api.ViewMatchPartnerships:   (*viewBuilder).matchPartnerships,
	api.ViewMatchBowlers:        (*viewBuilder).matchBowlers,
	api.ViewTeamWickets:         (*viewBuilder).teamWickets,
	api.ViewTeamComparison:      (*viewBuilder).teamComparison,
	api.ViewMatchesPerYear:      (*viewBuilder).matchesPerYear,
	api.ViewTopWinners:          (*viewBuilder).topWinners,
	api.ViewTossImpact:          (*viewBuilder).tossImpact,
	api.ViewTopVenues:           (*viewBuilder).topVenues,
}

// viewBuilder accumulates effective filters and warnings for one dispatch.
type viewBuilder struct {
	state  *viewState
	req    api.ViewRequest
	result *ViewResult
}

func (b *viewBuilder) warn(msg string) {
	b.result.Warnings = append(b.result.Warnings, msg)
}

func (b *viewBuilder) set(rows any, count int, chart projector.Chart, table *exporter.Table) error {
	b.result.Rows = rows
	b.result.Count = count
	b.result.Chart = &chart
	b.result.Table = table
	return nil
}

// none sets a zero-row result with the view's export headers.
func (b *viewBuilder) none(headers ...string) error {
	return b.set([]any{}, 0, projector.Categorical(nil), exporter.NewTable(b.req.View, headers...))
}

func (b *viewBuilder) degrade(cause error) {
	b.result.Rows = []any{}
	b.result.Count = 0
	b.result.Chart = nil
	b.result.Table = exporter.NewTable(b.req.View)
	b.result.Meta.Degraded = true
	b.warn(cause.Error())
}

// pick validates a single-entity filter. An empty value selects the first
// option with a warning; ok is false when there is nothing to select.
func (b *viewBuilder) pick(field, value string, options []string, validate func(string) error) (string, bool, error) {
	if value == "" {
		if len(options) == 0 {
			return "", false, nil
		}
		value = options[0]
		b.warn(fmt.Sprintf("no %s selected, showing %s", field, value))
	} else if err := validate(value); err != nil {
		return "", false, err
	}
	b.result.Meta.Filters[field] = value
	return value, true, nil
}

func (b *viewBuilder) pickMatch() (int64, bool, error) {
	id := b.req.MatchID
	if id == 0 {
		matches := b.state.resolver.Matches()
		if len(matches) == 0 {
			return 0, false, nil
		}
		id = matches[0]
		b.warn(fmt.Sprintf("no match_id selected, showing %d", id))
	} else if err := b.state.resolver.ValidateMatch(id); err != nil {
		return 0, false, err
	}
	b.result.Meta.Filters["match_id"] = id
	return id, true, nil
}

// multi drops unknown values of a multi-select filter. An empty request
// selects the first def options. ok is false when the caller asked for
// values and none of them were known.
func (b *viewBuilder) multi(field string, values, options []string, def int, filter func([]string) ([]string, []string)) ([]string, bool) {
	if len(values) == 0 {
		if def > len(options) {
			def = len(options)
		}
		selected := options[:def]
		if def > 0 {
			b.warn(fmt.Sprintf("no %s selected, showing %s", field, strings.Join(selected, ", ")))
		}
		b.result.Meta.Filters[field] = selected
		return selected, def > 0
	}

	known, dropped := filter(values)
	if len(dropped) > 0 {
		b.warn(fmt.Sprintf("ignored unknown %s: %s", field, strings.Join(dropped, ", ")))
	}
	if known == nil {
		known = []string{}
	}
	b.result.Meta.Filters[field] = known
	return known, len(known) > 0
}

// topN clamps the requested row limit. Zero selects def.
func (b *viewBuilder) topN(def int) int {
	n := def
	if b.req.TopN != 0 {
		n = entities.ClampTopN(b.req.TopN)
		if n != b.req.TopN {
			b.warn(fmt.Sprintf("top_n %d out of range, using %d", b.req.TopN, n))
		}
	}
	b.result.Meta.Filters["top_n"] = n
	return n
}

// summaryFilter resolves the year, team and venue filters of the match
// summary views. ok is false when a provided filter matched nothing.
func (b *viewBuilder) summaryFilter() (analytics.SummaryFilter, bool, error) {
	var f analytics.SummaryFilter
	s := b.state
	if !s.snap.HasMatchSummaries {
		return f, false, &dataset.MissingDataError{Files: []string{s.sources.Path(s.sources.MatchSummaries)}}
	}

	ok := true
	if len(b.req.Years) > 0 {
		known, dropped := s.resolver.FilterKnownYears(b.req.Years)
		if len(dropped) > 0 {
			b.warn(fmt.Sprintf("ignored unknown years: %s", joinInts(dropped)))
		}
		f.Years = known
		b.result.Meta.Filters["years"] = known
		ok = ok && len(known) > 0
	}
	if len(b.req.Teams) > 0 {
		known, dropped := s.resolver.FilterKnownSummaryTeams(b.req.Teams)
		if len(dropped) > 0 {
			b.warn(fmt.Sprintf("ignored unknown teams: %s", strings.Join(dropped, ", ")))
		}
		f.Teams = known
		b.result.Meta.Filters["teams"] = known
		ok = ok && len(known) > 0
	}
	if len(b.req.Venues) > 0 {
		known, dropped := s.resolver.FilterKnownVenues(b.req.Venues)
		if len(dropped) > 0 {
			b.warn(fmt.Sprintf("ignored unknown venues: %s", strings.Join(dropped, "; ")))
		}
		f.Venues = known
		b.result.Meta.Filters["venues"] = known
		ok = ok && len(known) > 0
	}
	return f, ok, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func (b *viewBuilder) phaseComparison() error {
	rows, err := b.state.engine.PhaseComparison()
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, "phase", "team", "wickets", "conceded", "mean_economy", "rows")
	points := make([]projector.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, projector.Point{
			Label:  string(r.Phase),
			Series: r.Team,
			Value:  float64(r.Wickets),
			Extra:  map[string]any{"conceded": r.Conceded, "mean_economy": r.MeanEconomy},
		})
		table.AddRow(string(r.Phase), r.Team, r.Wickets, r.Conceded, r.MeanEconomy, r.Rows)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

func (b *viewBuilder) phaseWickets() error {
	rows, err := b.state.engine.PhaseWickets()
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, "phase", "team", "wickets")
	points := make([]projector.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, projector.Point{Label: string(r.Phase), Series: r.Team, Value: float64(r.Wickets)})
		table.AddRow(string(r.Phase), r.Team, r.Wickets)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

func (b *viewBuilder) teamPhaseBreakdown() error {
	r := b.state.resolver
	team, ok, err := b.pick("team", b.req.Team, r.Teams(), func(v string) error { return r.ValidateTeam("team", v) })
	headers := []string{"team", "phase", "wickets", "mean_economy", "conceded", "overs"}
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows, err := b.state.engine.TeamPhaseBreakdown(team)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label: string(row.Phase),
			Value: float64(row.Wickets),
			Extra: map[string]any{"mean_economy": row.MeanEconomy, "conceded": row.Conceded, "overs": row.Overs},
		})
		table.AddRow(team, string(row.Phase), row.Wickets, row.MeanEconomy, row.Conceded, row.Overs)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) wicketsVsOpposition() error {
	r := b.state.resolver
	bowler, ok, err := b.pick("bowler", b.req.Bowler, r.Bowlers(), r.ValidateBowler)
	headers := []string{"bowler", "opposition", "wickets"}
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows, err := b.state.engine.WicketsVsOpposition(bowler)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Opposition, Value: float64(row.Wickets)})
		table.AddRow(bowler, row.Opposition, row.Wickets)
	}
	return b.set(rows, len(rows), projector.Share(points), table)
}

func (b *viewBuilder) economyDistribution() error {
	r := b.state.resolver
	bowler, ok, err := b.pick("bowler", b.req.Bowler, r.Bowlers(), r.ValidateBowler)
	headers := []string{"bowler", "count", "min", "q1", "median", "q3", "max", "mean"}
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	summary, err := b.state.engine.EconomyDistribution(bowler)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, 6)
	if summary.Count > 0 {
		table.AddRow(bowler, summary.Count, summary.Min, summary.Q1, summary.Median, summary.Q3, summary.Max, summary.Mean)
		for _, p := range []struct {
			label string
			value float64
		}{
			{"min", summary.Min}, {"q1", summary.Q1}, {"median", summary.Median},
			{"q3", summary.Q3}, {"max", summary.Max}, {"mean", summary.Mean},
		} {
			points = append(points, projector.Point{Label: p.label, Value: p.value})
		}
	}
	return b.set(summary, summary.Count, projector.Categorical(points), table)
}

func (b *viewBuilder) dismissalPositions() error {
	r := b.state.resolver
	batsman, ok, err := b.pick("batsman", b.req.Batsman, r.Batsmen(), r.ValidateBatsman)
	headers := []string{"batsman", "wicket", "label", "count", "percent"}
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows, err := b.state.engine.DismissalPositions(batsman)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Label, Value: float64(row.Count)})
		table.AddRow(batsman, row.Wicket, row.Label, row.Count, row.Percent)
	}
	return b.set(rows, len(rows), projector.Share(points), table)
}

func (b *viewBuilder) topPartners() error {
	r := b.state.resolver
	batsman, ok, err := b.pick("batsman", b.req.Batsman, r.Batsmen(), r.ValidateBatsman)
	headers := []string{"batsman", "partner", "runs"}
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows, err := b.state.engine.TopPartners(batsman, b.topN(entities.DefaultTopN))
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Partner, Value: float64(row.Runs)})
		table.AddRow(batsman, row.Partner, row.Runs)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) prolificPairs() error {
	rows, err := b.state.engine.ProlificPairs(b.topN(entities.DefaultTopN))
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, "player1", "player2", "runs")
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Pair(), Value: float64(row.Runs)})
		table.AddRow(row.Player1, row.Player2, row.Runs)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

var partnershipHeaders = []string{"match_id", "team", "for_wicket", "player1", "player2", "runs", "balls"}

func partnershipCells(p analytics.PartnershipRow) []any {
	return []any{p.MatchID, p.Team, p.ForWicket, p.Player1, p.Player2, p.Runs, p.Balls}
}

func (b *viewBuilder) topPartnerships() error {
	rows, err := b.state.engine.TopPartnerships(b.topN(entities.DefaultTopN))
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, partnershipHeaders...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label: row.Pair(),
			Value: float64(row.Runs),
			Extra: map[string]any{"match_id": row.MatchID, "team": row.Team, "for_wicket": row.ForWicket},
		})
		table.AddRow(partnershipCells(row)...)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) runRates() error {
	r := b.state.resolver
	headers := append(append([]string{}, partnershipHeaders...), "run_rate")
	teams, ok := b.multi("teams", b.req.Teams, r.PartnershipTeams(), defaultRunRateTeams, r.FilterKnownPartnershipTeams)
	if !ok {
		return b.none(headers...)
	}
	rows, err := b.state.engine.RunRates(teams)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label:  row.Pair(),
			Series: row.Team,
			Value:  row.RunRate,
			Extra:  map[string]any{"runs": row.Runs, "balls": row.Balls},
		})
		table.AddRow(append(partnershipCells(row.PartnershipRow), row.RunRate)...)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

func (b *viewBuilder) headToHead() error {
	r := b.state.resolver
	headers := []string{"team", "opponent", "wickets"}
	validate1 := func(v string) error { return r.ValidateTeam("team1", v) }

	team1, ok, err := b.pick("team1", b.req.Team1, r.Teams(), validate1)
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	validate2 := func(v string) error { return r.ValidateOpponent(team1, v) }
	team2, ok, err := b.pick("team2", b.req.Team2, r.Opponents(team1), validate2)
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}

	rows, err := b.state.engine.HeadToHead(team1, team2)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Team, Value: float64(row.Wickets), Extra: map[string]any{"opponent": row.Opponent}})
		table.AddRow(row.Team, row.Opponent, row.Wickets)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) inningsProgression() error {
	headers := []string{"match_id", "team", "over", "runs", "cumulative", "wickets"}
	match, ok, err := b.pickMatch()
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	curves, err := b.state.engine.InningsProgression(match)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0)
	for _, c := range curves {
		fallen := make(map[int]int, len(c.Wickets))
		for _, w := range c.Wickets {
			fallen[w.Over]++
		}
		for _, o := range c.Overs {
			points = append(points, projector.Point{
				Label:  strconv.Itoa(o.Over),
				Series: c.Team,
				Value:  float64(o.Cumulative),
				Extra:  map[string]any{"runs": o.Runs, "wickets": fallen[o.Over]},
			})
			table.AddRow(match, c.Team, o.Over, o.Runs, o.Cumulative, fallen[o.Over])
		}
	}
	return b.set(curves, len(curves), projector.Grouped(points), table)
}

func (b *viewBuilder) matchPartnerships() error {
	match, ok, err := b.pickMatch()
	if err != nil || !ok {
		return firstErr(err, b.none(partnershipHeaders...))
	}
	rows, err := b.state.engine.MatchPartnerships(match)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, partnershipHeaders...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label:  analytics.WicketLabel(row.ForWicket),
			Series: row.Team,
			Value:  float64(row.Runs),
			Extra:  map[string]any{"pair": row.Pair(), "balls": row.Balls},
		})
		table.AddRow(partnershipCells(row)...)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

func (b *viewBuilder) matchBowlers() error {
	headers := []string{"match_id", "team", "bowler_id", "bowler", "overs", "wickets", "conceded", "economy"}
	match, ok, err := b.pickMatch()
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows, err := b.state.engine.MatchBowlerSummary(match)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label:  row.Bowler,
			Series: row.Team,
			Value:  float64(row.Wickets),
			Extra:  map[string]any{"overs": row.Overs, "conceded": row.Conceded, "economy": row.Economy},
		})
		table.AddRow(match, row.Team, row.BowlerID, row.Bowler, row.Overs, row.Wickets, row.Conceded, row.Economy)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

func (b *viewBuilder) teamWickets() error {
	rows, err := b.state.engine.TeamWickets()
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, "team", "wickets")
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Team, Value: float64(row.Wickets)})
		table.AddRow(row.Team, row.Wickets)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) teamComparison() error {
	r := b.state.resolver
	headers := []string{"team", "wickets", "mean_partnership_runs", "partnerships"}
	teams, ok := b.multi("teams", b.req.Teams, r.Teams(), defaultComparisonTeams, r.FilterKnownTeams)
	if !ok {
		return b.none(headers...)
	}
	rows, err := b.state.engine.TeamComparison(teams)
	if err != nil {
		return err
	}
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{
			Label: row.Team,
			Value: float64(row.Wickets),
			Extra: map[string]any{"mean_partnership_runs": row.MeanPartnershipRuns, "partnerships": row.Partnerships},
		})
		table.AddRow(row.Team, row.Wickets, row.MeanPartnershipRuns, row.Partnerships)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) matchesPerYear() error {
	headers := []string{"year", "matches"}
	f, ok, err := b.summaryFilter()
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows := b.state.engine.MatchesPerYear(f)
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: strconv.Itoa(row.Year), Value: float64(row.Matches)})
		table.AddRow(row.Year, row.Matches)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) topWinners() error {
	return b.counts("winner", entities.DefaultTopN, b.state.engine.TopWinners)
}

func (b *viewBuilder) topVenues() error {
	return b.counts("venue", defaultTopVenues, b.state.engine.TopVenues)
}

func (b *viewBuilder) counts(label string, def int, compute func(analytics.SummaryFilter, int) []analytics.Count) error {
	headers := []string{label, "matches"}
	f, ok, err := b.summaryFilter()
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows := compute(f, b.topN(def))
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Label, Value: float64(row.Count)})
		table.AddRow(row.Label, row.Count)
	}
	return b.set(rows, len(rows), projector.Categorical(points), table)
}

func (b *viewBuilder) tossImpact() error {
	headers := []string{"toss_choice", "result", "matches"}
	f, ok, err := b.summaryFilter()
	if err != nil || !ok {
		return firstErr(err, b.none(headers...))
	}
	rows := b.state.engine.TossImpact(f)
	table := exporter.NewTable(b.req.View, headers...)
	points := make([]projector.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, projector.Point{Label: row.Choice, Series: row.Result, Value: float64(row.Count)})
		table.AddRow(row.Choice, row.Result, row.Count)
	}
	return b.set(rows, len(rows), projector.Grouped(points), table)
}

// firstErr returns err when set, otherwise fallback.
func firstErr(err, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}

package dataset

import (
	"strings"
)

// Table identifies one of the source tables.
type Table string

const (
	TablePlayers        Table = "players"
	TableBowling        Table = "bowling"
	TableFallOfWickets  Table = "fall_of_wickets"
	TablePartnerships   Table = "partnerships"
	TableMatchSummaries Table = "match_summaries"
)

// Source column names as they appear in the cleaned CSV headers.
const (
	ColPlayerID   = "player_id"
	ColPlayerName = "player_name"

	ColMatchID    = "Match ID"
	ColBowlerID   = "bowler id"
	ColTeam       = "team"
	ColOpposition = "opposition"
	ColOvers      = "overs"
	ColWickets    = "wickets"
	ColConceded   = "conceded"
	ColEconomy    = "economy"

	ColPlayer = "player"
	ColOver   = "over"
	ColWicket = "wicket"
	ColRuns   = "runs"

	ColPlayer1          = "player1"
	ColPlayer2          = "player2"
	ColForWicket        = "for wicket"
	ColPartnershipRuns  = "partnership runs"
	ColPartnershipBalls = "partnership balls"

	ColMatchDate  = "Match Date"
	ColTeam1Name  = "Team1 Name"
	ColTeam2Name  = "Team2 Name"
	ColWinner     = "Match Winner"
	ColVenue      = "Match Venue (Stadium)"
	ColTossChoice = "Toss Winner Choice"
	ColResultText = "Match Result Text"
)

// Column describes one expected header.
type Column struct {
	Name     string
	Required bool
}

// Schema lists the columns a table is expected to carry.
type Schema struct {
	Table   Table
	Columns []Column
}

var (
	PlayerSchema = Schema{Table: TablePlayers, Columns: []Column{
		{ColPlayerID, true},
		{ColPlayerName, true},
	}}

	BowlingSchema = Schema{Table: TableBowling, Columns: []Column{
		{ColMatchID, true},
		{ColBowlerID, true},
		{ColTeam, true},
		{ColOpposition, true},
		{ColOvers, true},
		{ColWickets, false},
		{ColConceded, false},
		{ColEconomy, false},
	}}

	FallOfWicketSchema = Schema{Table: TableFallOfWickets, Columns: []Column{
		{ColMatchID, true},
		{ColTeam, true},
		{ColPlayer, true},
		{ColOver, true},
		{ColWicket, false},
		{ColRuns, false},
	}}

	PartnershipSchema = Schema{Table: TablePartnerships, Columns: []Column{
		{ColMatchID, true},
		{ColTeam, true},
		{ColPlayer1, true},
		{ColPlayer2, true},
		{ColForWicket, false},
		{ColPartnershipRuns, false},
		{ColPartnershipBalls, false},
	}}

	MatchSummarySchema = Schema{Table: TableMatchSummaries, Columns: []Column{
		{ColMatchID, true},
		{ColMatchDate, true},
		{ColTeam1Name, true},
		{ColTeam2Name, true},
		{ColWinner, false},
		{ColVenue, false},
		{ColTossChoice, false},
		{ColResultText, false},
	}}
)

// Binding maps the schema columns onto positions in a concrete header.
type Binding struct {
	table Table
	index map[string]int
}

// Bind matches header against the schema. Header cells are trimmed and a
// leading byte order mark is ignored. Every missing required column is
// reported in a single SchemaError.
func (s Schema) Bind(header []string) (Binding, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	b := Binding{table: s.Table, index: make(map[string]int, len(s.Columns))}
	var missing []string
	for _, col := range s.Columns {
		i, ok := positions[col.Name]
		if !ok {
			if col.Required {
				missing = append(missing, col.Name)
			}
			continue
		}
		b.index[col.Name] = i
	}
	if len(missing) > 0 {
		return Binding{}, &SchemaError{Table: s.Table, Missing: missing}
	}
	return b, nil
}

// Has reports whether the column was present in the header.
func (b Binding) Has(col string) bool {
	_, ok := b.index[col]
	return ok
}

// Get returns the trimmed cell for col, or "" when the column is absent or
// the row is short.
func (b Binding) Get(row []string, col string) string {
	i, ok := b.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Columns returns the set of bound column names.
func (b Binding) Columns() ColumnSet {
	set := make(ColumnSet, len(b.index))
	for name := range b.index {
		set[name] = struct{}{}
	}
	return set
}

// ColumnSet records which columns a loaded table carried.
type ColumnSet map[string]struct{}

// Has reports whether name is in the set.
func (c ColumnSet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

package dataset

import (
	"time"

	"crickalytics/pkg/contracts/domain"
)

// TableStats counts rows seen while loading one table.
type TableStats struct {
	Read      int `json:"read"`
	Kept      int `json:"kept"`
	Discarded int `json:"discarded"`
}

// LoadStats summarises a load.
type LoadStats struct {
	Tables             map[Table]TableStats `json:"tables"`
	UnresolvedPlayers  int                  `json:"unresolved_players"`
	DuplicatePlayerIDs int                  `json:"duplicate_player_ids"`
	Duration           time.Duration        `json:"duration"`
}

// Snapshot is the immutable result of a load. Callers must treat every slice
// and map as read-only.
type Snapshot struct {
	Players        map[int64]string
	Bowling        []domain.BowlingRecord
	FallOfWickets  []domain.FallOfWicket
	Partnerships   []domain.Partnership
	MatchSummaries []domain.MatchSummary

	// HasMatchSummaries is false when the optional summary file was absent.
	HasMatchSummaries bool

	Stats       LoadStats
	Fingerprint string
	LoadedAt    time.Time

	columns map[Table]ColumnSet
}

// Require returns a SchemaError when table lacks any of cols.
func (s *Snapshot) Require(table Table, cols ...string) error {
	set := s.columns[table]
	var missing []string
	for _, c := range cols {
		if !set.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: table, Missing: missing}
	}
	return nil
}

// HasColumn reports whether the loaded table carried col.
func (s *Snapshot) HasColumn(table Table, col string) bool {
	return s.columns[table].Has(col)
}

// NewSnapshot assembles a snapshot from already-parsed records. Every column of
// every schema is marked present. It is intended for callers that build data
// in memory rather than from files.
func NewSnapshot(players map[int64]string, bowling []domain.BowlingRecord, fow []domain.FallOfWicket, partnerships []domain.Partnership, summaries []domain.MatchSummary) *Snapshot {
	if players == nil {
		players = map[int64]string{}
	}
	columns := make(map[Table]ColumnSet)
	for _, schema := range []Schema{PlayerSchema, BowlingSchema, FallOfWicketSchema, PartnershipSchema, MatchSummarySchema} {
		set := make(ColumnSet, len(schema.Columns))
		for _, c := range schema.Columns {
			set[c.Name] = struct{}{}
		}
		columns[schema.Table] = set
	}
	return &Snapshot{
		Players:           players,
		Bowling:           bowling,
		FallOfWickets:     fow,
		Partnerships:      partnerships,
		MatchSummaries:    summaries,
		HasMatchSummaries: summaries != nil,
		Stats:             LoadStats{Tables: map[Table]TableStats{}},
		LoadedAt:          time.Now(),
		columns:           columns,
	}
}

// WithoutColumns returns a shallow copy of s in which the named columns of
// table are marked absent.
func (s *Snapshot) WithoutColumns(table Table, cols ...string) *Snapshot {
	clone := *s
	clone.columns = make(map[Table]ColumnSet, len(s.columns))
	for t, set := range s.columns {
		copied := make(ColumnSet, len(set))
		for c := range set {
			copied[c] = struct{}{}
		}
		clone.columns[t] = copied
	}
	for _, c := range cols {
		delete(clone.columns[table], c)
	}
	return &clone
}

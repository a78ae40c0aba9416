package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"crickalytics/pkg/contracts/domain"
)

// Sources names the CSV files of one dataset.
type Sources struct {
	Dir            string
	Players        string
	Bowling        string
	FallOfWickets  string
	Partnerships   string
	MatchSummaries string
}

// DefaultSources returns the conventional file names inside dir.
func DefaultSources(dir string) Sources {
	return Sources{
		Dir:            dir,
		Players:        "player_info_clean.csv",
		Bowling:        "bowling_clean.csv",
		FallOfWickets:  "fow_clean.csv",
		Partnerships:   "partnership_clean.csv",
		MatchSummaries: "match_summary_clean.csv",
	}
}

// Path joins name onto the source directory.
func (s Sources) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Files returns every configured path, required files first.
func (s Sources) Files() []string {
	files := []string{s.Path(s.Players), s.Path(s.Bowling), s.Path(s.FallOfWickets), s.Path(s.Partnerships)}
	if s.MatchSummaries != "" {
		files = append(files, s.Path(s.MatchSummaries))
	}
	return files
}

// rawTable is a header plus data rows as read from disk.
type rawTable struct {
	header []string
	rows   [][]string
}

// Loader reads Sources into a Snapshot.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load reads every table concurrently, validates headers, discards malformed
// rows, and joins player names. All absent required files are reported
// together in one MissingDataError.
func (l *Loader) Load(ctx context.Context, src Sources) (*Snapshot, error) {
	start := time.Now()

	type job struct {
		path     string
		required bool
		out      *rawTable
		missing  bool
	}
	jobs := []*job{
		{path: src.Path(src.Players), required: true},
		{path: src.Path(src.Bowling), required: true},
		{path: src.Path(src.FallOfWickets), required: true},
		{path: src.Path(src.Partnerships), required: true},
	}
	if src.MatchSummaries != "" {
		jobs = append(jobs, &job{path: src.Path(src.MatchSummaries)})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			t, err := readTable(gctx, j.path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, errEmptyFile) {
					j.missing = true
					return nil
				}
				return fmt.Errorf("read %s: %w", j.path, err)
			}
			j.out = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for _, j := range jobs {
		if j.missing && j.required {
			missing = append(missing, j.path)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingDataError{Files: missing}
	}

	snap := &Snapshot{
		Stats:   LoadStats{Tables: make(map[Table]TableStats)},
		columns: make(map[Table]ColumnSet),
	}

	if err := l.loadPlayers(snap, jobs[0].out); err != nil {
		return nil, err
	}
	if err := l.loadBowling(snap, jobs[1].out); err != nil {
		return nil, err
	}
	if err := l.loadFallOfWickets(snap, jobs[2].out); err != nil {
		return nil, err
	}
	if err := l.loadPartnerships(snap, jobs[3].out); err != nil {
		return nil, err
	}
	if len(jobs) > 4 && jobs[4].out != nil {
		if err := l.loadMatchSummaries(snap, jobs[4].out); err != nil {
			l.logger.WarnContext(ctx, "match summary table rejected",
				slog.String("error", err.Error()))
		}
	}

	snap.Stats.Duration = time.Since(start)
	snap.LoadedAt = time.Now()

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("bowling_rows", len(snap.Bowling)),
		slog.Int("fow_rows", len(snap.FallOfWickets)),
		slog.Int("partnership_rows", len(snap.Partnerships)),
		slog.Int("match_summaries", len(snap.MatchSummaries)),
		slog.Int("unresolved_players", snap.Stats.UnresolvedPlayers),
		slog.Duration("duration", snap.Stats.Duration))

	return snap, nil
}

func (l *Loader) loadPlayers(snap *Snapshot, t *rawTable) error {
	b, err := PlayerSchema.Bind(t.header)
	if err != nil {
		return err
	}
	snap.columns[TablePlayers] = b.Columns()

	stats := TableStats{Read: len(t.rows)}
	players := make(map[int64]string, len(t.rows))
	for _, row := range t.rows {
		id, ok := parseID(b.Get(row, ColPlayerID))
		if !ok {
			stats.Discarded++
			continue
		}
		if _, dup := players[id]; dup {
			snap.Stats.DuplicatePlayerIDs++
			stats.Discarded++
			continue
		}
		players[id] = b.Get(row, ColPlayerName)
		stats.Kept++
	}
	snap.Players = players
	snap.Stats.Tables[TablePlayers] = stats
	return nil
}

func (l *Loader) resolve(snap *Snapshot, id int64) string {
	name := snap.Players[id]
	if name == "" {
		snap.Stats.UnresolvedPlayers++
	}
	return name
}

func (l *Loader) loadBowling(snap *Snapshot, t *rawTable) error {
	b, err := BowlingSchema.Bind(t.header)
	if err != nil {
		return err
	}
	snap.columns[TableBowling] = b.Columns()

	stats := TableStats{Read: len(t.rows)}
	records := make([]domain.BowlingRecord, 0, len(t.rows))
	for _, row := range t.rows {
		team, opp := b.Get(row, ColTeam), b.Get(row, ColOpposition)
		if isSentinel(team) || isSentinel(opp) {
			stats.Discarded++
			continue
		}
		matchID, ok1 := parseID(b.Get(row, ColMatchID))
		bowlerID, ok2 := parseID(b.Get(row, ColBowlerID))
		overs, ok3 := parseFloat(b.Get(row, ColOvers))
		if !ok1 || !ok2 || !ok3 {
			stats.Discarded++
			continue
		}
		records = append(records, domain.BowlingRecord{
			MatchID:    matchID,
			BowlerID:   bowlerID,
			PlayerName: l.resolve(snap, bowlerID),
			Team:       team,
			Opposition: opp,
			Overs:      overs,
			Wickets:    parseCount(b.Get(row, ColWickets)),
			Conceded:   parseCount(b.Get(row, ColConceded)),
			Economy:    parseOptionalFloat(b.Get(row, ColEconomy)),
		})
	}
	stats.Kept = len(records)
	snap.Bowling = records
	snap.Stats.Tables[TableBowling] = stats
	return nil
}

func (l *Loader) loadFallOfWickets(snap *Snapshot, t *rawTable) error {
	b, err := FallOfWicketSchema.Bind(t.header)
	if err != nil {
		return err
	}
	snap.columns[TableFallOfWickets] = b.Columns()

	stats := TableStats{Read: len(t.rows)}
	records := make([]domain.FallOfWicket, 0, len(t.rows))
	for _, row := range t.rows {
		team := b.Get(row, ColTeam)
		if isSentinel(team) {
			stats.Discarded++
			continue
		}
		matchID, ok1 := parseID(b.Get(row, ColMatchID))
		playerID, ok2 := parseID(b.Get(row, ColPlayer))
		over, ok3 := parseFloat(b.Get(row, ColOver))
		if !ok1 || !ok2 || !ok3 {
			stats.Discarded++
			continue
		}
		records = append(records, domain.FallOfWicket{
			MatchID:    matchID,
			Team:       team,
			PlayerID:   playerID,
			PlayerName: l.resolve(snap, playerID),
			Over:       over,
			Wicket:     parseCount(b.Get(row, ColWicket)),
			Runs:       parseCount(b.Get(row, ColRuns)),
		})
	}
	stats.Kept = len(records)
	snap.FallOfWickets = records
	snap.Stats.Tables[TableFallOfWickets] = stats
	return nil
}

func (l *Loader) loadPartnerships(snap *Snapshot, t *rawTable) error {
	b, err := PartnershipSchema.Bind(t.header)
	if err != nil {
		return err
	}
	snap.columns[TablePartnerships] = b.Columns()

	stats := TableStats{Read: len(t.rows)}
	records := make([]domain.Partnership, 0, len(t.rows))
	for _, row := range t.rows {
		team := b.Get(row, ColTeam)
		if isSentinel(team) {
			stats.Discarded++
			continue
		}
		matchID, ok1 := parseID(b.Get(row, ColMatchID))
		p1, ok2 := parseID(b.Get(row, ColPlayer1))
		p2, ok3 := parseID(b.Get(row, ColPlayer2))
		if !ok1 || !ok2 || !ok3 {
			stats.Discarded++
			continue
		}
		records = append(records, domain.Partnership{
			MatchID:     matchID,
			Team:        team,
			Player1ID:   p1,
			Player2ID:   p2,
			Player1Name: l.resolve(snap, p1),
			Player2Name: l.resolve(snap, p2),
			ForWicket:   parseCount(b.Get(row, ColForWicket)),
			Runs:        parseCount(b.Get(row, ColPartnershipRuns)),
			Balls:       parseCount(b.Get(row, ColPartnershipBalls)),
		})
	}
	stats.Kept = len(records)
	snap.Partnerships = records
	snap.Stats.Tables[TablePartnerships] = stats
	return nil
}

func (l *Loader) loadMatchSummaries(snap *Snapshot, t *rawTable) error {
	b, err := MatchSummarySchema.Bind(t.header)
	if err != nil {
		return err
	}
	snap.columns[TableMatchSummaries] = b.Columns()

	stats := TableStats{Read: len(t.rows)}
	records := make([]domain.MatchSummary, 0, len(t.rows))
	for _, row := range t.rows {
		matchID, ok := parseID(b.Get(row, ColMatchID))
		if !ok {
			stats.Discarded++
			continue
		}
		date := b.Get(row, ColMatchDate)
		records = append(records, domain.MatchSummary{
			MatchID:    matchID,
			Date:       date,
			Year:       parseYear(date),
			Team1:      b.Get(row, ColTeam1Name),
			Team2:      b.Get(row, ColTeam2Name),
			Winner:     b.Get(row, ColWinner),
			Venue:      b.Get(row, ColVenue),
			TossChoice: b.Get(row, ColTossChoice),
			ResultText: b.Get(row, ColResultText),
		})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].MatchID < records[j].MatchID })
	stats.Kept = len(records)
	snap.MatchSummaries = records
	snap.HasMatchSummaries = true
	snap.Stats.Tables[TableMatchSummaries] = stats
	return nil
}

var errEmptyFile = errors.New("empty file")

// readTable reads a whole CSV file. A UTF-8 byte order mark is skipped.
func readTable(ctx context.Context, path string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errEmptyFile
	}
	if err != nil {
		return nil, err
	}

	t := &rawTable{header: header}
	for {
		if len(t.rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// Default file names of the cleaned dataset.
const (
	PlayersFile        = "player_info_clean.csv"
	BowlingFile        = "bowling_clean.csv"
	FallOfWicketsFile  = "fow_clean.csv"
	PartnershipsFile   = "partnership_clean.csv"
	MatchSummariesFile = "match_summary_clean.csv"
)

// Fixture holds the CSV tables of a dataset, header row first. A nil table is
// not written.
type Fixture struct {
	Players        [][]string
	Bowling        [][]string
	FallOfWickets  [][]string
	Partnerships   [][]string
	MatchSummaries [][]string
	// BOM prefixes every written file with a UTF-8 byte order mark.
	BOM bool
}

// SampleFixture is a small dataset covering two analyzable matches, a
// sentinel bowling row, unresolved player ids and a duplicate player id.
//
// Players: 1 A, 2 B, 3 C, 4 X, 5 Y, 6 Z. Id 1 appears twice; ids 98 and 99
// are unknown.
func SampleFixture() Fixture {
	return Fixture{
		Players: [][]string{
			{"player_id", "player_name"},
			{"1", "A"},
			{"2", "B"},
			{"3", "C"},
			{"4", "X"},
			{"5", "Y"},
			{"6", "Z"},
			{"1", "A duplicate"},
		},
		Bowling: [][]string{
			{"Match ID", "bowler id", "team", "opposition", "overs", "wickets", "conceded", "economy"},
			{"100", "5", "India", "Pakistan", "5", "2", "20", "4.0"},
			{"100", "5", "India", "Pakistan", "45", "1", "30", "6.0"},
			{"100", "4", "Pakistan", "India", "25", "0", "40", "5.0"},
			{"100", "6", "1", "2", "10", "3", "10", "3.0"},
			{"101", "5", "India", "Australia", "8", "1", "15", "3.5"},
			{"101", "99", "Australia", "India", "12", "2", "25", ""},
			{"101", "6", "Australia", "India", "40", "0", "12", "4.5"},
		},
		FallOfWickets: [][]string{
			{"Match ID", "team", "player", "over", "wicket", "runs"},
			{"100", "Pakistan", "1", "3.2", "1", "15"},
			{"100", "Pakistan", "2", "20.1", "2", "80"},
			{"101", "India", "1", "44.5", "3", "200"},
			{"102", "England", "3", "60", "1", "10"},
		},
		Partnerships: [][]string{
			{"Match ID", "team", "player1", "player2", "for wicket", "partnership runs", "partnership balls"},
			{"100", "Pakistan", "1", "2", "1", "60", "50"},
			{"101", "India", "2", "1", "2", "40", "0"},
			{"101", "India", "1", "3", "3", "25", "30"},
			{"101", "India", "3", "98", "4", "10", "12"},
		},
		MatchSummaries: [][]string{
			{"Match ID", "Match Date", "Team1 Name", "Team2 Name", "Match Winner", "Match Venue (Stadium)", "Toss Winner Choice", "Match Result Text"},
			{"100", "2019-06-16", "India", "Pakistan", "India", "Old Trafford", "bat", "India won by 89 runs"},
			{"101", "2020-01-14", "India", "Australia", "Australia", "Wankhede", "field", "Australia won by 10 wickets"},
			{"102", "not a date", "England", "India", "England", "Lord's", "bat", "England won by 5 runs"},
		},
	}
}

// WriteFixture writes f into a fresh temporary directory and returns it.
func WriteFixture(t *testing.T, f Fixture) string {
	t.Helper()
	dir := t.TempDir()
	WriteFixtureTo(t, dir, f)
	return dir
}

// WriteFixtureTo writes the non-nil tables of f into dir.
func WriteFixtureTo(t *testing.T, dir string, f Fixture) {
	t.Helper()
	tables := map[string][][]string{
		PlayersFile:        f.Players,
		BowlingFile:        f.Bowling,
		FallOfWicketsFile:  f.FallOfWickets,
		PartnershipsFile:   f.Partnerships,
		MatchSummariesFile: f.MatchSummaries,
	}
	for name, rows := range tables {
		if rows == nil {
			continue
		}
		WriteCSV(t, filepath.Join(dir, name), rows, f.BOM)
	}
}

// WriteCSV writes rows to path.
func WriteCSV(t *testing.T, path string, rows [][]string, bom bool) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	if bom {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			t.Fatalf("write bom: %v", err)
		}
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

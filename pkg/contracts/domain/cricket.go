package domain

// Player is a row of the player reference table.
type Player struct {
	ID   int64  `json:"player_id"`
	Name string `json:"player_name"`
}

// BowlingRecord is one bowler's figures in one innings.
// PlayerName is empty when the bowler id has no entry in the player table.
type BowlingRecord struct {
	MatchID    int64   `json:"match_id"`
	BowlerID   int64   `json:"bowler_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	Opposition string  `json:"opposition"`
	Overs      float64 `json:"overs"`
	Wickets    int     `json:"wickets"`
	Conceded   int     `json:"conceded"`
	// Economy is NaN when the source cell is empty or unparseable.
	Economy float64 `json:"-"`
}

// FallOfWicket records a single dismissal during an innings.
type FallOfWicket struct {
	MatchID    int64   `json:"match_id"`
	Team       string  `json:"team"`
	PlayerID   int64   `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Over       float64 `json:"over"`
	Wicket     int     `json:"wicket"`
	Runs       int     `json:"runs"`
}

// Partnership is the stand between two batsmen for one wicket.
type Partnership struct {
	MatchID     int64  `json:"match_id"`
	Team        string `json:"team"`
	Player1ID   int64  `json:"player1_id"`
	Player2ID   int64  `json:"player2_id"`
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
	ForWicket   int    `json:"for_wicket"`
	Runs        int    `json:"partnership_runs"`
	Balls       int    `json:"partnership_balls"`
}

// MatchSummary is the per-match result sheet.
type MatchSummary struct {
	MatchID    int64  `json:"match_id"`
	Date       string `json:"match_date"`
	Year       int    `json:"year"`
	Team1      string `json:"team1"`
	Team2      string `json:"team2"`
	Winner     string `json:"winner"`
	Venue      string `json:"venue"`
	TossChoice string `json:"toss_choice"`
	ResultText string `json:"result_text"`
}

// Phase is a contiguous range of overs within an innings.
type Phase string

const (
	PhasePowerplay Phase = "Powerplay"
	PhaseMiddle    Phase = "Middle"
	PhaseDeath     Phase = "Death"
	PhaseNone      Phase = "none"
)

// Phases lists the in-innings phases in playing order.
var Phases = []Phase{PhasePowerplay, PhaseMiddle, PhaseDeath}

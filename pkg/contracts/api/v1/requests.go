// Package api contains API contract definitions for the ODI analytics service.
// Version v1 represents the current stable API version.
package api

// View names accepted by the view endpoints.
const (
	ViewPhaseComparison     = "phase-comparison"
	ViewPhaseWickets        = "phase-wickets"
	ViewTeamPhaseBreakdown  = "team-phase-breakdown"
	ViewWicketsVsOpposition = "wickets-vs-opposition"
	ViewEconomyDistribution = "economy-distribution"
	ViewDismissalPositions  = "dismissal-positions"
	ViewTopPartners         = "top-partners"
	ViewProlificPairs       = "prolific-pairs"
	ViewTopPartnerships     = "top-partnerships"
	ViewRunRates            = "run-rates"
	ViewHeadToHead          = "head-to-head"
	ViewInningsProgression  = "innings-progression"
	ViewMatchPartnerships   = "match-partnerships"
	ViewMatchBowlers        = "match-bowlers"
	ViewTeamWickets         = "team-wickets"
	ViewTeamComparison      = "team-comparison"
	ViewMatchesPerYear      = "matches-per-year"
	ViewTopWinners          = "top-winners"
	ViewTossImpact          = "toss-impact"
	ViewTopVenues           = "top-venues"
)

// Views lists every view name in the order they are documented.
var Views = []string{
	ViewPhaseComparison,
	ViewPhaseWickets,
	ViewTeamPhaseBreakdown,
	ViewWicketsVsOpposition,
	ViewEconomyDistribution,
	ViewDismissalPositions,
	ViewTopPartners,
	ViewProlificPairs,
	ViewTopPartnerships,
	ViewRunRates,
	ViewHeadToHead,
	ViewInningsProgression,
	ViewMatchPartnerships,
	ViewMatchBowlers,
	ViewTeamWickets,
	ViewTeamComparison,
	ViewMatchesPerYear,
	ViewTopWinners,
	ViewTossImpact,
	ViewTopVenues,
}

// ViewRequest selects one view and carries the filters it needs.
// Fields a view does not use are ignored.
type ViewRequest struct {
	View    string   `json:"view" validate:"required,view"`
	Bowler  string   `json:"bowler,omitempty" validate:"omitempty,max=200"`
	Batsman string   `json:"batsman,omitempty" validate:"omitempty,max=200"`
	Team    string   `json:"team,omitempty" validate:"omitempty,max=100"`
	Team1   string   `json:"team1,omitempty" validate:"omitempty,max=100"`
	Team2   string   `json:"team2,omitempty" validate:"omitempty,max=100"`
	Teams   []string `json:"teams,omitempty" validate:"omitempty,max=50,dive,max=100"`
	MatchID int64    `json:"match_id,omitempty" validate:"omitempty,gt=0"`
	TopN    int      `json:"top_n,omitempty" validate:"omitempty,gte=0,lte=1000"`
	Years   []int    `json:"years,omitempty" validate:"omitempty,dive,gte=1900,lte=2100"`
	Venues  []string `json:"venues,omitempty" validate:"omitempty,max=200,dive,max=200"`
}

// ExportRequest is a view request plus the file format to produce.
type ExportRequest struct {
	ViewRequest
	Format string `json:"format" validate:"required,oneof=csv xlsx"`
}

// IsView reports whether name is a known view.
func IsView(name string) bool {
	for _, v := range Views {
		if v == name {
			return true
		}
	}
	return false
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crickalytics/internal/dataset"
	"crickalytics/pkg/contracts/domain"
)

func summaryEngine() *Engine {
	summaries := []domain.MatchSummary{
		{MatchID: 1, Year: 2019, Team1: "India", Team2: "Pakistan", Winner: "India", Venue: "Old Trafford", TossChoice: "bat", ResultText: "won by runs"},
		{MatchID: 2, Year: 2019, Team1: "India", Team2: "Australia", Winner: "Australia", Venue: "Wankhede", TossChoice: "field", ResultText: "won by wickets"},
		{MatchID: 3, Year: 2020, Team1: "England", Team2: "India", Winner: "England", Venue: "Lord's", TossChoice: "bat", ResultText: "won by runs"},
		{MatchID: 4, Year: 2020, Team1: "England", Team2: "Australia", Winner: "England", Venue: "Lord's", TossChoice: "bat", ResultText: "won by wickets"},
		{MatchID: 5, Year: 0, Team1: "Oman", Team2: "Nepal", Winner: "", Venue: "", TossChoice: "", ResultText: "no result"},
	}
	return NewEngine(dataset.NewSnapshot(nil, nil, nil, nil, summaries), DefaultPhaseBoundaries())
}

func TestMatchesPerYear(t *testing.T) {
	e := summaryEngine()

	assert.Equal(t, []YearCount{{2019, 2}, {2020, 2}}, e.MatchesPerYear(SummaryFilter{}))
	assert.Equal(t, []YearCount{{2020, 2}}, e.MatchesPerYear(SummaryFilter{Years: []int{2020}}))
	assert.Equal(t, []YearCount{{2019, 1}}, e.MatchesPerYear(SummaryFilter{Venues: []string{"Wankhede"}}))
}

func TestTopWinners(t *testing.T) {
	e := summaryEngine()

	assert.Equal(t, []Count{{"England", 2}, {"Australia", 1}, {"India", 1}}, e.TopWinners(SummaryFilter{}, 10))
	assert.Equal(t, []Count{{"England", 2}}, e.TopWinners(SummaryFilter{}, 1))

	// A team filter matches either side or the winner.
	assert.Equal(t, []Count{{"Australia", 1}, {"England", 1}, {"India", 1}},
		e.TopWinners(SummaryFilter{Teams: []string{"India"}}, 10))
}

func TestTossImpact(t *testing.T) {
	rows := summaryEngine().TossImpact(SummaryFilter{})
	assert.Equal(t, []TossOutcome{
		{Choice: "bat", Result: "won by runs", Count: 2},
		{Choice: "bat", Result: "won by wickets", Count: 1},
		{Choice: "field", Result: "won by wickets", Count: 1},
	}, rows)
}

func TestTopVenues(t *testing.T) {
	e := summaryEngine()
	assert.Equal(t, []Count{{"Lord's", 2}, {"Old Trafford", 1}, {"Wankhede", 1}}, e.TopVenues(SummaryFilter{}, 15))
	assert.Empty(t, e.TopVenues(SummaryFilter{Years: []int{1990}}, 15))
}

package entities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crickalytics/internal/dataset"
	"crickalytics/internal/shared/testutil"
	"crickalytics/pkg/contracts/domain"
)

func sampleResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := testutil.WriteFixture(t, testutil.SampleFixture())
	snap, err := dataset.NewLoader(nil).Load(context.Background(), dataset.DefaultSources(dir))
	require.NoError(t, err)
	return NewResolver(snap)
}

func TestResolver_Lists(t *testing.T) {
	r := sampleResolver(t)

	assert.Equal(t, []string{"Y"}, r.Bowlers())
	assert.Equal(t, []string{"A", "B", "C"}, r.Batsmen())
	assert.Equal(t, []string{"Australia", "India", "Pakistan"}, r.Teams())
	assert.Equal(t, []int64{100, 101}, r.Matches())
	assert.Equal(t, []string{"India", "Pakistan"}, r.PartnershipTeams())
	assert.Equal(t, []int{2019, 2020}, r.Years())
	assert.Equal(t, []string{"Lord's", "Old Trafford", "Wankhede"}, r.Venues())
	assert.Equal(t, []string{"Australia", "England", "India", "Pakistan"}, r.SummaryTeams())
}

func TestResolver_BowlersRequireWickets(t *testing.T) {
	snap := dataset.NewSnapshot(map[int64]string{1: "X", 2: "Y"},
		[]domain.BowlingRecord{
			{MatchID: 1, BowlerID: 1, PlayerName: "X", Team: "A", Opposition: "B", Overs: 5, Wickets: 0},
			{MatchID: 1, BowlerID: 2, PlayerName: "Y", Team: "A", Opposition: "B", Overs: 6, Wickets: 2},
		}, nil, nil, nil)

	assert.Equal(t, []string{"Y"}, NewResolver(snap).Bowlers())
}

func TestResolver_Opponents(t *testing.T) {
	r := sampleResolver(t)

	assert.Equal(t, []string{"Australia", "Pakistan"}, r.Opponents("India"))
	assert.Equal(t, []string{"India"}, r.Opponents("Australia"))
	assert.Empty(t, r.Opponents("Nepal"))
}

func TestResolver_EmptySnapshot(t *testing.T) {
	r := NewResolver(dataset.NewSnapshot(nil, nil, nil, nil, nil))

	assert.Empty(t, r.Bowlers())
	assert.Empty(t, r.Batsmen())
	assert.Empty(t, r.Teams())
	assert.Empty(t, r.Matches())
	assert.Empty(t, r.Years())
}

func TestResolver_Validate(t *testing.T) {
	r := sampleResolver(t)

	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"known bowler", r.ValidateBowler("Y"), ""},
		{"bowler without wickets", r.ValidateBowler("X"), "bowler"},
		{"known batsman", r.ValidateBatsman("C"), ""},
		{"empty batsman", r.ValidateBatsman(""), "batsman"},
		{"known team", r.ValidateTeam("team", "India"), ""},
		{"unknown team1", r.ValidateTeam("team1", "Mars"), "team1"},
		{"opponent that met", r.ValidateOpponent("Australia", "India"), ""},
		{"opponent never met", r.ValidateOpponent("Australia", "Pakistan"), "team2"},
		{"opponent of unknown team", r.ValidateOpponent("Nepal", "India"), "team2"},
		{"known match", r.ValidateMatch(101), ""},
		{"match over 50 overs only", r.ValidateMatch(102), "match_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field == "" {
				assert.NoError(t, tt.err)
				return
			}
			var invalid *InvalidFilterError
			require.ErrorAs(t, tt.err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestResolver_FilterKnown(t *testing.T) {
	r := sampleResolver(t)

	known, dropped := r.FilterKnownTeams([]string{"India", "Mars", "India", "Pakistan"})
	assert.Equal(t, []string{"India", "Pakistan"}, known)
	assert.Equal(t, []string{"Mars"}, dropped)

	years, droppedYears := r.FilterKnownYears([]int{2020, 1999})
	assert.Equal(t, []int{2020}, years)
	assert.Equal(t, []int{1999}, droppedYears)

	venues, droppedVenues := r.FilterKnownVenues([]string{"Wankhede"})
	assert.Equal(t, []string{"Wankhede"}, venues)
	assert.Empty(t, droppedVenues)
}

func TestClampTopN(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultTopN},
		{-3, DefaultTopN},
		{1, MinTopN},
		{5, 5},
		{25, 25},
		{50, 50},
		{500, MaxTopN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampTopN(tt.in), "ClampTopN(%d)", tt.in)
	}
}

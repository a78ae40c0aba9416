package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crickalytics/internal/dataset"
	"crickalytics/pkg/contracts/domain"
)

func stand(team, p1, p2 string, wicket, runs, balls int) domain.Partnership {
	return domain.Partnership{Team: team, Player1Name: p1, Player2Name: p2, ForWicket: wicket, Runs: runs, Balls: balls}
}

func TestWicketLabel(t *testing.T) {
	tests := map[int]string{
		1:  "1st Wicket",
		2:  "2nd Wicket",
		3:  "3rd Wicket",
		4:  "4th Wicket",
		10: "10th Wicket",
		11: "11th Wicket",
	}
	for n, want := range tests {
		assert.Equal(t, want, WicketLabel(n))
	}
}

func TestDismissalPositions(t *testing.T) {
	e := engineOf(nil, []domain.FallOfWicket{
		{PlayerName: "A", Wicket: 3},
		{PlayerName: "A", Wicket: 1},
		{PlayerName: "A", Wicket: 3},
		{PlayerName: "B", Wicket: 2},
		{PlayerName: "A", Wicket: 4},
	}, nil)

	rows, err := e.DismissalPositions("A")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1st Wicket", rows[0].Label)
	assert.Equal(t, "3rd Wicket", rows[1].Label)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, "4th Wicket", rows[2].Label)

	total := 0.0
	for _, r := range rows {
		total += r.Percent
	}
	assert.InDelta(t, 100, total, 1e-9)

	none, err := e.DismissalPositions("Nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDismissalPositions_RequiresWicketColumn(t *testing.T) {
	snap := dataset.NewSnapshot(nil, nil, []domain.FallOfWicket{{PlayerName: "A"}}, nil, nil).
		WithoutColumns(dataset.TableFallOfWickets, dataset.ColWicket)

	_, err := NewEngine(snap, DefaultPhaseBoundaries()).DismissalPositions("A")
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestTopPartners(t *testing.T) {
	e := engineOf(nil, nil, []domain.Partnership{
		stand("X", "A", "B", 1, 50, 40),
		stand("X", "C", "A", 2, 70, 60),
		stand("X", "B", "A", 1, 30, 20),
		stand("X", "A", "", 3, 99, 80),
		stand("X", "D", "E", 1, 500, 300),
	})

	rows, err := e.TopPartners("A", 10)
	require.NoError(t, err)
	assert.Equal(t, []PartnerRuns{{Partner: "B", Runs: 80}, {Partner: "C", Runs: 70}}, rows)

	one, err := e.TopPartners("A", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestProlificPairs(t *testing.T) {
	t.Run("pairs are order independent", func(t *testing.T) {
		e := engineOf(nil, nil, []domain.Partnership{
			stand("X", "A", "B", 1, 60, 50),
			stand("X", "B", "A", 1, 40, 30),
		})

		rows, err := e.ProlificPairs(10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, PairRuns{Player1: "A", Player2: "B", Runs: 100}, rows[0])
		assert.Equal(t, "A & B", rows[0].Pair())
	})

	t.Run("skips unresolved names and truncates", func(t *testing.T) {
		e := engineOf(nil, nil, []domain.Partnership{
			stand("X", "A", "B", 1, 10, 5),
			stand("X", "C", "D", 1, 30, 5),
			stand("X", "E", "F", 1, 20, 5),
			stand("X", "", "F", 1, 900, 5),
		})

		rows, err := e.ProlificPairs(2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "C & D", rows[0].Pair())
		assert.Equal(t, "E & F", rows[1].Pair())
	})
}

func TestTopPartnerships(t *testing.T) {
	e := engineOf(nil, nil, []domain.Partnership{
		stand("X", "A", "B", 1, 60, 50),
		stand("X", "", "B", 2, 300, 50),
		stand("X", "C", "D", 3, 90, 50),
		stand("X", "E", "F", 4, 60, 50),
	})

	rows, err := e.TopPartnerships(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 90, rows[0].Runs)
	assert.Equal(t, "A & B", rows[1].Pair(), "ties keep source order")
}

func TestRunRates(t *testing.T) {
	e := engineOf(nil, nil, []domain.Partnership{
		stand("India", "A", "B", 1, 60, 50),
		stand("India", "A", "C", 2, 40, 0),
		stand("Pakistan", "D", "E", 1, 30, 30),
		stand("Oman", "F", "G", 1, 10, 20),
	})

	rows, err := e.RunRates([]string{"India", "Pakistan"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Greater(t, r.Balls, 0)
	}
	assert.Equal(t, 120.0, rows[0].RunRate)
	assert.Equal(t, 100.0, rows[1].RunRate)

	all, err := e.RunRates(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := e.RunRates([]string{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

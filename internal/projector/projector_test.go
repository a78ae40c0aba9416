package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorical_ColorsByFirstSeen(t *testing.T) {
	chart := Categorical([]Point{
		{Label: "India", Value: 5},
		{Label: "", Value: 2},
		{Label: "Pakistan", Value: 3},
	})

	assert.Equal(t, KindCategorical, chart.Kind)
	assert.Equal(t, []string{"India", UnknownLabel, "Pakistan"}, chart.Categories)
	assert.Equal(t, Palette[0], chart.Data[0].Color)
	assert.Equal(t, Palette[1], chart.Data[1].Color)
	assert.Equal(t, Palette[2], chart.Data[2].Color)
	assert.Equal(t, 3.0, chart.Data[2].Value)
}

func TestCategorical_PaletteCycles(t *testing.T) {
	points := make([]Point, len(Palette)+2)
	for i := range points {
		points[i] = Point{Label: string(rune('A' + i)), Value: float64(i)}
	}

	chart := Categorical(points)
	assert.Equal(t, Palette[0], chart.Data[len(Palette)].Color)
	assert.Equal(t, Palette[1], chart.Data[len(Palette)+1].Color)
}

func TestShare_RoundsPercentages(t *testing.T) {
	chart := Share([]Point{
		{Label: "1st Wicket", Value: 1},
		{Label: "2nd Wicket", Value: 1},
		{Label: "3rd Wicket", Value: 1},
	})

	total := 0.0
	for _, d := range chart.Data {
		require.NotNil(t, d.Percent)
		assert.Equal(t, 33.3, *d.Percent)
		assert.Equal(t, 1.0, d.Value)
		total += *d.Percent
	}
	assert.InDelta(t, 100, total, 0.15)
}

func TestShare_ZeroTotal(t *testing.T) {
	chart := Share([]Point{{Label: "a", Value: 0}})
	assert.Nil(t, chart.Data[0].Percent)
	assert.Empty(t, Share(nil).Data)
}

func TestGrouped(t *testing.T) {
	chart := Grouped([]Point{
		{Label: "India", Series: "Powerplay", Value: 4},
		{Label: "Pakistan", Series: "Powerplay", Value: 5},
		{Label: "India", Series: "Death", Value: 6},
	})

	assert.Equal(t, []string{"India", "Pakistan"}, chart.Categories)
	assert.Equal(t, []string{"Powerplay", "Death"}, chart.Series)
	assert.Equal(t, chart.Data[0].Color, chart.Data[1].Color)
	assert.NotEqual(t, chart.Data[0].Color, chart.Data[2].Color)
}

// Package projector turns aggregate rows into label/value chart data with
// stable colour keys. It never changes the underlying values.
package projector

import (
	"math"
)

// Palette is the categorical colour cycle.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// UnknownLabel is shown for an unresolved name.
const UnknownLabel = "Unknown"

// Point is one input value. Series is optional and only used by Grouped.
type Point struct {
	Label  string
	Series string
	Value  float64
	// Extra carries hover fields through to the output unchanged.
	Extra map[string]any
}

// Datum is one projected chart element.
type Datum struct {
	Label   string         `json:"label"`
	Series  string         `json:"series,omitempty"`
	Value   float64        `json:"value"`
	Percent *float64       `json:"percent,omitempty"`
	Color   string         `json:"color"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Chart is a projected series set.
type Chart struct {
	Kind       string   `json:"kind"`
	Categories []string `json:"categories"`
	Series     []string `json:"series,omitempty"`
	Data       []Datum  `json:"data"`
}

// Chart kinds.
const (
	KindCategorical = "categorical"
	KindShare       = "share"
	KindGrouped     = "grouped"
)

// colorer assigns palette colours in first-seen order.
type colorer struct {
	index map[string]int
}

func newColorer() *colorer { return &colorer{index: make(map[string]int)} }

func (c *colorer) color(key string) string {
	i, ok := c.index[key]
	if !ok {
		i = len(c.index)
		c.index[key] = i
	}
	return Palette[i%len(Palette)]
}

// Label returns name, or UnknownLabel for an empty name.
func Label(name string) string {
	if name == "" {
		return UnknownLabel
	}
	return name
}

// Categorical colours each category by first appearance.
func Categorical(points []Point) Chart {
	c := newColorer()
	chart := Chart{Kind: KindCategorical, Categories: make([]string, 0, len(points)), Data: make([]Datum, 0, len(points))}
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		label := Label(p.Label)
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			chart.Categories = append(chart.Categories, label)
		}
		chart.Data = append(chart.Data, Datum{Label: label, Value: p.Value, Color: c.color(label), Extra: p.Extra})
	}
	return chart
}

// Share is Categorical plus each value's percentage of the total, rounded to
// one decimal place. Percentages are omitted when the total is zero.
func Share(points []Point) Chart {
	chart := Categorical(points)
	chart.Kind = KindShare
	total := 0.0
	for _, p := range points {
		total += p.Value
	}
	if total == 0 {
		return chart
	}
	for i := range chart.Data {
		pct := math.Round(chart.Data[i].Value/total*1000) / 10
		chart.Data[i].Percent = &pct
	}
	return chart
}

// Grouped colours by series and orders both axes by first appearance.
func Grouped(points []Point) Chart {
	c := newColorer()
	chart := Chart{Kind: KindGrouped, Categories: []string{}, Series: []string{}, Data: make([]Datum, 0, len(points))}
	cats := make(map[string]struct{})
	series := make(map[string]struct{})
	for _, p := range points {
		label, s := Label(p.Label), Label(p.Series)
		if _, ok := cats[label]; !ok {
			cats[label] = struct{}{}
			chart.Categories = append(chart.Categories, label)
		}
		if _, ok := series[s]; !ok {
			series[s] = struct{}{}
			chart.Series = append(chart.Series, s)
		}
		chart.Data = append(chart.Data, Datum{Label: label, Series: s, Value: p.Value, Color: c.color(s), Extra: p.Extra})
	}
	return chart
}

// Package analytics implements the grouping and aggregation behind every
// dashboard view. All functions read an immutable dataset snapshot and
// return freshly allocated rows; empty input yields zero rows, not an error.
package analytics

import (
	"math"

	"crickalytics/internal/dataset"
)

// Engine computes aggregates over one snapshot.
type Engine struct {
	snap   *dataset.Snapshot
	phases PhaseBoundaries
}

// NewEngine binds snap to the given phase definition.
func NewEngine(snap *dataset.Snapshot, phases PhaseBoundaries) *Engine {
	return &Engine{snap: snap, phases: phases}
}

// Phases returns the phase definition in use.
func (e *Engine) Phases() PhaseBoundaries { return e.phases }

// Optional wraps a float that may be NaN so it encodes as JSON null.
func Optional(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Round rounds f half away from zero to the given number of decimals.
func Round(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(f*p) / p
}

// RunRate is runs per hundred balls. ok is false when balls is not positive.
func RunRate(runs, balls int) (float64, bool) {
	if balls <= 0 {
		return 0, false
	}
	return float64(runs) / float64(balls) * 100, true
}

// meanAcc accumulates a mean that skips NaN values.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m meanAcc) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

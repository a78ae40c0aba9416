package analytics

import "math"

// quantile interpolates linearly between the closest ranks of sorted.
// sorted must be non-empty and ascending.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)]*(1-frac) + sorted[int(hi)]*frac
}

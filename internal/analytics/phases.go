package analytics

import (
	"fmt"

	"crickalytics/pkg/contracts/domain"
)

// PhaseBoundaries splits an innings into half-open over ranges:
// Powerplay (0, PowerplayEnd], Middle (PowerplayEnd, MiddleEnd] and
// Death (MiddleEnd, InningsOvers].
type PhaseBoundaries struct {
	PowerplayEnd float64 `json:"powerplay_end"`
	MiddleEnd    float64 `json:"middle_end"`
	InningsOvers float64 `json:"innings_overs"`
}

// DefaultPhaseBoundaries is the standard 10/40/50 split.
func DefaultPhaseBoundaries() PhaseBoundaries {
	return PhaseBoundaries{PowerplayEnd: 10, MiddleEnd: 40, InningsOvers: 50}
}

// Validate checks that the boundaries are strictly increasing and positive.
func (p PhaseBoundaries) Validate() error {
	if p.PowerplayEnd <= 0 || p.PowerplayEnd >= p.MiddleEnd || p.MiddleEnd >= p.InningsOvers {
		return fmt.Errorf("phase boundaries must satisfy 0 < powerplay_end < middle_end < innings_overs, got %v/%v/%v",
			p.PowerplayEnd, p.MiddleEnd, p.InningsOvers)
	}
	return nil
}

// Classify maps an over value to its phase. Values outside (0, InningsOvers]
// are PhaseNone.
func (p PhaseBoundaries) Classify(overs float64) domain.Phase {
	switch {
	case overs <= 0 || overs > p.InningsOvers:
		return domain.PhaseNone
	case overs <= p.PowerplayEnd:
		return domain.PhasePowerplay
	case overs <= p.MiddleEnd:
		return domain.PhaseMiddle
	default:
		return domain.PhaseDeath
	}
}

// Range describes one phase for display.
type Range struct {
	Phase domain.Phase `json:"phase"`
	From  float64      `json:"from_exclusive"`
	To    float64      `json:"to_inclusive"`
}

// Ranges lists the phases in playing order.
func (p PhaseBoundaries) Ranges() []Range {
	return []Range{
		{domain.PhasePowerplay, 0, p.PowerplayEnd},
		{domain.PhaseMiddle, p.PowerplayEnd, p.MiddleEnd},
		{domain.PhaseDeath, p.MiddleEnd, p.InningsOvers},
	}
}

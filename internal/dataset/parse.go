package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// parseFloat parses a numeric cell. Empty and "nan" cells are not numbers.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseID parses an identifier cell. Float notation such as "1234.0" is
// accepted because the cleaning step wrote some id columns as floats.
func parseID(s string) (int64, bool) {
	f, ok := parseFloat(s)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// parseCount parses an optional integer cell, yielding 0 when unparseable or
// outside the int range.
func parseCount(s string) int {
	f, ok := parseFloat(s)
	if !ok || f < math.MinInt || f >= math.MaxInt {
		return 0
	}
	return int(f)
}

// parseOptionalFloat returns NaN for an empty or unparseable cell.
func parseOptionalFloat(s string) float64 {
	f, ok := parseFloat(s)
	if !ok {
		return math.NaN()
	}
	return f
}

// isSentinel reports whether a team cell is a numeric placeholder or empty.
func isSentinel(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006/01/02",
}

// parseYear extracts the year of a match date, or 0 when no layout matches.
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year()
		}
	}
	return 0
}

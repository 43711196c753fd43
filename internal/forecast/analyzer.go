package forecast

import (
	"errors"
	"sort"
	"time"
)

// ErrEmptySeries is returned when an empty series is analyzed. Callers are
// expected to skip the affected location and continue with others.
var ErrEmptySeries = errors.New("forecast: empty series")

// Analyze computes the freeze outlook for a series against a threshold
// temperature and a warning lead window. It is a pure function: the input
// series is never mutated (an unsorted series is copied and sorted), and
// identical inputs always produce identical results.
func Analyze(series Series, thresholdC float64, warningWindow time.Duration) (Analysis, error) {
	if len(series) == 0 {
		return Analysis{}, ErrEmptySeries
	}

	s := series
	if !sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) }) {
		s = make(Series, len(series))
		copy(s, series)
		sort.Slice(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
	}

	now := s[0].Timestamp
	a := Analysis{
		Now:         now,
		CurrentTemp: s[0].Temperature,
	}
	a.BelowFreezing = a.CurrentTemp <= thresholdC

	// Only the first crossing matters for scheduling a warning; later
	// qualifying samples are ignored.
	for _, p := range s {
		if p.Temperature <= thresholdC {
			a.HasFreeze = true
			a.FirstFreezeTime = p.Timestamp
			a.FirstFreezeTemp = p.Temperature
			break
		}
	}

	if a.HasFreeze && a.FirstFreezeTime.After(now) {
		a.WarningDue = a.FirstFreezeTime.Sub(now) <= warningWindow
	}

	if a.HasFreeze && !a.BelowFreezing {
		a.FreezeExpectedToday = a.FirstFreezeTime.Before(nextMidnight(now))
	}

	a.AllClear = !a.HasFreeze
	return a, nil
}

// nextMidnight returns the first midnight strictly after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

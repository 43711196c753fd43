package forecast

import (
	"time"
)

// Point is a single forecast sample.
type Point struct {
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
}

// Series is a time-ascending sequence of forecast samples for one
// coordinate. A successfully fetched series is never empty.
type Series []Point

// Analysis is the derived freeze outlook for one location, computed fresh
// from a series on every call.
type Analysis struct {
	// Now is the timestamp of the earliest sample, taken as the current reading.
	Now         time.Time `json:"now"`
	CurrentTemp float64   `json:"currentTempC"`

	// BelowFreezing reports whether the current reading is at or below threshold.
	BelowFreezing bool `json:"isBelowFreezing"`

	// First sample at or below threshold, when one exists.
	HasFreeze       bool      `json:"hasFreeze"`
	FirstFreezeTime time.Time `json:"firstFreezeTime,omitempty"`
	FirstFreezeTemp float64   `json:"firstFreezeTemp,omitempty"`

	// WarningDue reports a strictly future freeze within the warning window.
	WarningDue bool `json:"willFreezeWithinWarningWindow"`

	// FreezeExpectedToday reports a not-yet-current freeze before the next
	// midnight boundary of Now's timezone.
	FreezeExpectedToday bool `json:"freezeExpectedToday"`

	// AllClear reports that no sample in the series reaches the threshold.
	AllClear bool `json:"allClear"`
}

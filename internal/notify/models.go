package notify

import "time"

// Kind enumerates the notification kinds the engine can emit.
type Kind string

const (
	// KindWarning announces a freeze expected within the warning window.
	KindWarning Kind = "warning"
	// KindNowFreezing announces that the current reading is at or below threshold.
	KindNowFreezing Kind = "now_freezing"
	// KindAllClear resolves a previously emitted warning or now_freezing.
	KindAllClear Kind = "all_clear"
	// KindMorningSummary is the once-daily freeze outlook digest. It lives
	// outside the per-location state machine and never resolves or
	// suppresses the other kinds.
	KindMorningSummary Kind = "morning_summary"
)

// Intent is what the engine hands the caller when a transition fires.
// Recording it and marking it sent are the caller's responsibility.
type Intent struct {
	LocationID  string    `json:"locationId"`
	Kind        Kind      `json:"kind"`
	Temperature float64   `json:"temperatureC"`
	EventTime   time.Time `json:"eventTime"`
}

// Record is the last persisted notification for a location, as reported
// by the store. Resolved means a later all_clear has closed it out.
type Record struct {
	ID         string
	LocationID string
	Kind       Kind
	Resolved   bool
	CreatedAt  time.Time
}

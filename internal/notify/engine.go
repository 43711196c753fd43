package notify

import (
	"sync"

	"github.com/akoval/frostwatch/internal/forecast"
)

// Engine decides, per location and per tick, which notification (if any)
// a fresh analysis warrants, given the location's last recorded
// notification. It emits at most one intent per location per tick and
// never re-emits the kind of a still-unresolved condition.
type Engine struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine() *Engine {
	return &Engine{locks: make(map[string]*sync.Mutex)}
}

// WithLocation runs fn while holding the lock for locationID. Ticks may
// overlap, so the read-last/decide/record sequence for one location must
// run under this lock to keep duplicate emissions out.
func (e *Engine) WithLocation(locationID string, fn func() error) error {
	e.mu.Lock()
	lock, ok := e.locks[locationID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[locationID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Decide applies the transition rules in priority order and returns the
// intent to emit, or nil when the tick changes nothing. last is the most
// recent recorded notification for the location, nil when none exists.
// Callers must hold the location's lock (WithLocation) and, on an
// all_clear intent, mark last resolved when recording.
func (e *Engine) Decide(locationID string, a forecast.Analysis, last *Record) *Intent {
	unresolved := last != nil && !last.Resolved

	switch {
	case a.BelowFreezing:
		if unresolved && last.Kind == KindNowFreezing {
			return nil
		}
		return &Intent{
			LocationID:  locationID,
			Kind:        KindNowFreezing,
			Temperature: a.CurrentTemp,
			EventTime:   a.Now,
		}

	case a.WarningDue:
		if unresolved && last.Kind == KindWarning {
			return nil
		}
		return &Intent{
			LocationID:  locationID,
			Kind:        KindWarning,
			Temperature: a.FirstFreezeTemp,
			EventTime:   a.FirstFreezeTime,
		}

	case a.AllClear:
		if unresolved && (last.Kind == KindWarning || last.Kind == KindNowFreezing) {
			return &Intent{
				LocationID:  locationID,
				Kind:        KindAllClear,
				Temperature: a.CurrentTemp,
				EventTime:   a.Now,
			}
		}
		return nil
	}
	return nil
}

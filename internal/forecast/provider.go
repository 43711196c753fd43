package forecast

import (
	"context"
	"fmt"

	"github.com/akoval/frostwatch/internal/geo"
)

// Provider abstracts the upstream forecast source.
type Provider interface {
	Name() string
	FetchSeries(ctx context.Context, coord geo.Coordinate) (Series, error)
}

// ProviderError reports an upstream transport or parse failure. It is
// surfaced to callers unmodified; nothing in this package falls back to
// stale data on a failed fetch.
type ProviderError struct {
	Provider string
	Status   int // HTTP status when one was received, 0 otherwise
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

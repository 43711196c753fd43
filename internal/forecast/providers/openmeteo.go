package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/geo"
)

// openMeteoTimeLayout is the hourly timestamp format Open-Meteo returns
// when asked for UTC times.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider fetches hourly temperature forecasts from Open-Meteo.
// No API key required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchSeries returns the hourly temperature series for coord, truncated
// so the earliest sample is the current hour. Any transport, status, or
// payload failure surfaces as a *forecast.ProviderError.
func (p *OpenMeteoProvider) FetchSeries(ctx context.Context, coord geo.Coordinate) (forecast.Series, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coord.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", coord.Longitude))
		values.Set("hourly", "temperature_2m")
		values.Set("forecast_days", "2")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, p.wrapErr("fetch failed", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, p.wrapErr("decode failed", err)
	}

	if len(payload.Hourly.Time) == 0 || len(payload.Hourly.Time) != len(payload.Hourly.Temperature) {
		return nil, p.wrapErr("malformed hourly payload", nil)
	}

	// Drop hours already behind us so the series starts at the current
	// reading; keep the hour in progress.
	cutoff := p.now().Truncate(time.Hour)

	series := make(forecast.Series, 0, len(payload.Hourly.Time))
	for i, raw := range payload.Hourly.Time {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, raw, time.UTC)
		if err != nil {
			return nil, p.wrapErr(fmt.Sprintf("bad timestamp %q", raw), err)
		}
		if ts.Before(cutoff) {
			continue
		}
		series = append(series, forecast.Point{
			Timestamp:   ts,
			Temperature: payload.Hourly.Temperature[i],
		})
	}

	if len(series) == 0 {
		return nil, p.wrapErr("payload contains no future samples", nil)
	}
	return series, nil
}

func (p *OpenMeteoProvider) wrapErr(msg string, err error) *forecast.ProviderError {
	pe := &forecast.ProviderError{
		Provider: p.name,
		Message:  msg,
		Err:      err,
	}
	var se *statusError
	if errors.As(err, &se) {
		pe.Status = se.status
	}
	if err != nil {
		pe.Message = fmt.Sprintf("%s: %v", msg, err)
	}
	return pe
}

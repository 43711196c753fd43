package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/akoval/frostwatch/internal/delivery"
	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/geo"
	"github.com/akoval/frostwatch/internal/notify"
	"github.com/akoval/frostwatch/internal/store"
	"github.com/akoval/frostwatch/internal/watch"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchSeries(_ context.Context, _ geo.Coordinate) (forecast.Series, error) {
	return forecast.Series{
		{Timestamp: time.Now().UTC().Truncate(time.Hour), Temperature: 5},
	}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	client := forecast.NewClient(forecast.NewGeoCache(nil), stubProvider{}, 5000, time.Minute)
	svc := watch.New(st, client, notify.NewEngine(), delivery.LogNotifier{}, watch.Config{
		FreezeThresholdC: 0,
		WarningWindow:    6 * time.Hour,
		ClusterRadiusM:   5000,
		FetchTimeout:     5 * time.Second,
	})

	app := fiber.New()
	RegisterRoutes(app, st, svc, "")
	return app, st
}

func TestCreateLocationValidation(t *testing.T) {
	app, _ := newTestApp(t)

	// Missing coordinates and address.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations",
		strings.NewReader(`{"owner_id":"alice","name":"Vineyard"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Latitude out of range.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/locations",
		strings.NewReader(`{"owner_id":"alice","name":"Vineyard","latitude":91,"longitude":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Address-based registration without a geocoder key configured.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/locations",
		strings.NewReader(`{"owner_id":"alice","name":"Vineyard","address":{"city":"Paris","country":"FR"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCreateAndListLocations(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations",
		strings.NewReader(`{"owner_id":"alice","name":"Vineyard","latitude":48.8566,"longitude":2.3522}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	// Duplicate name for the same owner conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/locations",
		strings.NewReader(`{"owner_id":"alice","name":"Vineyard","latitude":48.8566,"longitude":2.3522}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/locations?owner_id=alice", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestDeleteLocationNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/locations/does-not-exist", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestListNotificationsRequiresOwner(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestAnalyzeLocation(t *testing.T) {
	app, st := newTestApp(t)

	loc, err := st.CreateLocation("alice", "Vineyard", geo.Coordinate{Latitude: 48.8566, Longitude: 2.3522})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+loc.ID+"/analysis", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/locations/missing/analysis", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

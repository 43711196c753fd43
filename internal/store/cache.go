package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/geo"
)

// The forecast_cache table is the write-through backing of the in-memory
// GeoCache. Series are stored as JSON payloads; one row per exact
// coordinate key.

// UpsertForecast inserts or replaces the cached series for coord.
func (s *Store) UpsertForecast(coord geo.Coordinate, series forecast.Series, expiresAt time.Time) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO forecast_cache (coord_key, latitude, longitude, payload, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(coord_key) DO UPDATE SET
		   payload = excluded.payload,
		   expires_at = excluded.expires_at`,
		coord.Key(), coord.Latitude, coord.Longitude, payload, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert forecast cache: %w", err)
	}
	return nil
}

// GetForecast returns the cached series for exactly coord regardless of
// expiry; callers check expiresAt themselves.
func (s *Store) GetForecast(coord geo.Coordinate) (forecast.Series, time.Time, error) {
	row := s.db.QueryRow(
		`SELECT payload, expires_at FROM forecast_cache WHERE coord_key = ?`,
		coord.Key())

	var payload []byte
	var expiresAt time.Time
	err := row.Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get forecast cache: %w", err)
	}

	var series forecast.Series
	if err := json.Unmarshal(payload, &series); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal cached series: %w", err)
	}
	return series, expiresAt, nil
}

// UnexpiredForecasts returns every cache row whose expiry is after now,
// used to warm the in-memory cache at startup.
func (s *Store) UnexpiredForecasts(now time.Time) ([]forecast.CachedEntry, error) {
	rows, err := s.db.Query(
		`SELECT latitude, longitude, payload, expires_at
		 FROM forecast_cache WHERE expires_at > ?`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list unexpired forecasts: %w", err)
	}
	defer rows.Close()

	var entries []forecast.CachedEntry
	for rows.Next() {
		var e forecast.CachedEntry
		var payload []byte
		if err := rows.Scan(&e.Coord.Latitude, &e.Coord.Longitude, &payload, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan forecast cache row: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Series); err != nil {
			return nil, fmt.Errorf("unmarshal cached series: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteExpiredForecasts removes rows whose expiry has passed and returns
// how many were deleted.
func (s *Store) DeleteExpiredForecasts(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM forecast_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired forecasts: %w", err)
	}
	return res.RowsAffected()
}

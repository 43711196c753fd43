package store

import (
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		name       TEXT NOT NULL,
		latitude   REAL NOT NULL,
		longitude  REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (owner_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id          TEXT PRIMARY KEY,
		location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		temperature REAL NOT NULL,
		event_time  TIMESTAMP NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		sent_at     TIMESTAMP,
		resolved    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_location_created
		ON notifications(location_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS forecast_cache (
		coord_key  TEXT PRIMARY KEY,
		latitude   REAL NOT NULL,
		longitude  REAL NOT NULL,
		payload    TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forecast_cache_expires
		ON forecast_cache(expires_at)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

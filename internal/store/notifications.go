package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akoval/frostwatch/internal/notify"
)

// Notification is a persisted notification row, joined with its location
// name for owner-facing listings.
type Notification struct {
	ID           string      `json:"id"`
	LocationID   string      `json:"locationId"`
	LocationName string      `json:"locationName,omitempty"`
	Kind         notify.Kind `json:"kind"`
	Temperature  float64     `json:"temperatureC"`
	EventTime    time.Time   `json:"eventTime"`
	CreatedAt    time.Time   `json:"createdAt"`
	SentAt       *time.Time  `json:"sentAt,omitempty"`
	Resolved     bool        `json:"resolved"`
}

// RecordNotification persists an intent and returns the new notification
// id. An all_clear is stored already resolved since it represents the
// condition's end, not a new unresolved condition. Morning summaries are
// stored for audit but excluded from LastNotification.
func (s *Store) RecordNotification(intent notify.Intent) (string, error) {
	id := uuid.New().String()
	resolved := 0
	if intent.Kind == notify.KindAllClear || intent.Kind == notify.KindMorningSummary {
		resolved = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO notifications (id, location_id, kind, temperature, event_time, created_at, resolved)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, intent.LocationID, string(intent.Kind), intent.Temperature,
		intent.EventTime.UTC(), time.Now().UTC(), resolved,
	)
	if err != nil {
		return "", fmt.Errorf("record notification: %w", err)
	}
	return id, nil
}

// LastNotification returns the most recent recorded notification for a
// location, or nil when none exists. Morning summaries are an independent
// channel and do not participate in the state machine, so they are
// skipped here.
func (s *Store) LastNotification(locationID string) (*notify.Record, error) {
	row := s.db.QueryRow(
		`SELECT id, location_id, kind, resolved, created_at
		 FROM notifications
		 WHERE location_id = ? AND kind != ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		locationID, string(notify.KindMorningSummary))

	var rec notify.Record
	var kind string
	err := row.Scan(&rec.ID, &rec.LocationID, &kind, &rec.Resolved, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last notification for %s: %w", locationID, err)
	}
	rec.Kind = notify.Kind(kind)
	return &rec, nil
}

// MarkSent stamps the delivery time on a notification.
func (s *Store) MarkSent(id string) error {
	res, err := s.db.Exec(
		`UPDATE notifications SET sent_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark sent %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// MarkResolved closes out a notification; called when a later all_clear
// resolves the condition it announced.
func (s *Store) MarkResolved(id string) error {
	res, err := s.db.Exec(
		`UPDATE notifications SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark resolved %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// NotificationsByOwner lists an owner's notifications, newest first.
func (s *Store) NotificationsByOwner(ownerID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT n.id, n.location_id, l.name, n.kind, n.temperature,
		        n.event_time, n.created_at, n.sent_at, n.resolved
		 FROM notifications n
		 JOIN locations l ON l.id = n.location_id
		 WHERE l.owner_id = ?
		 ORDER BY n.created_at DESC, n.id DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.LocationID, &n.LocationName, &kind,
			&n.Temperature, &n.EventTime, &n.CreatedAt, &n.SentAt, &n.Resolved); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = notify.Kind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

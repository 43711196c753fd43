package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akoval/frostwatch/internal/geo"
)

// Location is a user-registered point to watch. Uniquely named per owner.
type Location struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId"`
	Name      string         `json:"name"`
	Coord     geo.Coordinate `json:"coordinate"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CreateLocation registers a new location for owner. Names are unique per
// owner; a clash returns ErrDuplicateName.
func (s *Store) CreateLocation(ownerID, name string, coord geo.Coordinate) (Location, error) {
	loc := Location{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Coord:     coord,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO locations (id, owner_id, name, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.OwnerID, loc.Name, loc.Coord.Latitude, loc.Coord.Longitude, loc.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return Location{}, ErrDuplicateName
		}
		return Location{}, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// GetLocation returns one location by id.
func (s *Store) GetLocation(id string) (Location, error) {
	row := s.db.QueryRow(
		`SELECT id, owner_id, name, latitude, longitude, created_at
		 FROM locations WHERE id = ?`, id)
	return scanLocation(row)
}

// AllLocations returns every registered location ordered by id, the
// stable order the tick clusters over.
func (s *Store) AllLocations() ([]Location, error) {
	rows, err := s.db.Query(
		`SELECT id, owner_id, name, latitude, longitude, created_at
		 FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

// LocationsByOwner returns one owner's locations ordered by name.
func (s *Store) LocationsByOwner(ownerID string) ([]Location, error) {
	rows, err := s.db.Query(
		`SELECT id, owner_id, name, latitude, longitude, created_at
		 FROM locations WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list locations for %s: %w", ownerID, err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

// DeleteLocation removes a location and, via cascade, its notifications.
func (s *Store) DeleteLocation(id string) error {
	res, err := s.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (Location, error) {
	var loc Location
	err := row.Scan(&loc.ID, &loc.OwnerID, &loc.Name,
		&loc.Coord.Latitude, &loc.Coord.Longitude, &loc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("scan location: %w", err)
	}
	return loc, nil
}

func collectLocations(rows *sql.Rows) ([]Location, error) {
	var locs []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trip is a confirmed trip plan.
type Trip struct {
	ID            uuid.UUID `json:"id"`
	SessionID     string    `json:"session_id"`
	Destination   string    `json:"destination"`
	ArrivalTime   string    `json:"arrival_time,omitempty"`
	TripMinutes   int       `json:"trip_minutes"`
	AvoidHighways bool      `json:"avoid_highways"`
	PreferWellLit bool      `json:"prefer_well_lit"`
	NeedsBreaks   bool      `json:"needs_breaks"`
	Weather       string    `json:"weather"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// SaveTrip stores t and returns it with ID and ConfirmedAt filled in.
func (s *Store) SaveTrip(ctx context.Context, t Trip) (Trip, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.ConfirmedAt.IsZero() {
		t.ConfirmedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trip_plans (id, session_id, destination, arrival_time, trip_minutes,
			avoid_highways, prefer_well_lit, needs_breaks, weather, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.SessionID, t.Destination, t.ArrivalTime, t.TripMinutes,
		t.AvoidHighways, t.PreferWellLit, t.NeedsBreaks, t.Weather, t.ConfirmedAt,
	)
	if err != nil {
		return Trip{}, fmt.Errorf("insert trip: %w", err)
	}
	return t, nil
}

// ListTrips returns a session's confirmed trips, newest first.
func (s *Store) ListTrips(ctx context.Context, sessionID string, limit int) ([]Trip, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, destination, arrival_time, trip_minutes,
			avoid_highways, prefer_well_lit, needs_breaks, weather, confirmed_at
		FROM trip_plans
		WHERE session_id = $1
		ORDER BY confirmed_at DESC
		LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Destination, &t.ArrivalTime, &t.TripMinutes,
			&t.AvoidHighways, &t.PreferWellLit, &t.NeedsBreaks, &t.Weather, &t.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	return trips, nil
}

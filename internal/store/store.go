package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database is reachable, for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS places (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	category      TEXT NOT NULL,
	rating        DOUBLE PRECISION NOT NULL,
	busyness      JSONB NOT NULL DEFAULT '{}',
	time_needed   INTEGER NOT NULL DEFAULT 0,
	avg_meal_time INTEGER NOT NULL DEFAULT 0,
	cuisine       TEXT NOT NULL DEFAULT '',
	price_level   INTEGER NOT NULL DEFAULT 0,
	lat           DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng           DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trip_plans (
	id              UUID PRIMARY KEY,
	session_id      TEXT NOT NULL,
	destination     TEXT NOT NULL,
	arrival_time    TEXT NOT NULL DEFAULT '',
	trip_minutes    INTEGER NOT NULL,
	avoid_highways  BOOLEAN NOT NULL DEFAULT false,
	prefer_well_lit BOOLEAN NOT NULL DEFAULT false,
	needs_breaks    BOOLEAN NOT NULL DEFAULT false,
	weather         TEXT NOT NULL DEFAULT 'any',
	confirmed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS trip_plans_session_idx ON trip_plans (session_id, confirmed_at DESC);
`

// Migrate creates the tables wayfarer uses if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

// Attractions and Restaurants make Store usable as a place catalog.

func (s *Store) Attractions(ctx context.Context) ([]ranking.Place, error) {
	return s.places(ctx, `category <> $1`)
}

func (s *Store) Restaurants(ctx context.Context) ([]ranking.Place, error) {
	return s.places(ctx, `category = $1`)
}

func (s *Store) places(ctx context.Context, where string) ([]ranking.Place, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, category, rating, busyness, time_needed, avg_meal_time,
			cuisine, price_level, lat, lng
		FROM places
		WHERE `+where+`
		ORDER BY name`,
		ranking.CategoryRestaurant,
	)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var out []ranking.Place
	for rows.Next() {
		var p ranking.Place
		if err := rows.Scan(&p.Name, &p.Category, &p.Rating, &p.Busyness, &p.TimeNeeded, &p.AvgMealTime,
			&p.Cuisine, &p.PriceLevel, &p.Location.Lat, &p.Location.Lng); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return out, nil
}

// SeedPlaces upserts places by name in one transaction.
func (s *Store) SeedPlaces(ctx context.Context, places []ranking.Place) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range places {
		busyness := p.Busyness
		if busyness == nil {
			busyness = map[ranking.Period]int{}
		}
		batch.Queue(`
			INSERT INTO places (id, name, category, rating, busyness, time_needed, avg_meal_time,
				cuisine, price_level, lat, lng)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (name) DO UPDATE SET
				category = EXCLUDED.category,
				rating = EXCLUDED.rating,
				busyness = EXCLUDED.busyness,
				time_needed = EXCLUDED.time_needed,
				avg_meal_time = EXCLUDED.avg_meal_time,
				cuisine = EXCLUDED.cuisine,
				price_level = EXCLUDED.price_level,
				lat = EXCLUDED.lat,
				lng = EXCLUDED.lng`,
			uuid.New(), p.Name, p.Category, p.Rating, busyness, p.TimeNeeded, p.AvgMealTime,
			p.Cuisine, p.PriceLevel, p.Location.Lat, p.Location.Lng,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert places: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

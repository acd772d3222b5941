//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SaveAndListTrips(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := "integration-test-" + uuid.New().String()[:8]

	saved, err := s.SaveTrip(ctx, Trip{
		SessionID:     sessionID,
		Destination:   "the airport",
		ArrivalTime:   "5pm",
		TripMinutes:   42,
		AvoidHighways: true,
		Weather:       "any",
	})
	if err != nil {
		t.Fatalf("SaveTrip failed: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatal("expected non-nil trip ID")
	}

	trips, err := s.ListTrips(ctx, sessionID, 10)
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	got := trips[0]
	if got.ID != saved.ID || got.Destination != "the airport" || got.TripMinutes != 42 || !got.AvoidHighways {
		t.Errorf("unexpected trip: %+v", got)
	}
}

func TestIntegration_SeedAndReadPlaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	def := catalog.Default()

	attractions, _ := def.Attractions(ctx)
	restaurants, _ := def.Restaurants(ctx)
	if err := s.SeedPlaces(ctx, append(attractions, restaurants...)); err != nil {
		t.Fatalf("SeedPlaces failed: %v", err)
	}

	gotRestaurants, err := s.Restaurants(ctx)
	if err != nil {
		t.Fatalf("Restaurants failed: %v", err)
	}
	for _, p := range gotRestaurants {
		if !p.IsRestaurant() {
			t.Errorf("non-restaurant %q in restaurant list", p.Name)
		}
	}
	if len(gotRestaurants) < len(restaurants) {
		t.Errorf("expected at least %d restaurants, got %d", len(restaurants), len(gotRestaurants))
	}

	gotAttractions, err := s.Attractions(ctx)
	if err != nil {
		t.Fatalf("Attractions failed: %v", err)
	}
	for _, p := range gotAttractions {
		if p.IsRestaurant() {
			t.Errorf("restaurant %q in attraction list", p.Name)
		}
	}
}

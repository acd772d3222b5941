package catalog

import (
	"context"
	"maps"

	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

// Catalog supplies the places the assistant can recommend. Implementations
// must return fresh slices; callers never write back into the catalog.
type Catalog interface {
	Attractions(ctx context.Context) ([]ranking.Place, error)
	Restaurants(ctx context.Context) ([]ranking.Place, error)
}

// Static is an in-memory catalog.
type Static struct {
	attractions []ranking.Place
	restaurants []ranking.Place
}

func NewStatic(attractions, restaurants []ranking.Place) *Static {
	return &Static{attractions: attractions, restaurants: restaurants}
}

func (s *Static) Attractions(_ context.Context) ([]ranking.Place, error) {
	return clonePlaces(s.attractions), nil
}

func (s *Static) Restaurants(_ context.Context) ([]ranking.Place, error) {
	return clonePlaces(s.restaurants), nil
}

// clonePlaces copies places deeply enough that callers can edit busyness.
func clonePlaces(in []ranking.Place) []ranking.Place {
	out := make([]ranking.Place, len(in))
	for i, p := range in {
		p.Busyness = maps.Clone(p.Busyness)
		out[i] = p
	}
	return out
}

// Default returns the built-in demo catalog.
func Default() *Static {
	return NewStatic(defaultAttractions(), defaultRestaurants())
}

func busy(morning, afternoon, evening int) map[ranking.Period]int {
	return map[ranking.Period]int{
		ranking.Morning:   morning,
		ranking.Afternoon: afternoon,
		ranking.Evening:   evening,
	}
}

func defaultAttractions() []ranking.Place {
	return []ranking.Place{
		{Name: "Central Park", Category: ranking.CategoryPark, Rating: 4.8, Busyness: busy(60, 90, 70), TimeNeeded: 120, Location: ranking.Location{Lat: 40.7829, Lng: -73.9654}},
		{Name: "Art Museum", Category: ranking.CategoryMuseum, Rating: 4.6, Busyness: busy(40, 80, 30), TimeNeeded: 90, Location: ranking.Location{Lat: 40.7794, Lng: -73.9632}},
		{Name: "Local Market", Category: ranking.CategoryShopping, Rating: 4.3, Busyness: busy(70, 85, 40), TimeNeeded: 60, Location: ranking.Location{Lat: 40.7831, Lng: -73.9712}},
		{Name: "Botanical Garden", Category: ranking.CategoryNature, Rating: 4.7, Busyness: busy(50, 75, 45), TimeNeeded: 120, Location: ranking.Location{Lat: 40.7815, Lng: -73.9733}},
	}
}

func defaultRestaurants() []ranking.Place {
	return []ranking.Place{
		{Name: "Green Leaf", Category: ranking.CategoryRestaurant, Cuisine: "vegetarian", PriceLevel: 2, Rating: 4.5, Busyness: busy(30, 80, 90), AvgMealTime: 45, Location: ranking.Location{Lat: 40.7834, Lng: -73.9723}},
		{Name: "Spice Route", Category: ranking.CategoryRestaurant, Cuisine: "indian", PriceLevel: 3, Rating: 4.7, Busyness: busy(20, 70, 95), AvgMealTime: 60, Location: ranking.Location{Lat: 40.7821, Lng: -73.9701}},
		{Name: "Pizza Corner", Category: ranking.CategoryRestaurant, Cuisine: "italian", PriceLevel: 2, Rating: 4.4, Busyness: busy(40, 75, 85), AvgMealTime: 30, Location: ranking.Location{Lat: 40.7847, Lng: -73.9689}},
		{Name: "Sushi Express", Category: ranking.CategoryRestaurant, Cuisine: "japanese", PriceLevel: 3, Rating: 4.6, Busyness: busy(30, 65, 90), AvgMealTime: 45, Location: ranking.Location{Lat: 40.7856, Lng: -73.9667}},
	}
}

// DefaultPreferences mirrors the demo user the default catalog was built for.
func DefaultPreferences() ranking.UserPreferences {
	return ranking.UserPreferences{
		Cuisines:      []string{"vegetarian", "indian"},
		MaxPriceLevel: 2,
		MaxDistance:   2000,
		Home:          ranking.Location{Lat: 40.7831, Lng: -73.9712},
	}
}

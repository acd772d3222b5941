// Package assistant answers the place questions: where to eat, how to spend
// the day and what fits into a few free hours.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

// maxPicks caps how many places a spoken answer lists.
const maxPicks = 3

// Clock supplies the current time; only the hour is used.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Plan is an answer to a place question. Err is ranking.ErrEmptyResultSet
// when nothing qualified; Response then holds the "no match" reply.
type Plan struct {
	Kind     intent.Kind     `json:"kind"`
	Response string          `json:"response"`
	Places   []ranking.Place `json:"places"`
	Period   ranking.Period  `json:"period,omitempty"`
	Hours    int             `json:"hours,omitempty"`
	Err      error           `json:"-"`
}

type Planner struct {
	catalog catalog.Catalog
	prefs   ranking.UserPreferences
	clock   Clock
	logger  *slog.Logger
}

func NewPlanner(c catalog.Catalog, prefs ranking.UserPreferences, clock Clock, logger *slog.Logger) *Planner {
	return &Planner{catalog: c, prefs: prefs, clock: clock, logger: logger}
}

func (p *Planner) period() ranking.Period {
	return ranking.PeriodForHour(p.clock.Now().Hour())
}

// FindRestaurants recommends up to three restaurants that match the user's
// cuisines and budget, best rated and least busy first.
func (p *Planner) FindRestaurants(ctx context.Context) (Plan, error) {
	restaurants, err := p.catalog.Restaurants(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load restaurants: %w", err)
	}
	period := p.period()
	plan := Plan{Kind: intent.KindFindRestaurant, Period: period}

	matches := ranking.FilterByPreference(restaurants, p.prefs)
	if len(matches) == 0 {
		plan.Response = compose.NoRestaurants
		plan.Err = ranking.ErrEmptyResultSet
		return plan, nil
	}

	plan.Places = ranking.Top(ranking.Rank(matches, period), maxPicks)
	plan.Response = compose.RestaurantRecommendation(plan.Places)
	p.logger.Debug("restaurants recommended", "period", period, "candidates", len(matches), "picks", len(plan.Places))
	return plan, nil
}

// PlanDay orders up to three attractions for the current period.
func (p *Planner) PlanDay(ctx context.Context) (Plan, error) {
	attractions, err := p.catalog.Attractions(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load attractions: %w", err)
	}
	period := p.period()
	plan := Plan{Kind: intent.KindPlanDay, Period: period}

	if len(attractions) == 0 {
		plan.Response = compose.NoDayPlan
		plan.Err = ranking.ErrEmptyResultSet
		return plan, nil
	}

	plan.Places = ranking.Top(ranking.Rank(attractions, period), maxPicks)
	plan.Response = compose.DayPlan(plan.Places)
	return plan, nil
}

// PlanExploration packs attractions, best rated first, into the given
// number of hours.
func (p *Planner) PlanExploration(ctx context.Context, hours int) (Plan, error) {
	attractions, err := p.catalog.Attractions(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load attractions: %w", err)
	}
	plan := Plan{Kind: intent.KindExplore, Hours: hours}

	plan.Places = ranking.PackByTimeBudget(ranking.ByRating(attractions), hours*60)
	if len(plan.Places) == 0 {
		plan.Response = compose.NoItinerary(hours)
		plan.Err = ranking.ErrEmptyResultSet
		return plan, nil
	}
	plan.Response = compose.Exploration(hours, plan.Places)
	p.logger.Debug("exploration planned", "hours", hours, "stops", len(plan.Places), "minutes", ranking.ScheduledMinutes(plan.Places))
	return plan, nil
}

// Answer routes a place command utterance. ok is false when the utterance is
// not a place command.
func (p *Planner) Answer(ctx context.Context, utterance string) (plan Plan, ok bool, err error) {
	res := intent.Classify(utterance, intent.Commands)
	if !res.Matched {
		return Plan{}, false, nil
	}

	switch res.Kind {
	case intent.KindPlanDay:
		plan, err = p.PlanDay(ctx)
	case intent.KindFindRestaurant:
		plan, err = p.FindRestaurants(ctx)
	case intent.KindExplore:
		plan, err = p.PlanExploration(ctx, intent.ExploreHours(utterance))
	default:
		return Plan{}, false, nil
	}
	return plan, true, err
}

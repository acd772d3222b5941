package api

import (
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

// restaurants handles GET /api/v1/places/restaurants
func (s *Server) restaurants(w http.ResponseWriter, r *http.Request) {
	plan, err := s.places.FindRestaurants(r.Context())
	s.writePlan(w, plan, err)
}

// dayPlan handles GET /api/v1/places/day-plan
func (s *Server) dayPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.places.PlanDay(r.Context())
	s.writePlan(w, plan, err)
}

// explore handles GET /api/v1/places/explore?hours=N
func (s *Server) explore(w http.ResponseWriter, r *http.Request) {
	hours := intent.DefaultExploreHours
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}

	plan, err := s.places.PlanExploration(r.Context(), hours)
	s.writePlan(w, plan, err)
}

// writePlan answers 200 even when nothing matched; the response then holds
// the "no match" reply and places is empty.
func (s *Server) writePlan(w http.ResponseWriter, plan assistant.Plan, err error) {
	if err != nil {
		s.logger.Error("place request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	if plan.Places == nil {
		plan.Places = []ranking.Place{}
	}
	writeJSON(w, http.StatusOK, plan)
}

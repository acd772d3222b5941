package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
	"github.com/MikeSquared-Agency/wayfarer/internal/processor"
)

// Sessions is the registry surface the API exposes.
type Sessions interface {
	Create(ctx context.Context) string
	Get(ctx context.Context, id string) (dialogue.State, error)
	Reset(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count() int
}

type Utterances interface {
	ProcessExisting(ctx context.Context, sessionID, text string) (processor.Result, error)
}

type Places interface {
	FindRestaurants(ctx context.Context) (assistant.Plan, error)
	PlanDay(ctx context.Context) (assistant.Plan, error)
	PlanExploration(ctx context.Context, hours int) (assistant.Plan, error)
}

// Options configures the HTTP surface. An empty APIToken disables auth and a
// RateLimit of zero disables limiting.
type Options struct {
	Port          int
	APIToken      string
	AllowedOrigin string
	RateLimit     int
}

type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	sessions   Sessions
	utterances Utterances
	places     Places
	logger     *slog.Logger
}

func NewServer(opts Options, sessions Sessions, utterances Utterances, places Places, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{opts.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		router:     router,
		sessions:   sessions,
		utterances: utterances,
		places:     places,
		logger:     logger,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/wayfarer/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.resetSession)
			r.With(RateLimitMiddleware(opts.RateLimit)).Post("/utterances", s.postUtterance)
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/restaurants", s.restaurants)
			r.Get("/day-plan", s.dayPlan)
			r.Get("/explore", s.explore)
		})
	})

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":    "wayfarer",
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

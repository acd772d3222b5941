package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
	"github.com/MikeSquared-Agency/wayfarer/internal/processor"
	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(context.Context, string, string) (string, error) { return "u-1", nil }

type failingPlaces struct{}

func (failingPlaces) FindRestaurants(context.Context) (assistant.Plan, error) {
	return assistant.Plan{}, errors.New("db down")
}

func (failingPlaces) PlanDay(context.Context) (assistant.Plan, error) {
	return assistant.Plan{}, errors.New("db down")
}

func (failingPlaces) PlanExploration(context.Context, int) (assistant.Plan, error) {
	return assistant.Plan{}, errors.New("db down")
}

func newTestServer(t *testing.T, opts Options) (*Server, *session.Registry) {
	t.Helper()
	logger := discardLogger()
	reg := session.NewRegistry(time.Minute, nil, logger, dialogue.WithDurationSource(dialogue.FixedDuration(50)))
	clock := assistant.FixedClock(time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC))
	planner := assistant.NewPlanner(catalog.Default(), catalog.DefaultPreferences(), clock, logger)
	proc := processor.New(reg, planner, nopSpeaker{}, nil, nil, logger)
	return NewServer(opts, reg, proc, planner, logger), reg
}

func do(t *testing.T, srv *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, reg := newTestServer(t, Options{})
	reg.Create(context.Background())

	w := do(t, srv, "GET", "/api/v1/wayfarer/status", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["agent"] != "wayfarer" {
		t.Errorf("expected agent wayfarer, got %v", body["agent"])
	}
	if body["sessions"] != float64(1) {
		t.Errorf("expected 1 session, got %v", body["sessions"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	if w := do(t, srv, "GET", "/nonexistent", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestConversationOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, "POST", "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	id := decode[map[string]string](t, w)["session_id"]
	if id == "" {
		t.Fatal("expected a session id")
	}

	steps := []struct {
		text    string
		stage   dialogue.Stage
		outcome processor.Outcome
	}{
		{"take me to the harbor", dialogue.StageAwaitTime, processor.OutcomeAdvanced},
		{"no specific time", dialogue.StageAwaitWeather, processor.OutcomeAdvanced},
		{"no", dialogue.StageAwaitBreaks, processor.OutcomeAdvanced},
		{"hmm", dialogue.StageAwaitBreaks, processor.OutcomeReprompt},
		{"yes", dialogue.StageAwaitConfirmation, processor.OutcomeAdvanced},
	}
	for _, step := range steps {
		w := do(t, srv, "POST", "/api/v1/sessions/"+id+"/utterances", `{"text":"`+step.text+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d: %s", step.text, w.Code, w.Body.String())
		}
		res := decode[processor.Result](t, w)
		if res.Stage != step.stage || res.Outcome != step.outcome {
			t.Fatalf("%q: stage=%s outcome=%s", step.text, res.Stage, res.Outcome)
		}
	}

	w = do(t, srv, "GET", "/api/v1/sessions/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	st := decode[dialogue.State](t, w)
	if st.Context.Destination != "the harbor" || st.Context.TripMinutes != 50 || !st.Preferences.NeedsFrequentBreaks {
		t.Errorf("unexpected state: %+v", st)
	}

	if w := do(t, srv, "DELETE", "/api/v1/sessions/"+id, ""); w.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", w.Code)
	}
	st = decode[dialogue.State](t, do(t, srv, "GET", "/api/v1/sessions/"+id, ""))
	if st.Context.Stage != dialogue.StageIdle || st.Context.Destination != "" {
		t.Errorf("expected idle session after reset, got %+v", st.Context)
	}
}

func TestUtteranceErrors(t *testing.T) {
	srv, reg := newTestServer(t, Options{})
	id := reg.Create(context.Background())

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown session", "/api/v1/sessions/missing/utterances", `{"text":"navigate to home"}`, http.StatusNotFound},
		{"bad json", "/api/v1/sessions/" + id + "/utterances", `{"text":`, http.StatusBadRequest},
		{"blank text", "/api/v1/sessions/" + id + "/utterances", `{"text":"  "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, srv, "POST", tt.path, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	if w := do(t, srv, "GET", "/api/v1/sessions/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("get unknown: expected 404, got %d", w.Code)
	}
}

func TestIdleHelpOverHTTP(t *testing.T) {
	srv, reg := newTestServer(t, Options{})
	id := reg.Create(context.Background())

	w := do(t, srv, "POST", "/api/v1/sessions/"+id+"/utterances", `{"text":"tell me a joke"}`)
	res := decode[processor.Result](t, w)
	if res.Response != compose.Help || res.Outcome != processor.OutcomeHelp {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestForgetSession(t *testing.T) {
	srv, reg := newTestServer(t, Options{})
	id := reg.Create(context.Background())

	if w := do(t, srv, "DELETE", "/api/v1/sessions/"+id+"?forget=true", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if reg.Count() != 0 {
		t.Errorf("expected no live sessions, got %d", reg.Count())
	}
}

func TestBearerAuth(t *testing.T) {
	srv, _ := newTestServer(t, Options{APIToken: "secret"})

	tests := []struct {
		name   string
		header []string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"wrong scheme", []string{"Authorization", "Basic secret"}, http.StatusUnauthorized},
		{"valid", []string{"Authorization", "Bearer secret"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, srv, "POST", "/api/v1/sessions", "", tt.header...); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	if w := do(t, srv, "GET", "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health should not need auth, got %d", w.Code)
	}
}

func TestUtteranceRateLimit(t *testing.T) {
	srv, reg := newTestServer(t, Options{RateLimit: 1})
	id := reg.Create(context.Background())
	path := "/api/v1/sessions/" + id + "/utterances"

	if w := do(t, srv, "POST", path, `{"text":"navigate to home"}`); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	w := do(t, srv, "POST", path, `{"text":"whenever"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigin: "https://app.example.com"})

	w := do(t, srv, "OPTIONS", "/api/v1/sessions", "",
		"Origin", "https://app.example.com",
		"Access-Control-Request-Method", "POST",
	)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestPlaceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		name      string
		path      string
		want      int
		wantNames []string
	}{
		{"day plan", "/api/v1/places/day-plan", http.StatusOK, []string{"Central Park", "Botanical Garden", "Art Museum"}},
		{"explore default", "/api/v1/places/explore", http.StatusOK, []string{"Central Park"}},
		{"explore five hours", "/api/v1/places/explore?hours=5", http.StatusOK, []string{"Central Park", "Botanical Garden"}},
		{"explore nothing fits", "/api/v1/places/explore?hours=1", http.StatusOK, []string{}},
		{"explore bad hours", "/api/v1/places/explore?hours=abc", http.StatusBadRequest, nil},
		{"explore zero hours", "/api/v1/places/explore?hours=0", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "GET", tt.path, "")
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.wantNames == nil {
				return
			}
			plan := decode[struct {
				Response string          `json:"response"`
				Places   []ranking.Place `json:"places"`
			}](t, w)
			if plan.Response == "" {
				t.Error("expected a spoken response")
			}
			if len(plan.Places) != len(tt.wantNames) {
				t.Fatalf("places = %+v, want %v", plan.Places, tt.wantNames)
			}
			for i, name := range tt.wantNames {
				if plan.Places[i].Name != name {
					t.Errorf("place %d = %q, want %q", i, plan.Places[i].Name, name)
				}
			}
		})
	}
}

func TestRestaurantsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, "GET", "/api/v1/places/restaurants", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["period"] != string(ranking.Morning) {
		t.Errorf("expected morning period, got %v", body["period"])
	}
	if !strings.HasPrefix(body["response"].(string), "I recommend these restaurants: 1. ") {
		t.Errorf("unexpected response %q", body["response"])
	}
}

func TestPlaceEndpointCatalogFailure(t *testing.T) {
	logger := discardLogger()
	reg := session.NewRegistry(time.Minute, nil, logger)
	srv := NewServer(Options{}, reg, processor.New(reg, nil, nopSpeaker{}, nil, nil, logger), failingPlaces{}, logger)

	if w := do(t, srv, "GET", "/api/v1/places/day-plan", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/wayfarer/internal/processor"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
)

type utteranceRequest struct {
	Text string `json:"text"`
}

// createSession handles POST /api/v1/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// getSession handles GET /api/v1/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// resetSession handles DELETE /api/v1/sessions/{id}. With ?forget=true the
// session and its snapshot are dropped instead of reset.
func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var err error
	if r.URL.Query().Get("forget") == "true" {
		err = s.sessions.Delete(r.Context(), id)
	} else {
		err = s.sessions.Reset(r.Context(), id)
	}
	if err != nil {
		s.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postUtterance handles POST /api/v1/sessions/{id}/utterances
func (s *Server) postUtterance(w http.ResponseWriter, r *http.Request) {
	var req utteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := s.utterances.ProcessExisting(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyUtterance) {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("session request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

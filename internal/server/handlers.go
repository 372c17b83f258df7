package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/appstate"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/stats"
	"github.com/go-chi/chi/v5"
)

// handleGetData serves the whole application document. A missing backing
// document yields the default document with status 200, never a 404.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.store.Data(); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	// Store not ready (still loading, or initial load failed); read through
	// the gateway directly so the contract holds regardless.
	data, err := s.gw.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handlePostData overwrites the whole document. No partial-update semantics.
func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	var data models.AppData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON: " + err.Error()})
		return
	}

	err := <-s.store.ReplaceAll(r.Context(), data)
	if errors.Is(err, appstate.ErrNotReady) {
		// No loaded document to merge into; write straight through.
		err = s.gw.Save(r.Context(), data)
	}
	if err != nil {
		s.log.Error("document save failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to save data"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": "/api/data"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleCatalogGroup(w http.ResponseWriter, r *http.Request) {
	group := s.catalog.Group(chi.URLParam(r, "groupID"))
	if group == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "muscle group not found"})
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// mustData fetches the document snapshot or reports why the store cannot
// serve it yet.
func (s *Server) mustData(w http.ResponseWriter) (models.AppData, bool) {
	data, ok := s.store.Data()
	if !ok {
		body := map[string]string{"error": "application data not loaded", "phase": s.store.Phase().String()}
		if err := s.store.LoadErr(); err != nil {
			body["reason"] = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return models.AppData{}, false
	}
	return data, true
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	data, ok := s.mustData(w)
	if !ok {
		return
	}
	if data.Profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "onboarding not completed"})
		return
	}
	writeJSON(w, http.StatusOK, data.Profile)
}

// handlePutProfile creates or wholesale-replaces the user profile. On
// creation the current weight mirrors the initial weight.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if profile.CurrentWeight == 0 {
		profile.CurrentWeight = profile.InitialWeight
	}

	if errs := profile.Validate(); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}

	if err := <-s.store.SetProfile(r.Context(), profile); err != nil {
		s.log.Error("profile save failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "profile not persisted: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	data, ok := s.mustData(w)
	if !ok {
		return
	}

	sessions := data.Sessions
	if l := r.URL.Query().Get("last"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n >= 0 && n < len(sessions) {
			sessions = sessions[len(sessions)-n:]
		}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	data, ok := s.mustData(w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	for _, session := range data.Sessions {
		if session.ID == id {
			writeJSON(w, http.StatusOK, session)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	data, ok := s.mustData(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(data))
}

// handleReload retries the initial document load. Load failures are sticky;
// retrying is always an explicit user action.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Initialize(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"phase": s.store.Phase().String()})
}

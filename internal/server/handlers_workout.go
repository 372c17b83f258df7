package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

type runParams struct {
	Speed float64 `json:"speed"`
	Time  float64 `json:"time"`
}

// currentRecorder returns the active recorder, or nil when no workout is in
// progress.
func (s *Server) currentRecorder() *session.Recorder {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	return s.recorder
}

// handleWorkoutStart begins a new session for the requested catalog workout.
// A session that already reached the complete stage is discarded; an
// unfinished one blocks the start.
func (s *Server) handleWorkoutStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutID string `json:"workoutId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	workout, groupID := s.catalog.FindWorkout(req.WorkoutID)
	if workout == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}

	s.recMu.Lock()
	defer s.recMu.Unlock()
	if s.recorder != nil && s.recorder.Stage() != session.StageComplete {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a workout is already in progress"})
		return
	}
	s.recorder = session.New(*workout, groupID, s.store)
	s.log.Info("workout started", "workout", workout.ID, "group", groupID)
	writeJSON(w, http.StatusCreated, s.recorder.Snapshot())
}

func (s *Server) handleWorkoutSnapshot(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}
	writeJSON(w, http.StatusOK, rec.Snapshot())
}

// handleWorkoutAbandon discards the in-flight session without persisting it.
func (s *Server) handleWorkoutAbandon(w http.ResponseWriter, r *http.Request) {
	s.recMu.Lock()
	s.recorder = nil
	s.recMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkoutWarmup(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}

	var req runParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := rec.ConfirmWarmup(req.Speed, req.Time); err != nil {
		writeRecorderErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Snapshot())
}

// exercisePatch carries pending-set edits. Weight is a raw message so an
// explicit null (clear the weight) is distinguishable from an absent field.
type exercisePatch struct {
	Weight json.RawMessage `json:"weight"`
	Reps   *string         `json:"reps"`
	IsMax  *bool           `json:"isMax"`
	Note   *string         `json:"note"`
}

func (s *Server) handleExercisePatch(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}

	var patch exercisePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if len(patch.Weight) > 0 {
		var weight *float64
		if err := json.Unmarshal(patch.Weight, &weight); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be a number or null"})
			return
		}
		if err := rec.SetPendingWeight(index, weight); err != nil {
			writeRecorderErr(w, err)
			return
		}
	}
	if patch.Reps != nil {
		if err := rec.SetPendingReps(index, *patch.Reps); err != nil {
			writeRecorderErr(w, err)
			return
		}
	}
	if patch.IsMax != nil {
		if err := rec.SetPendingMax(index, *patch.IsMax); err != nil {
			writeRecorderErr(w, err)
			return
		}
	}
	if patch.Note != nil {
		if err := rec.SetNote(index, *patch.Note); err != nil {
			writeRecorderErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, rec.Snapshot())
}

func (s *Server) handleExerciseAddSet(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}

	added, err := rec.AddSet(index)
	if err != nil {
		writeRecorderErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "workout": rec.Snapshot()})
}

func (s *Server) handleWorkoutCooldown(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}
	if err := rec.StartCooldown(); err != nil {
		writeRecorderErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Snapshot())
}

func (s *Server) handleWorkoutComplete(w http.ResponseWriter, r *http.Request) {
	rec := s.currentRecorder()
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout in progress"})
		return
	}

	var req runParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	log, err := rec.Complete(r.Context(), req.Speed, req.Time)
	if err != nil {
		if errors.Is(err, session.ErrStage) || errors.Is(err, session.ErrBusy) {
			writeRecorderErr(w, err)
			return
		}
		s.log.Error("session append failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("workout completed", "session", log.ID, "totalTime", log.TotalTime)
	writeJSON(w, http.StatusOK, log)
}

// writeRecorderErr maps recorder errors to HTTP statuses.
func writeRecorderErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrStage), errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, session.ErrExerciseIndex):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/liftlog/internal/appstate"
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/gateway"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   *appstate.Store
	gw      *gateway.Gateway
	catalog *catalog.Catalog
	log     *slog.Logger
	apiKey  string
	router  chi.Router

	// One active workout recorder at a time, mirroring the single-session
	// client model.
	recMu    sync.Mutex
	recorder *session.Recorder
}

// New creates a new Server with all routes configured. apiKey may be empty,
// in which case mutating routes are unauthenticated (single-user deployments
// behind tsnet).
func New(store *appstate.Store, gw *gateway.Gateway, cat *catalog.Catalog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		gw:      gw,
		catalog: cat,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Whole-document persistence endpoints (no auth, fixed contract).
	s.router.Get("/api/data", s.handleGetData)
	s.router.Post("/api/data", s.handlePostData)

	// Read-only API.
	s.router.Get("/api/v1/catalog", s.handleCatalog)
	s.router.Get("/api/v1/catalog/{groupID}", s.handleCatalogGroup)
	s.router.Get("/api/v1/profile", s.handleGetProfile)
	s.router.Get("/api/v1/sessions", s.handleSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleSession)
	s.router.Get("/api/v1/stats", s.handleStats)

	// Mutating API (API key required when configured).
	s.router.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Put("/api/v1/profile", s.handlePutProfile)
		r.Post("/api/v1/reload", s.handleReload)
	})

	// Workout routes share one mount; the snapshot read stays open, the
	// mutations go through the auth group.
	s.router.Route("/api/v1/workout", func(r chi.Router) {
		r.Get("/", s.handleWorkoutSnapshot)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/start", s.handleWorkoutStart)
			r.Delete("/", s.handleWorkoutAbandon)
			r.Post("/warmup", s.handleWorkoutWarmup)
			r.Patch("/exercises/{index}", s.handleExercisePatch)
			r.Post("/exercises/{index}/sets", s.handleExerciseAddSet)
			r.Post("/cooldown", s.handleWorkoutCooldown)
			r.Post("/complete", s.handleWorkoutComplete)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package appstate holds the single in-memory copy of the application
// document. Mutations apply to memory synchronously and persist the full
// document through the gateway asynchronously; every mutation hands its save
// outcome back to the caller so persistence failures cannot go unnoticed.
package appstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/claude/liftlog/internal/gateway"
	"github.com/claude/liftlog/internal/models"
)

// Phase is the lifecycle state of the store.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotReady is reported when a mutation arrives before a document is
// loaded.
var ErrNotReady = errors.New("appstate: document not loaded")

// Patch is a shallow merge of the document's top-level fields. Nil fields
// are left untouched.
type Patch struct {
	Profile  *models.UserProfile
	Sessions *[]models.SessionLog
}

// EventKind tags a store notification.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventMutated
	EventSaved
	EventSaveFailed
)

// Event is delivered to subscribers on load, mutation, and save completion.
type Event struct {
	Kind EventKind
	Err  error
}

// Store is the single-writer owner of the in-memory document.
type Store struct {
	gw  *gateway.Gateway
	log *slog.Logger

	mu          sync.Mutex
	phase       Phase
	data        models.AppData
	loadErr     error
	lastSaveErr error
	dirty       bool
	seq         uint64

	// saveMu serializes writes; savedSeq tracks the newest snapshot that
	// reached the store, so a racing older snapshot is never written over a
	// newer one.
	saveMu   sync.Mutex
	savedSeq uint64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New creates an idle store; call Initialize to load the document.
func New(gw *gateway.Gateway, log *slog.Logger) *Store {
	return &Store{
		gw:   gw,
		log:  log,
		subs: make(map[int]chan Event),
	}
}

// Initialize loads the document through the gateway. On failure the store
// stays in the failed phase until Initialize is called again; there is no
// automatic retry.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseLoading {
		s.mu.Unlock()
		return errors.New("appstate: load already in progress")
	}
	s.phase = PhaseLoading
	s.mu.Unlock()

	data, err := s.gw.Load(ctx)

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseFailed
		s.loadErr = err
		s.mu.Unlock()
		s.log.Error("initial load failed", "error", err)
		return err
	}
	s.phase = PhaseReady
	s.loadErr = nil
	s.data = data
	s.mu.Unlock()

	s.notify(Event{Kind: EventLoaded})
	s.log.Info("document loaded", "sessions", len(data.Sessions), "hasProfile", data.Profile != nil)
	return nil
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LoadErr returns the reason for a failed Initialize, if any.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Data returns a snapshot of the document and whether the store is ready.
func (s *Store) Data() (models.AppData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady {
		return models.AppData{}, false
	}
	return s.data.Clone(), true
}

// Dirty reports whether the in-memory document has changes whose save has
// not (yet) succeeded — the "unsaved changes" indicator.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastSaveErr returns the error from the most recent save attempt, or nil.
func (s *Store) LastSaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Replace shallow-merges the patch into the document, synchronously for
// in-memory readers, then persists the full merged document in the
// background. The returned channel delivers exactly one value: the save
// outcome. The in-memory document is never rolled back on save failure;
// local and remote state may diverge until the next successful save.
func (s *Store) Replace(ctx context.Context, patch Patch) <-chan error {
	return s.apply(ctx, func() {
		if patch.Profile != nil {
			p := *patch.Profile
			s.data.Profile = &p
		}
		if patch.Sessions != nil {
			sessions := make([]models.SessionLog, len(*patch.Sessions))
			copy(sessions, *patch.Sessions)
			s.data.Sessions = sessions
		}
	})
}

// apply runs one mutation and schedules its persistence. The mutation, the
// sequence assignment, and the snapshot happen in a single critical section,
// so concurrent mutations never read the same base state and snapshot N
// contains every mutation up to N.
func (s *Store) apply(ctx context.Context, mutate func()) <-chan error {
	result := make(chan error, 1)

	s.mu.Lock()
	if s.phase != PhaseReady {
		phase := s.phase
		s.mu.Unlock()
		s.log.Warn("mutation before load, ignoring", "phase", phase.String())
		result <- ErrNotReady
		return result
	}
	mutate()
	s.dirty = true
	s.seq++
	seq := s.seq
	snapshot := s.data.Clone()
	s.mu.Unlock()

	s.notify(Event{Kind: EventMutated})

	go s.persist(context.WithoutCancel(ctx), snapshot, seq, result)
	return result
}

// ReplaceAll swaps in a complete document, for the whole-document overwrite
// endpoint.
func (s *Store) ReplaceAll(ctx context.Context, data models.AppData) <-chan error {
	sessions := data.Sessions
	if sessions == nil {
		sessions = []models.SessionLog{}
	}
	return s.Replace(ctx, Patch{Profile: data.Profile, Sessions: &sessions})
}

// SetProfile replaces the profile wholesale.
func (s *Store) SetProfile(ctx context.Context, profile models.UserProfile) <-chan error {
	return s.Replace(ctx, Patch{Profile: &profile})
}

// AppendSession appends one completed session to the history. Prior entries
// are never touched; concurrent appends each land exactly once. When the
// store is not ready the document is left unchanged and the channel reports
// ErrNotReady.
func (s *Store) AppendSession(ctx context.Context, session models.SessionLog) <-chan error {
	return s.apply(ctx, func() {
		sessions := make([]models.SessionLog, len(s.data.Sessions), len(s.data.Sessions)+1)
		copy(sessions, s.data.Sessions)
		s.data.Sessions = append(sessions, session)
	})
}

// persist writes one full-document snapshot. A snapshot older than the last
// one written is skipped: the newer write already contained its mutation, so
// skipping counts as success.
func (s *Store) persist(ctx context.Context, snapshot models.AppData, seq uint64, result chan<- error) {
	s.saveMu.Lock()
	var err error
	if seq > s.savedSeq {
		err = s.gw.Save(ctx, snapshot)
		if err == nil {
			s.savedSeq = seq
		}
	}
	s.saveMu.Unlock()

	s.mu.Lock()
	s.lastSaveErr = err
	if err == nil {
		s.dirty = false
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("save failed", "error", err)
		s.notify(Event{Kind: EventSaveFailed, Err: err})
	} else {
		s.notify(Event{Kind: EventSaved})
	}
	result <- err
}

// Subscribe registers for store events. The returned cancel func must be
// called to release the subscription. Slow subscribers miss events rather
// than blocking mutations.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Package session drives a single workout session from warmup to completion.
// The stage machine is linear — warmup → exercises → cooldown → complete —
// and every transition is an explicit user action, never a timer.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Stage is the recorder's position in the workout flow.
type Stage int

const (
	StageWarmup Stage = iota
	StageExercises
	StageCooldown
	StageComplete
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageWarmup:
		return "warmup"
	case StageExercises:
		return "exercises"
	case StageCooldown:
		return "cooldown"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// next returns the stage that follows s in the linear flow.
func (s Stage) next() Stage {
	if s >= StageComplete {
		return StageComplete
	}
	return s + 1
}

var (
	// ErrStage is returned when an operation is attempted outside the
	// stage it belongs to.
	ErrStage = errors.New("session: operation not valid in current stage")
	// ErrBusy is returned when a finalize is already in flight.
	ErrBusy = errors.New("session: finalization already in progress")
	// ErrExerciseIndex is returned for an out-of-range exercise index.
	ErrExerciseIndex = errors.New("session: exercise index out of range")
)

// Appender receives the finalized session log. Satisfied by
// *appstate.Store.
type Appender interface {
	AppendSession(ctx context.Context, session models.SessionLog) <-chan error
}

// PendingSet is the editable form state for the next set of one exercise.
// Reps stays a raw string so "not entered" is distinguishable from zero.
type PendingSet struct {
	Weight *float64 `json:"weight"`
	Reps   string   `json:"reps"`
	IsMax  bool     `json:"isMax"`
}

// exerciseState is the per-exercise working state during a session.
type exerciseState struct {
	def     catalog.Exercise
	sets    []models.SetData
	note    string
	pending PendingSet
}

// Recorder accumulates one workout session's data and materializes an
// immutable SessionLog on completion.
type Recorder struct {
	mu sync.Mutex

	workout   catalog.Workout
	groupID   string
	appender  Appender
	stage     Stage
	startedAt time.Time

	warmUp      *models.RunData
	coolDown    *models.RunData
	exercises   []exerciseState
	finalizing  bool
	finalizedAs *models.SessionLog

	now   func() time.Time
	newID func() string
}

// Option adjusts a Recorder, mainly for tests.
type Option func(*Recorder)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Recorder) { r.newID = newID }
}

// New starts a recorder for the given workout. The session start timestamp
// is captured here; each exercise begins with its catalog default weight, an
// empty set history, and the catalog max-reps flag on its first pending set.
func New(workout catalog.Workout, groupID string, appender Appender, opts ...Option) *Recorder {
	r := &Recorder{
		workout:  workout,
		groupID:  groupID,
		appender: appender,
		stage:    StageWarmup,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.startedAt = r.now()

	r.exercises = make([]exerciseState, len(workout.Exercises))
	for i, ex := range workout.Exercises {
		var weight *float64
		if ex.DefaultWeight != nil {
			w := *ex.DefaultWeight
			weight = &w
		}
		r.exercises[i] = exerciseState{
			def:     ex,
			sets:    []models.SetData{},
			pending: PendingSet{Weight: weight, Reps: "", IsMax: ex.IsMaxReps},
		}
	}
	return r
}

// advance moves to the next stage, verifying the transition is the single
// legal one from the current stage.
func (r *Recorder) advance(from Stage) error {
	if r.stage != from {
		return fmt.Errorf("%w: in %s, expected %s", ErrStage, r.stage, from)
	}
	r.stage = from.next()
	return nil
}

// Stage returns the current stage.
func (r *Recorder) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// ConfirmWarmup freezes the warmup run parameters and enters the exercises
// stage. Zero speed or time is accepted and yields a zero distance.
func (r *Recorder) ConfirmWarmup(speed, timeMin float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.advance(StageWarmup); err != nil {
		return err
	}
	run := models.NewRunData(speed, timeMin)
	r.warmUp = &run
	return nil
}

// SetPendingWeight edits the pending weight for one exercise. Recorded sets
// are never touched.
func (r *Recorder) SetPendingWeight(i int, weight *float64) error {
	return r.editPending(i, func(p *PendingSet) { p.Weight = weight })
}

// SetPendingReps edits the pending reps field; an empty string means "not
// entered".
func (r *Recorder) SetPendingReps(i int, reps string) error {
	return r.editPending(i, func(p *PendingSet) { p.Reps = reps })
}

// SetPendingMax toggles max-effort mode for the next set.
func (r *Recorder) SetPendingMax(i int, isMax bool) error {
	return r.editPending(i, func(p *PendingSet) { p.IsMax = isMax })
}

func (r *Recorder) editPending(i int, edit func(*PendingSet)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageExercises {
		return fmt.Errorf("%w: in %s, expected %s", ErrStage, r.stage, StageExercises)
	}
	if i < 0 || i >= len(r.exercises) {
		return ErrExerciseIndex
	}
	edit(&r.exercises[i].pending)
	return nil
}

// SetNote attaches a free-text note to one exercise.
func (r *Recorder) SetNote(i int, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageExercises {
		return fmt.Errorf("%w: in %s, expected %s", ErrStage, r.stage, StageExercises)
	}
	if i < 0 || i >= len(r.exercises) {
		return ErrExerciseIndex
	}
	r.exercises[i].note = note
	return nil
}

// AddSet records the pending set for exercise i and resets the form for the
// next one. It is a guarded no-op (false, nil) when both the pending weight
// and reps are unset. The weight carries over to the next pending set; the
// max flag is recomputed so exercises flagged in the catalog switch their
// next prompt to max mode once at least two sets exist.
func (r *Recorder) AddSet(i int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageExercises {
		return false, fmt.Errorf("%w: in %s, expected %s", ErrStage, r.stage, StageExercises)
	}
	if i < 0 || i >= len(r.exercises) {
		return false, ErrExerciseIndex
	}

	ex := &r.exercises[i]
	if ex.pending.Weight == nil && ex.pending.Reps == "" {
		return false, nil
	}

	reps, err := strconv.Atoi(ex.pending.Reps)
	if err != nil || reps < 0 {
		reps = 0
	}
	var weight *float64
	if ex.pending.Weight != nil {
		w := *ex.pending.Weight
		weight = &w
	}
	ex.sets = append(ex.sets, models.SetData{
		Weight:    weight,
		Reps:      reps,
		IsMaxReps: ex.pending.IsMax,
	})

	ex.pending = PendingSet{
		Weight: ex.pending.Weight,
		Reps:   "",
		IsMax:  ex.def.IsMaxReps && len(ex.sets) >= 2,
	}
	return true, nil
}

// StartCooldown leaves the exercises stage. No validation that any sets were
// recorded; zero-set exercises simply appear with an empty history.
func (r *Recorder) StartCooldown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advance(StageExercises)
}

// Complete freezes the cooldown run, finalizes the session log, and hands it
// to the appender. On append failure the recorder stays in the cooldown
// stage so the action can be retried; on success the recorder is terminal.
func (r *Recorder) Complete(ctx context.Context, speed, timeMin float64) (*models.SessionLog, error) {
	r.mu.Lock()
	if r.stage != StageCooldown {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: in %s, expected %s", ErrStage, r.stage, StageCooldown)
	}
	if r.finalizing {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.finalizing = true

	run := models.NewRunData(speed, timeMin)
	r.coolDown = &run

	now := r.now()
	totalTime := int(math.Round(now.Sub(r.startedAt).Minutes()))

	// Strip transient working state; only name, sets, and note survive.
	exercisesLog := make([]models.ExerciseLog, len(r.exercises))
	for i, ex := range r.exercises {
		sets := make([]models.SetData, len(ex.sets))
		copy(sets, ex.sets)
		exercisesLog[i] = models.ExerciseLog{
			ExerciseName: ex.def.Name,
			Sets:         sets,
			Note:         ex.note,
		}
	}

	log := models.SessionLog{
		ID:            r.newID(),
		Date:          now.UnixMilli(),
		MuscleGroupID: r.groupID,
		WorkoutID:     r.workout.ID,
		WarmUpRun:     r.warmUp,
		CoolDownRun:   r.coolDown,
		ExercisesLog:  exercisesLog,
		TotalTime:     totalTime,
	}
	r.mu.Unlock()

	err := <-r.appender.AppendSession(ctx, log)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizing = false
	if err != nil {
		return nil, fmt.Errorf("appending session: %w", err)
	}
	r.stage = StageComplete
	r.finalizedAs = &log
	return &log, nil
}

// Result returns the finalized session log once the recorder is complete.
func (r *Recorder) Result() *models.SessionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalizedAs
}

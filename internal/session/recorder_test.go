package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// fakeAppender records appended sessions and can be primed to fail.
type fakeAppender struct {
	sessions []models.SessionLog
	err      error
}

func (f *fakeAppender) AppendSession(ctx context.Context, session models.SessionLog) <-chan error {
	result := make(chan error, 1)
	if f.err != nil {
		result <- f.err
		return result
	}
	f.sessions = append(f.sessions, session)
	result <- nil
	return result
}

func floatPtr(v float64) *float64 { return &v }

func testWorkout() catalog.Workout {
	return catalog.Workout{
		ID:   "back-1",
		Name: "Back Day 1",
		Exercises: []catalog.Exercise{
			{Name: "Deadlift", DefaultWeight: floatPtr(60)},
			{Name: "Pull-up", IsMaxReps: true},
			{Name: "Pullover", DefaultWeight: floatPtr(15)},
		},
	}
}

// fixedClock returns a clock that starts at base and advances by step on each
// subsequent call.
func fixedClock(base time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		t := base.Add(time.Duration(calls) * step)
		calls++
		return t
	}
}

// TestNewRecorderDefaults verifies each exercise starts with its catalog
// default weight, no sets, and the catalog max flag on the first pending set.
func TestNewRecorderDefaults(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})

	if r.Stage() != StageWarmup {
		t.Fatalf("stage = %v, want warmup", r.Stage())
	}
	snap := r.Snapshot()
	if len(snap.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3", len(snap.Exercises))
	}
	dl := snap.Exercises[0]
	if dl.Pending.Weight == nil || *dl.Pending.Weight != 60 {
		t.Errorf("deadlift pending weight = %v, want 60", dl.Pending.Weight)
	}
	if dl.Pending.IsMax {
		t.Error("deadlift pending isMax = true, want false")
	}
	pu := snap.Exercises[1]
	if pu.Pending.Weight != nil {
		t.Errorf("pull-up pending weight = %v, want nil", pu.Pending.Weight)
	}
	if !pu.Pending.IsMax {
		t.Error("pull-up pending isMax = false, want true")
	}
}

// TestStageOrder verifies the only legal path is warmup → exercises →
// cooldown → complete, with out-of-order actions rejected.
func TestStageOrder(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})

	if err := r.StartCooldown(); !errors.Is(err, ErrStage) {
		t.Errorf("StartCooldown in warmup: err = %v, want ErrStage", err)
	}
	if _, err := r.AddSet(0); !errors.Is(err, ErrStage) {
		t.Errorf("AddSet in warmup: err = %v, want ErrStage", err)
	}
	if _, err := r.Complete(context.Background(), 5, 3); !errors.Is(err, ErrStage) {
		t.Errorf("Complete in warmup: err = %v, want ErrStage", err)
	}

	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatalf("ConfirmWarmup: %v", err)
	}
	if r.Stage() != StageExercises {
		t.Fatalf("stage = %v, want exercises", r.Stage())
	}
	if err := r.ConfirmWarmup(6, 10); !errors.Is(err, ErrStage) {
		t.Errorf("second ConfirmWarmup: err = %v, want ErrStage", err)
	}
}

// TestWarmupDistance verifies the warmup run is frozen with the derived
// distance.
func TestWarmupDistance(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot()
	if snap.WarmUpRun == nil {
		t.Fatal("WarmUpRun = nil after confirm")
	}
	if snap.WarmUpRun.Distance != 1.00 {
		t.Errorf("distance = %v, want 1.00", snap.WarmUpRun.Distance)
	}
}

// TestAddSetNoOp verifies recording a set with neither weight nor reps
// entered changes nothing and reports no error.
func TestAddSetNoOp(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	// Pull-up has no default weight and no reps entered yet.
	added, err := r.AddSet(1)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if added {
		t.Error("added = true for empty pending set")
	}
	if got := len(r.Snapshot().Exercises[1].Sets); got != 0 {
		t.Errorf("sets = %d, want 0", got)
	}
}

// TestAddSetAppendsExactlyOne verifies each AddSet press records exactly one
// set and clears the reps field.
func TestAddSetAppendsExactlyOne(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	if err := r.SetPendingReps(0, "8"); err != nil {
		t.Fatal(err)
	}
	added, err := r.AddSet(0)
	if err != nil || !added {
		t.Fatalf("AddSet = (%v, %v), want (true, nil)", added, err)
	}

	ex := r.Snapshot().Exercises[0]
	if len(ex.Sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(ex.Sets))
	}
	set := ex.Sets[0]
	if set.Weight == nil || *set.Weight != 60 {
		t.Errorf("set weight = %v, want 60", set.Weight)
	}
	if set.Reps != 8 {
		t.Errorf("set reps = %d, want 8", set.Reps)
	}
	if ex.Pending.Reps != "" {
		t.Errorf("pending reps = %q, want empty after add", ex.Pending.Reps)
	}
}

// TestWeightCarriesOver verifies an edited weight persists into the next
// pending set while reps resets.
func TestWeightCarriesOver(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	if err := r.SetPendingWeight(0, floatPtr(65)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPendingReps(0, "5"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddSet(0); err != nil {
		t.Fatal(err)
	}

	pending := r.Snapshot().Exercises[0].Pending
	if pending.Weight == nil || *pending.Weight != 65 {
		t.Errorf("carried weight = %v, want 65", pending.Weight)
	}
}

// TestBadRepsRecordedAsZero verifies unparseable or negative reps input is
// stored as zero rather than rejected.
func TestBadRepsRecordedAsZero(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	for _, reps := range []string{"abc", "-3"} {
		if err := r.SetPendingReps(0, reps); err != nil {
			t.Fatal(err)
		}
		if _, err := r.AddSet(0); err != nil {
			t.Fatal(err)
		}
	}
	sets := r.Snapshot().Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	for i, set := range sets {
		if set.Reps != 0 {
			t.Errorf("set %d reps = %d, want 0", i, set.Reps)
		}
	}
}

// TestMaxRepsPromptAfterTwoSets verifies an exercise flagged max-reps in the
// catalog switches its pending set to max mode once two sets are recorded,
// and an unflagged exercise never does.
func TestMaxRepsPromptAfterTwoSets(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	// The catalog-flagged pull-up starts in max mode; the user switches the
	// working sets to regular mode first.
	if err := r.SetPendingMax(1, false); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPendingReps(1, "10"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddSet(1); err != nil {
		t.Fatal(err)
	}
	if r.Snapshot().Exercises[1].Pending.IsMax {
		t.Error("pending isMax = true after one set")
	}

	if err := r.SetPendingReps(1, "8"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddSet(1); err != nil {
		t.Fatal(err)
	}
	if !r.Snapshot().Exercises[1].Pending.IsMax {
		t.Error("pending isMax = false after two sets on a flagged exercise")
	}

	// Deadlift is not flagged and stays regular regardless of set count.
	for range 3 {
		if err := r.SetPendingReps(0, "5"); err != nil {
			t.Fatal(err)
		}
		if _, err := r.AddSet(0); err != nil {
			t.Fatal(err)
		}
	}
	if r.Snapshot().Exercises[0].Pending.IsMax {
		t.Error("unflagged exercise prompted max mode")
	}
}

// TestExerciseIndexBounds verifies out-of-range indices are rejected across
// all per-exercise operations.
func TestExerciseIndexBounds(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}

	if err := r.SetPendingReps(3, "5"); !errors.Is(err, ErrExerciseIndex) {
		t.Errorf("SetPendingReps(3): err = %v, want ErrExerciseIndex", err)
	}
	if err := r.SetNote(-1, "x"); !errors.Is(err, ErrExerciseIndex) {
		t.Errorf("SetNote(-1): err = %v, want ErrExerciseIndex", err)
	}
	if _, err := r.AddSet(3); !errors.Is(err, ErrExerciseIndex) {
		t.Errorf("AddSet(3): err = %v, want ErrExerciseIndex", err)
	}
}

// TestCompleteRoundsElapsedMinutes verifies a ninety-second session records
// a total time of two minutes.
func TestCompleteRoundsElapsedMinutes(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	app := &fakeAppender{}
	r := New(testWorkout(), "back", app, WithClock(fixedClock(base, 90*time.Second)))

	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.StartCooldown(); err != nil {
		t.Fatal(err)
	}
	log, err := r.Complete(context.Background(), 5, 5)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if log.TotalTime != 2 {
		t.Errorf("TotalTime = %d, want 2", log.TotalTime)
	}
	if log.Date != base.Add(90*time.Second).UnixMilli() {
		t.Errorf("Date = %d, want completion instant", log.Date)
	}
}

// TestCompleteFinalLog verifies the finalized log carries only durable data:
// exercise names, recorded sets, notes, and both runs — never pending form
// state.
func TestCompleteFinalLog(t *testing.T) {
	app := &fakeAppender{}
	r := New(testWorkout(), "back", app, WithIDGenerator(func() string { return "fixed-id" }))

	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPendingReps(0, "8"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddSet(0); err != nil {
		t.Fatal(err)
	}
	if err := r.SetNote(0, "felt heavy"); err != nil {
		t.Fatal(err)
	}
	// Leave the pending reps for pullover entered but never recorded.
	if err := r.SetPendingReps(2, "12"); err != nil {
		t.Fatal(err)
	}
	if err := r.StartCooldown(); err != nil {
		t.Fatal(err)
	}

	log, err := r.Complete(context.Background(), 5, 6)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if log.ID != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", log.ID)
	}
	if log.MuscleGroupID != "back" || log.WorkoutID != "back-1" {
		t.Errorf("group/workout = %s/%s, want back/back-1", log.MuscleGroupID, log.WorkoutID)
	}
	if log.WarmUpRun == nil || log.CoolDownRun == nil {
		t.Fatal("both runs must be recorded")
	}
	if log.CoolDownRun.Distance != 0.5 {
		t.Errorf("cooldown distance = %v, want 0.5", log.CoolDownRun.Distance)
	}
	if len(log.ExercisesLog) != 3 {
		t.Fatalf("exercises = %d, want 3", len(log.ExercisesLog))
	}
	if log.ExercisesLog[0].Note != "felt heavy" {
		t.Errorf("note = %q, want felt heavy", log.ExercisesLog[0].Note)
	}
	// The never-recorded pullover entry ends with an empty set history.
	if got := len(log.ExercisesLog[2].Sets); got != 0 {
		t.Errorf("pullover sets = %d, want 0 (pending input is not a set)", got)
	}

	if len(app.sessions) != 1 {
		t.Fatalf("appended sessions = %d, want 1", len(app.sessions))
	}
	if r.Stage() != StageComplete {
		t.Errorf("stage = %v, want complete", r.Stage())
	}
	if r.Result() == nil {
		t.Error("Result = nil after completion")
	}
}

// TestCompleteFailureStaysRetryable verifies a failed append leaves the
// recorder in cooldown so completion can be retried, and a later success
// appends exactly once.
func TestCompleteFailureStaysRetryable(t *testing.T) {
	app := &fakeAppender{err: errors.New("store down")}
	r := New(testWorkout(), "back", app)

	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.StartCooldown(); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Complete(context.Background(), 5, 5); err == nil {
		t.Fatal("expected append failure")
	}
	if r.Stage() != StageCooldown {
		t.Fatalf("stage = %v after failure, want cooldown", r.Stage())
	}
	if len(app.sessions) != 0 {
		t.Fatalf("appended sessions = %d after failure, want 0", len(app.sessions))
	}

	app.err = nil
	if _, err := r.Complete(context.Background(), 5, 5); err != nil {
		t.Fatalf("retry Complete: %v", err)
	}
	if len(app.sessions) != 1 {
		t.Errorf("appended sessions = %d, want 1", len(app.sessions))
	}
	if r.Stage() != StageComplete {
		t.Errorf("stage = %v, want complete", r.Stage())
	}
}

// TestCompleteAfterComplete verifies a completed recorder rejects further
// finalization.
func TestCompleteAfterComplete(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.StartCooldown(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Complete(context.Background(), 5, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Complete(context.Background(), 5, 5); !errors.Is(err, ErrStage) {
		t.Errorf("second Complete: err = %v, want ErrStage", err)
	}
}

// slowAppender signals when an append starts and blocks it until released,
// so a second finalize can be attempted while the first is in flight.
type slowAppender struct {
	started chan struct{}
	release chan struct{}
}

func (s *slowAppender) AppendSession(ctx context.Context, session models.SessionLog) <-chan error {
	result := make(chan error, 1)
	go func() {
		close(s.started)
		<-s.release
		result <- nil
	}()
	return result
}

// TestCompleteBusyGuard verifies a finalize attempted while another is in
// flight fails fast with ErrBusy instead of double-appending.
func TestCompleteBusyGuard(t *testing.T) {
	app := &slowAppender{started: make(chan struct{}), release: make(chan struct{})}
	r := New(testWorkout(), "back", app)

	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.StartCooldown(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Complete(context.Background(), 5, 5)
		done <- err
	}()

	select {
	case <-app.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first finalize never reached the appender")
	}

	if _, err := r.Complete(context.Background(), 5, 5); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Complete: err = %v, want ErrBusy", err)
	}

	close(app.release)
	if err := <-done; err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if r.Stage() != StageComplete {
		t.Errorf("stage = %v, want complete", r.Stage())
	}
}

// TestSnapshotIsolation verifies mutating a snapshot's sets does not leak
// back into the recorder.
func TestSnapshotIsolation(t *testing.T) {
	r := New(testWorkout(), "back", &fakeAppender{})
	if err := r.ConfirmWarmup(6, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.SetPendingReps(0, "8"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddSet(0); err != nil {
		t.Fatal(err)
	}

	snap := r.Snapshot()
	snap.Exercises[0].Sets[0].Reps = 99
	*snap.Exercises[0].Pending.Weight = 999

	fresh := r.Snapshot()
	if fresh.Exercises[0].Sets[0].Reps != 8 {
		t.Error("snapshot mutation leaked into recorded sets")
	}
	if *fresh.Exercises[0].Pending.Weight != 60 {
		t.Error("snapshot mutation leaked into pending weight")
	}
}

package session

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ExerciseSnapshot is the read-only view of one exercise's working state.
type ExerciseSnapshot struct {
	Name          string           `json:"name"`
	DefaultWeight *float64         `json:"defaultWeight"`
	CatalogMax    bool             `json:"catalogMax"`
	Sets          []models.SetData `json:"sets"`
	Pending       PendingSet       `json:"pending"`
	Note          string           `json:"note,omitempty"`
}

// Snapshot is the read-only view of the whole recorder, for rendering.
type Snapshot struct {
	Stage         string             `json:"stage"`
	WorkoutID     string             `json:"workoutId"`
	WorkoutName   string             `json:"workoutName"`
	MuscleGroupID string             `json:"muscleGroupId"`
	StartedAt     time.Time          `json:"startedAt"`
	WarmUpRun     *models.RunData    `json:"warmUpRun,omitempty"`
	CoolDownRun   *models.RunData    `json:"coolDownRun,omitempty"`
	Exercises     []ExerciseSnapshot `json:"exercises"`
}

// Snapshot returns a copy of the recorder state. Mutating the snapshot never
// affects the recorder.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercises := make([]ExerciseSnapshot, len(r.exercises))
	for i, ex := range r.exercises {
		sets := make([]models.SetData, len(ex.sets))
		copy(sets, ex.sets)
		pending := ex.pending
		if pending.Weight != nil {
			w := *pending.Weight
			pending.Weight = &w
		}
		exercises[i] = ExerciseSnapshot{
			Name:          ex.def.Name,
			DefaultWeight: ex.def.DefaultWeight,
			CatalogMax:    ex.def.IsMaxReps,
			Sets:          sets,
			Pending:       pending,
			Note:          ex.note,
		}
	}

	snap := Snapshot{
		Stage:         r.stage.String(),
		WorkoutID:     r.workout.ID,
		WorkoutName:   r.workout.Name,
		MuscleGroupID: r.groupID,
		StartedAt:     r.startedAt,
		Exercises:     exercises,
	}
	if r.warmUp != nil {
		run := *r.warmUp
		snap.WarmUpRun = &run
	}
	if r.coolDown != nil {
		run := *r.coolDown
		snap.CoolDownRun = &run
	}
	return snap
}

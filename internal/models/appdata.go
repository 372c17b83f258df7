package models

import "math"

// Gender values accepted for a user profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// UserProfile holds the onboarding body metrics. CurrentWeight starts equal
// to InitialWeight and only changes through an explicit profile update.
type UserProfile struct {
	Name          string  `json:"name"`
	InitialWeight float64 `json:"initialWeight"`
	CurrentWeight float64 `json:"currentWeight"`
	TargetWeight  float64 `json:"targetWeight"`
	Height        float64 `json:"height"`
	Gender        string  `json:"gender"`
}

// SetData is one recorded repetition set. Weight is nil for bodyweight
// exercises. Immutable once appended to an exercise's set history.
type SetData struct {
	Weight    *float64 `json:"weight"`
	Reps      int      `json:"reps"`
	IsMaxReps bool     `json:"isMaxReps"`
}

// ExerciseLog is the finalized record of one exercise within a session.
type ExerciseLog struct {
	ExerciseName string    `json:"exerciseName"`
	Sets         []SetData `json:"sets"`
	Note         string    `json:"note,omitempty"`
}

// RunData holds treadmill warmup/cooldown parameters. Distance is derived
// once at confirmation and never recomputed.
type RunData struct {
	Speed    float64 `json:"speed"`    // km/h
	Time     float64 `json:"time"`     // minutes
	Distance float64 `json:"distance"` // km
}

// NewRunData derives the distance from speed and time:
// distance = speed * time / 60, rounded to two decimals.
func NewRunData(speed, timeMin float64) RunData {
	return RunData{
		Speed:    speed,
		Time:     timeMin,
		Distance: Round2(speed * timeMin / 60),
	}
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SessionLog is one completed workout's immutable record.
type SessionLog struct {
	ID            string        `json:"id"`
	Date          int64         `json:"date"` // epoch milliseconds, captured at completion
	MuscleGroupID string        `json:"muscleGroupId"`
	WorkoutID     string        `json:"workoutId"`
	WarmUpRun     *RunData      `json:"warmUpRun,omitempty"`
	CoolDownRun   *RunData      `json:"coolDownRun,omitempty"`
	ExercisesLog  []ExerciseLog `json:"exercisesLog"`
	TotalTime     int           `json:"totalTime"` // minutes
}

// AppData is the entire persisted document: profile plus session history.
// A nil Profile means onboarding has not been completed yet.
type AppData struct {
	Profile  *UserProfile `json:"profile"`
	Sessions []SessionLog `json:"sessions"`
}

// Default returns the empty document used when no document exists yet.
func Default() AppData {
	return AppData{Profile: nil, Sessions: []SessionLog{}}
}

// Clone returns a deep copy: no pointer or slice is shared with the
// original, down to each set's weight.
func (d AppData) Clone() AppData {
	out := AppData{Sessions: make([]SessionLog, len(d.Sessions))}
	for i, session := range d.Sessions {
		out.Sessions[i] = session.clone()
	}
	if d.Profile != nil {
		p := *d.Profile
		out.Profile = &p
	}
	return out
}

func (s SessionLog) clone() SessionLog {
	out := s
	if s.WarmUpRun != nil {
		run := *s.WarmUpRun
		out.WarmUpRun = &run
	}
	if s.CoolDownRun != nil {
		run := *s.CoolDownRun
		out.CoolDownRun = &run
	}
	if s.ExercisesLog != nil {
		out.ExercisesLog = make([]ExerciseLog, len(s.ExercisesLog))
		for i, exercise := range s.ExercisesLog {
			out.ExercisesLog[i] = exercise
			if exercise.Sets != nil {
				sets := make([]SetData, len(exercise.Sets))
				for j, set := range exercise.Sets {
					sets[j] = set
					if set.Weight != nil {
						w := *set.Weight
						sets[j].Weight = &w
					}
				}
				out.ExercisesLog[i].Sets = sets
			}
		}
	}
	return out
}

// Package stats computes aggregate statistics over the session history.
package stats

import (
	"github.com/claude/liftlog/internal/models"
)

// weightUpdateInterval is how many completed workouts pass between
// current-weight update prompts.
const weightUpdateInterval = 10

// StrengthVolume aggregates recorded set work across sessions.
type StrengthVolume struct {
	TotalSets int     `json:"totalSets"`
	TotalReps int     `json:"totalReps"`
	TonnageKg float64 `json:"tonnageKg"`
	MaxSets   int     `json:"maxSets"` // sets performed to failure
}

// WeightProgress relates the profile's current weight to its start and goal.
type WeightProgress struct {
	ChangeKg   float64 `json:"changeKg"`   // current - initial
	ToTargetKg float64 `json:"toTargetKg"` // current - target
}

// Summary is the aggregate view served on the stats endpoint.
type Summary struct {
	TotalWorkouts   int             `json:"totalWorkouts"`
	TotalMinutes    int             `json:"totalMinutes"`
	GroupCounts     map[string]int  `json:"groupCounts"`
	TreadmillKm     float64         `json:"treadmillKm"`
	Strength        StrengthVolume  `json:"strength"`
	Weight          *WeightProgress `json:"weight,omitempty"`
	WeightUpdateDue bool            `json:"weightUpdateDue"`
}

// Compute builds a Summary from the full document. A nil profile yields a
// summary without weight progress.
func Compute(data models.AppData) Summary {
	s := Summary{
		TotalWorkouts: len(data.Sessions),
		GroupCounts:   make(map[string]int),
	}

	for _, session := range data.Sessions {
		s.TotalMinutes += session.TotalTime
		s.GroupCounts[session.MuscleGroupID]++
		if session.WarmUpRun != nil {
			s.TreadmillKm += session.WarmUpRun.Distance
		}
		if session.CoolDownRun != nil {
			s.TreadmillKm += session.CoolDownRun.Distance
		}
		for _, ex := range session.ExercisesLog {
			for _, set := range ex.Sets {
				s.Strength.TotalSets++
				s.Strength.TotalReps += set.Reps
				if set.Weight != nil {
					s.Strength.TonnageKg += *set.Weight * float64(set.Reps)
				}
				if set.IsMaxReps {
					s.Strength.MaxSets++
				}
			}
		}
	}
	s.TreadmillKm = models.Round2(s.TreadmillKm)
	s.Strength.TonnageKg = models.Round2(s.Strength.TonnageKg)

	if data.Profile != nil {
		s.Weight = &WeightProgress{
			ChangeKg:   models.Round2(data.Profile.CurrentWeight - data.Profile.InitialWeight),
			ToTargetKg: models.Round2(data.Profile.CurrentWeight - data.Profile.TargetWeight),
		}
	}
	s.WeightUpdateDue = s.TotalWorkouts > 0 && s.TotalWorkouts%weightUpdateInterval == 0

	return s
}

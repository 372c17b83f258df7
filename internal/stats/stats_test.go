package stats

import (
	"testing"

	"github.com/claude/liftlog/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func run(speed, timeMin float64) *models.RunData {
	r := models.NewRunData(speed, timeMin)
	return &r
}

// TestComputeEmpty verifies the zero document yields an all-zero summary
// without weight progress or an update prompt.
func TestComputeEmpty(t *testing.T) {
	s := Compute(models.Default())

	if s.TotalWorkouts != 0 || s.TotalMinutes != 0 {
		t.Errorf("totals = %d workouts / %d min, want 0 / 0", s.TotalWorkouts, s.TotalMinutes)
	}
	if s.Weight != nil {
		t.Errorf("Weight = %+v, want nil without a profile", s.Weight)
	}
	if s.WeightUpdateDue {
		t.Error("WeightUpdateDue = true with no workouts")
	}
	if s.GroupCounts == nil {
		t.Error("GroupCounts = nil, want empty map")
	}
}

// TestComputeAggregates verifies minutes, group counts, treadmill distance,
// and strength volume across a small history.
func TestComputeAggregates(t *testing.T) {
	data := models.AppData{
		Sessions: []models.SessionLog{
			{
				MuscleGroupID: "back",
				TotalTime:     45,
				WarmUpRun:     run(6, 10), // 1.00 km
				CoolDownRun:   run(5, 6),  // 0.50 km
				ExercisesLog: []models.ExerciseLog{
					{
						ExerciseName: "Deadlift",
						Sets: []models.SetData{
							{Weight: floatPtr(60), Reps: 8},
							{Weight: floatPtr(60), Reps: 6},
						},
					},
					{
						ExerciseName: "Pull-up",
						Sets: []models.SetData{
							{Reps: 10},
							{Reps: 12, IsMaxReps: true},
						},
					},
				},
			},
			{
				MuscleGroupID: "back",
				TotalTime:     30,
				WarmUpRun:     run(8, 45), // 6.00 km
			},
			{
				MuscleGroupID: "legs",
				TotalTime:     50,
			},
		},
	}

	s := Compute(data)

	if s.TotalWorkouts != 3 {
		t.Errorf("TotalWorkouts = %d, want 3", s.TotalWorkouts)
	}
	if s.TotalMinutes != 125 {
		t.Errorf("TotalMinutes = %d, want 125", s.TotalMinutes)
	}
	if s.GroupCounts["back"] != 2 || s.GroupCounts["legs"] != 1 {
		t.Errorf("GroupCounts = %v, want back:2 legs:1", s.GroupCounts)
	}
	if s.TreadmillKm != 7.5 {
		t.Errorf("TreadmillKm = %v, want 7.5", s.TreadmillKm)
	}
	if s.Strength.TotalSets != 4 {
		t.Errorf("TotalSets = %d, want 4", s.Strength.TotalSets)
	}
	if s.Strength.TotalReps != 36 {
		t.Errorf("TotalReps = %d, want 36", s.Strength.TotalReps)
	}
	// Only weighted sets contribute tonnage: 60*8 + 60*6.
	if s.Strength.TonnageKg != 840 {
		t.Errorf("TonnageKg = %v, want 840", s.Strength.TonnageKg)
	}
	if s.Strength.MaxSets != 1 {
		t.Errorf("MaxSets = %d, want 1", s.Strength.MaxSets)
	}
}

// TestWeightProgress verifies progress is relative to both the starting and
// target weights.
func TestWeightProgress(t *testing.T) {
	profile := models.NewProfile("Olena", 65, 170, 60, models.GenderFemale)
	profile.CurrentWeight = 63.5

	s := Compute(models.AppData{Profile: profile, Sessions: []models.SessionLog{}})

	if s.Weight == nil {
		t.Fatal("Weight = nil with a profile present")
	}
	if s.Weight.ChangeKg != -1.5 {
		t.Errorf("ChangeKg = %v, want -1.5", s.Weight.ChangeKg)
	}
	if s.Weight.ToTargetKg != 3.5 {
		t.Errorf("ToTargetKg = %v, want 3.5", s.Weight.ToTargetKg)
	}
}

// TestWeightUpdateDue verifies the prompt fires on every tenth completed
// workout and only then.
func TestWeightUpdateDue(t *testing.T) {
	cases := []struct {
		workouts int
		want     bool
	}{
		{0, false},
		{1, false},
		{9, false},
		{10, true},
		{11, false},
		{20, true},
	}
	for _, tc := range cases {
		sessions := make([]models.SessionLog, tc.workouts)
		s := Compute(models.AppData{Sessions: sessions})
		if s.WeightUpdateDue != tc.want {
			t.Errorf("workouts=%d: WeightUpdateDue = %v, want %v", tc.workouts, s.WeightUpdateDue, tc.want)
		}
	}
}

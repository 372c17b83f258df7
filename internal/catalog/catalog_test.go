package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultCatalog verifies the embedded catalog parses and passes
// validation.
func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Groups) == 0 {
		t.Fatal("catalog has no muscle groups")
	}
	for _, g := range cat.Groups {
		if g.ID == "" || g.Name == "" {
			t.Errorf("group %+v missing id or name", g)
		}
	}
}

// TestFindWorkout verifies workout lookup returns the owning group id.
func TestFindWorkout(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	workout, groupID := cat.FindWorkout("back-1")
	if workout == nil {
		t.Fatal("back-1 not found")
	}
	if groupID != "back" {
		t.Errorf("groupID = %q, want %q", groupID, "back")
	}
	if len(workout.Exercises) == 0 {
		t.Error("workout has no exercises")
	}

	if w, g := cat.FindWorkout("nope"); w != nil || g != "" {
		t.Errorf("FindWorkout(nope) = %v, %q, want nil", w, g)
	}
}

// TestBodyweightExercises verifies nil default weights survive parsing, so
// bodyweight exercises are distinguishable from zero-weight ones.
func TestBodyweightExercises(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	workout, _ := cat.FindWorkout("back-1")
	var pullUp *Exercise
	for i := range workout.Exercises {
		if workout.Exercises[i].Name == "Pull-up" {
			pullUp = &workout.Exercises[i]
		}
	}
	if pullUp == nil {
		t.Fatal("Pull-up not in back-1")
	}
	if pullUp.DefaultWeight != nil {
		t.Errorf("Pull-up defaultWeight = %v, want nil", *pullUp.DefaultWeight)
	}
	if !pullUp.IsMaxReps {
		t.Error("Pull-up should be flagged max reps")
	}
}

// TestLoadFileOverride verifies a catalog can be loaded from a YAML file.
func TestLoadFileOverride(t *testing.T) {
	content := `
groups:
  - id: custom
    name: Custom
    icon: "X"
    workouts:
      - id: custom-1
        name: Only
        exercises:
          - { name: Thing, defaultWeight: 20, isMaxReps: false }
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Groups) != 1 || cat.Groups[0].ID != "custom" {
		t.Errorf("unexpected catalog: %+v", cat)
	}
}

// TestValidationRejectsDuplicates verifies duplicate workout ids fail parsing.
func TestValidationRejectsDuplicates(t *testing.T) {
	content := `
groups:
  - id: a
    name: A
    workouts:
      - id: w-1
        name: One
        exercises: [{ name: X, defaultWeight: 1, isMaxReps: false }]
  - id: b
    name: B
    workouts:
      - id: w-1
        name: Dup
        exercises: [{ name: Y, defaultWeight: 1, isMaxReps: false }]
`
	if _, err := parse([]byte(content)); err == nil {
		t.Fatal("expected duplicate workout id error")
	}
}

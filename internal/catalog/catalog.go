// Package catalog holds the static training reference data: muscle groups,
// their workouts, and each workout's exercises. The catalog is read-only at
// runtime; the session recorder consumes it only for initialization.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Exercise is one catalog exercise. DefaultWeight is nil for bodyweight and
// cardio exercises. IsMaxReps marks exercises whose final set is performed
// to failure.
type Exercise struct {
	Name          string   `yaml:"name" json:"name"`
	DefaultWeight *float64 `yaml:"defaultWeight" json:"defaultWeight"`
	IsMaxReps     bool     `yaml:"isMaxReps" json:"isMaxReps"`
}

// Workout is a named exercise sequence within a muscle group.
type Workout struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// MuscleGroup is a top-level catalog entry.
type MuscleGroup struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Icon     string    `yaml:"icon" json:"icon"`
	Workouts []Workout `yaml:"workouts" json:"workouts"`
}

// Catalog is the full muscle-group hierarchy.
type Catalog struct {
	Groups []MuscleGroup `yaml:"groups" json:"groups"`
}

// Default parses the embedded catalog data.
func Default() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

// LoadFile reads a catalog from a YAML file, for overriding the built-in
// training plan.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seenGroups := make(map[string]bool)
	seenWorkouts := make(map[string]bool)
	for _, g := range c.Groups {
		if g.ID == "" {
			return fmt.Errorf("muscle group %q has no id", g.Name)
		}
		if seenGroups[g.ID] {
			return fmt.Errorf("duplicate muscle group id %q", g.ID)
		}
		seenGroups[g.ID] = true
		for _, w := range g.Workouts {
			if w.ID == "" {
				return fmt.Errorf("workout %q in group %q has no id", w.Name, g.ID)
			}
			if seenWorkouts[w.ID] {
				return fmt.Errorf("duplicate workout id %q", w.ID)
			}
			seenWorkouts[w.ID] = true
			if len(w.Exercises) == 0 {
				return fmt.Errorf("workout %q has no exercises", w.ID)
			}
		}
	}
	return nil
}

// Group returns the muscle group with the given id, or nil.
func (c *Catalog) Group(groupID string) *MuscleGroup {
	for i := range c.Groups {
		if c.Groups[i].ID == groupID {
			return &c.Groups[i]
		}
	}
	return nil
}

// FindWorkout locates a workout by id across all groups. Returns the workout
// and the id of the group that owns it, or nil when not found.
func (c *Catalog) FindWorkout(workoutID string) (*Workout, string) {
	for i := range c.Groups {
		g := &c.Groups[i]
		for j := range g.Workouts {
			if g.Workouts[j].ID == workoutID {
				return &g.Workouts[j], g.ID
			}
		}
	}
	return nil, ""
}

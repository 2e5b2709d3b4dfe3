// Package spawn provides the enemy archetype roster and the spawner that
// selects and places enemies for the director.
package spawn

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Archetype defines a reusable enemy type loaded from YAML.
type Archetype struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Worth is how many standard enemy slots one instance consumes.
	Worth int `yaml:"worth"`
	// DifficultyRequirement is the minimum epoch at which this archetype
	// may spawn.
	DifficultyRequirement int `yaml:"difficulty_requirement"`

	MaxHealth float64 `yaml:"max_health"`
	Strength  float64 `yaml:"strength"`
	Defense   float64 `yaml:"defense"`
	Speed     float64 `yaml:"speed"`

	// SimultaneousAttackers is the instance's own admission capacity.
	SimultaneousAttackers int `yaml:"simultaneous_attackers"`
	// BattleCircleRadius is the engagement ring kept around the instance.
	BattleCircleRadius float64 `yaml:"battle_circle_radius"`

	// Actions are the action template names granted to instances.
	Actions []string `yaml:"actions"`
	// AttackActions names the subset the AI attacks with.
	AttackActions []string `yaml:"attack_actions"`
}

// Validate checks the archetype's authoring invariants.
//
// Precondition: a must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Worth >= 1,
// DifficultyRequirement >= 1, MaxHealth > 0, Defense > 0, and every attack
// action is granted; returns an error on the first violation otherwise.
func (a *Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("enemy archetype: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("enemy archetype %q: name must not be empty", a.ID)
	}
	if a.Worth < 1 {
		return fmt.Errorf("enemy archetype %q: worth must be >= 1", a.ID)
	}
	if a.DifficultyRequirement < 1 {
		return fmt.Errorf("enemy archetype %q: difficulty_requirement must be >= 1", a.ID)
	}
	if a.MaxHealth <= 0 {
		return fmt.Errorf("enemy archetype %q: max_health must be positive", a.ID)
	}
	if a.Defense <= 0 {
		return fmt.Errorf("enemy archetype %q: defense must be positive", a.ID)
	}
	if a.SimultaneousAttackers < 0 {
		return fmt.Errorf("enemy archetype %q: simultaneous_attackers must not be negative", a.ID)
	}
	granted := make(map[string]bool, len(a.Actions))
	for _, name := range a.Actions {
		granted[name] = true
	}
	for _, name := range a.AttackActions {
		if !granted[name] {
			return fmt.Errorf("enemy archetype %q: attack action %q is not in actions", a.ID, name)
		}
	}
	return nil
}

// LoadArchetypeFromBytes parses a single archetype from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Archetype.
// Postcondition: Returns a validated *Archetype, or an error.
func LoadArchetypeFromBytes(data []byte) (*Archetype, error) {
	var a Archetype
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing enemy archetype YAML: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadArchetypesFromDir loads every *.yaml file in dir in lexicographic
// order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all validated archetypes, or the first error;
// duplicate IDs are an error.
func LoadArchetypesFromDir(dir string) ([]*Archetype, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy archetype dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	var archetypes []*Archetype
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading enemy archetype file %s: %w", p, err)
		}
		a, err := LoadArchetypeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("enemy archetype file %s: %w", p, err)
		}
		if prev, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("enemy archetype %q in %s duplicates %s", a.ID, p, prev)
		}
		seen[a.ID] = p
		archetypes = append(archetypes, a)
	}
	return archetypes, nil
}

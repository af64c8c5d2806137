// Package scenario loads combat scenarios from YAML and builds the galaxy
// state they describe. A scenario names the systems and planets involved, the
// unit deployments for each player, and the combat to trigger.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/helios/internal/game/galaxy"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// SystemDef describes one system and its planets.
type SystemDef struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Adjacent []string `yaml:"adjacent"`
	Planets  []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		// Controller is the player holding the planet at setup, empty for
		// an uncontrolled planet.
		Controller string `yaml:"controller"`
	} `yaml:"planets"`
}

// Deployment places count units of one template for one owner.
//
// Precondition: Planet empty means the system's space area.
type Deployment struct {
	Owner       string `yaml:"owner"`
	Template    string `yaml:"template"`
	Count       int    `yaml:"count"`
	System      string `yaml:"system"`
	Planet      string `yaml:"planet"`
	ArrivedFrom string `yaml:"arrived_from"`
}

// CombatDef identifies the combat the scenario triggers.
type CombatDef struct {
	// Variant is "space" or "ground".
	Variant string `yaml:"variant"`
	System  string `yaml:"system"`
	Planet  string `yaml:"planet"`
	// Attacker is the player whose action triggers the combat.
	Attacker string `yaml:"attacker"`
}

// Scenario is a full combat setup loaded from a YAML file.
//
// Invariant: all system and planet IDs are unique within the scenario.
type Scenario struct {
	ID          string       `yaml:"id"`
	Description string       `yaml:"description"`
	Systems     []SystemDef  `yaml:"systems"`
	Deployments []Deployment `yaml:"deployments"`
	Combat      CombatDef    `yaml:"combat"`
}

// Validate checks all required fields and cross-references.
//
// Postcondition: nil return guarantees a non-empty ID, at least one system,
// unique system and planet IDs, every deployment referencing a declared
// system/planet with a positive count, and a combat block naming a declared
// location and a deploying attacker.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return errors.New("scenario: ID must not be empty")
	}
	if len(s.Systems) == 0 {
		return fmt.Errorf("scenario %q: must declare at least one system", s.ID)
	}

	systems := make(map[string]bool)
	planets := make(map[string]string)
	for _, sys := range s.Systems {
		if sys.ID == "" {
			return fmt.Errorf("scenario %q: system has empty ID", s.ID)
		}
		if systems[sys.ID] {
			return fmt.Errorf("scenario %q: duplicate system ID %q", s.ID, sys.ID)
		}
		systems[sys.ID] = true
		for _, p := range sys.Planets {
			if p.ID == "" {
				return fmt.Errorf("scenario %q system %q: planet has empty ID", s.ID, sys.ID)
			}
			if _, dup := planets[p.ID]; dup {
				return fmt.Errorf("scenario %q: duplicate planet ID %q", s.ID, p.ID)
			}
			planets[p.ID] = sys.ID
		}
	}

	owners := make(map[string]bool)
	for i, d := range s.Deployments {
		if d.Owner == "" || d.Template == "" {
			return fmt.Errorf("scenario %q deployment %d: owner and template must not be empty", s.ID, i)
		}
		if d.Count < 1 {
			return fmt.Errorf("scenario %q deployment %d: count must be >= 1, got %d", s.ID, i, d.Count)
		}
		if !systems[d.System] {
			return fmt.Errorf("scenario %q deployment %d: unknown system %q", s.ID, i, d.System)
		}
		if d.Planet != "" && planets[d.Planet] != d.System {
			return fmt.Errorf("scenario %q deployment %d: planet %q is not in system %q", s.ID, i, d.Planet, d.System)
		}
		owners[d.Owner] = true
	}

	switch s.Combat.Variant {
	case "space":
		if !systems[s.Combat.System] {
			return fmt.Errorf("scenario %q: combat references unknown system %q", s.ID, s.Combat.System)
		}
	case "ground":
		if planets[s.Combat.Planet] == "" {
			return fmt.Errorf("scenario %q: combat references unknown planet %q", s.ID, s.Combat.Planet)
		}
	default:
		return fmt.Errorf("scenario %q: combat.variant must be \"space\" or \"ground\", got %q", s.ID, s.Combat.Variant)
	}
	if !owners[s.Combat.Attacker] {
		return fmt.Errorf("scenario %q: combat.attacker %q has no deployments", s.ID, s.Combat.Attacker)
	}
	return nil
}

// Load reads and validates a single scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %q: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadAll reads every *.yaml scenario in dir, keyed by scenario ID.
//
// Postcondition: Returns an error on the first invalid file or duplicate ID.
func LoadAll(dir string) (map[string]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %q: %w", dir, err)
	}

	scenarios := make(map[string]*Scenario)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		s, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := scenarios[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario ID %q in %q", s.ID, entry.Name())
		}
		scenarios[s.ID] = s
	}
	return scenarios, nil
}

// Build materializes the scenario into a fresh galaxy state.
//
// Precondition: templates must contain every template the deployments name.
// Postcondition: Every deployed unit is placed; arrival origins are recorded
// for deployments that declare one.
func (s *Scenario) Build(templates map[string]*unit.Template) (*galaxy.State, error) {
	gs := galaxy.NewState()
	for _, sys := range s.Systems {
		if err := gs.AddSystem(&galaxy.System{ID: sys.ID, Name: sys.Name, Adjacent: sys.Adjacent}); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.ID, err)
		}
		for _, p := range sys.Planets {
			if err := gs.AddPlanet(&galaxy.Planet{ID: p.ID, SystemID: sys.ID, Name: p.Name, Controller: p.Controller}); err != nil {
				return nil, fmt.Errorf("scenario %q: %w", s.ID, err)
			}
		}
	}

	for _, d := range s.Deployments {
		tmpl, ok := templates[d.Template]
		if !ok {
			return nil, fmt.Errorf("scenario %q: unknown unit template %q", s.ID, d.Template)
		}
		for i := 0; i < d.Count; i++ {
			u := unit.New(uuid.NewString(), tmpl, d.Owner)
			if err := gs.PlaceUnit(u, d.System, d.Planet); err != nil {
				return nil, fmt.Errorf("scenario %q: placing unit %q: %w", s.ID, u.ID, err)
			}
			if d.ArrivedFrom != "" {
				gs.RecordArrival(u.ID, d.ArrivedFrom)
			}
		}
	}
	return gs, nil
}

// Package unit provides unit stat templates and live unit instances for the
// Helios combat engine.
package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Class identifies the broad combat role of a unit.
type Class string

const (
	// ClassShip is a spaceborne unit that participates in space combat and can
	// carry transportable units when it has capacity.
	ClassShip Class = "ship"
	// ClassFighter is a spaceborne unit with no independent move value; it must
	// be carried by a ship with capacity to leave a system.
	ClassFighter Class = "fighter"
	// ClassGroundForce is a planetside unit that participates in ground combat
	// and requires transport to move between systems.
	ClassGroundForce Class = "ground_force"
)

// Spaceworthy reports whether units of this class fight in space combat.
func (c Class) Spaceworthy() bool {
	return c == ClassShip || c == ClassFighter
}

// Transportable reports whether units of this class consume ship capacity
// when moving between systems.
func (c Class) Transportable() bool {
	return c == ClassFighter || c == ClassGroundForce
}

// Template defines a reusable unit archetype loaded from YAML.
//
// Combat and barrage thresholds are die faces on a d10: a roll at or above the
// threshold is a hit. A zero threshold means the unit rolls no dice of that
// kind. All capability fields are pre-resolved values; the engine never
// interprets ability text.
type Template struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Class Class  `yaml:"class"`
	// CombatThreshold is the minimum die value that scores a hit in combat.
	CombatThreshold int `yaml:"combat_threshold"`
	// CombatDice is the number of combat dice rolled per round; burst units
	// declare two or more. Zero defaults to one when CombatThreshold is set.
	CombatDice int `yaml:"combat_dice"`
	// BarrageThreshold is the anti-fighter barrage hit threshold; zero means
	// the unit has no barrage capability.
	BarrageThreshold int `yaml:"barrage_threshold"`
	// BarrageDice is the number of barrage dice rolled in round one.
	BarrageDice int `yaml:"barrage_dice"`
	// SustainCapacity is the number of hits one use of sustain damage cancels;
	// zero means no sustain capability. Resolved from unit abilities at
	// content-load time, never summed by the engine.
	SustainCapacity int `yaml:"sustain_capacity"`
	// Move is the unit's move value; zero means the unit cannot relocate on
	// its own and is removed instead of retreating.
	Move int `yaml:"move"`
	// Capacity is the number of transportable units this unit can carry.
	Capacity int `yaml:"capacity"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name, and Class are valid and all
// threshold/dice/capacity fields are in range; returns an error on the first
// violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("unit template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("unit template %q: name must not be empty", t.ID)
	}
	switch t.Class {
	case ClassShip, ClassFighter, ClassGroundForce:
	default:
		return fmt.Errorf("unit template %q: class must be one of [ship, fighter, ground_force], got %q", t.ID, t.Class)
	}
	if t.CombatThreshold < 0 || t.CombatThreshold > 10 {
		return fmt.Errorf("unit template %q: combat_threshold must be 0-10, got %d", t.ID, t.CombatThreshold)
	}
	if t.CombatThreshold == 0 && t.CombatDice > 0 {
		return fmt.Errorf("unit template %q: combat_dice set without combat_threshold", t.ID)
	}
	if t.CombatDice < 0 {
		return fmt.Errorf("unit template %q: combat_dice must be >= 0, got %d", t.ID, t.CombatDice)
	}
	if t.BarrageThreshold < 0 || t.BarrageThreshold > 10 {
		return fmt.Errorf("unit template %q: barrage_threshold must be 0-10, got %d", t.ID, t.BarrageThreshold)
	}
	if t.BarrageThreshold == 0 && t.BarrageDice > 0 {
		return fmt.Errorf("unit template %q: barrage_dice set without barrage_threshold", t.ID)
	}
	if t.BarrageThreshold > 0 && t.Class != ClassShip {
		return fmt.Errorf("unit template %q: barrage capability requires class ship", t.ID)
	}
	if t.SustainCapacity < 0 {
		return fmt.Errorf("unit template %q: sustain_capacity must be >= 0, got %d", t.ID, t.SustainCapacity)
	}
	if t.Move < 0 {
		return fmt.Errorf("unit template %q: move must be >= 0, got %d", t.ID, t.Move)
	}
	if t.Capacity < 0 {
		return fmt.Errorf("unit template %q: capacity must be >= 0, got %d", t.ID, t.Capacity)
	}
	return nil
}

// LoadTemplateFromBytes parses a single unit template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template with CombatDice and BarrageDice
// defaulted to 1 when their threshold is set, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing unit template YAML: %w", err)
	}
	if tmpl.CombatThreshold > 0 && tmpl.CombatDice == 0 {
		tmpl.CombatDice = 1
	}
	if tmpl.BarrageThreshold > 0 && tmpl.BarrageDice == 0 {
		tmpl.BarrageDice = 1
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading unit dir %q: %w", dir, err)
	}
	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// Index builds a lookup map from template ID to template.
//
// Postcondition: Returns an error if two templates share an ID.
func Index(templates []*Template) (map[string]*Template, error) {
	byID := make(map[string]*Template, len(templates))
	for _, t := range templates {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate unit template id %q", t.ID)
		}
		byID[t.ID] = t
	}
	return byID, nil
}

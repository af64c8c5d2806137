package galaxy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// State holds the mutable galaxy: systems, planets, the unit arena, command
// tokens, and per-player reinforcement pools. The combat engine consumes it
// through narrow query and command methods and never mutates units directly.
// All methods are safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	systems map[string]*System
	planets map[string]*Planet
	// units is the arena: the single owning collection of live units.
	units map[string]*unit.Unit
	// unitSystem maps unit ID to the system it occupies.
	unitSystem map[string]string
	// unitPlanet maps unit ID to the planet it occupies; empty = in space.
	unitPlanet map[string]string
	// arrivedFrom maps unit ID to the system it most recently arrived from.
	arrivedFrom map[string]string
	// tokens maps system ID to the set of player IDs with a command token there.
	tokens map[string]map[string]bool
	// reinforcements maps player ID to unit IDs returned from the board.
	reinforcements map[string][]string
}

// NewState creates an empty galaxy State.
//
// Postcondition: Returns a non-nil State ready for use.
func NewState() *State {
	return &State{
		systems:        make(map[string]*System),
		planets:        make(map[string]*Planet),
		units:          make(map[string]*unit.Unit),
		unitSystem:     make(map[string]string),
		unitPlanet:     make(map[string]string),
		arrivedFrom:    make(map[string]string),
		tokens:         make(map[string]map[string]bool),
		reinforcements: make(map[string][]string),
	}
}

// AddSystem registers a system in the galaxy.
//
// Precondition: s must be non-nil with a non-empty ID.
// Postcondition: Returns an error if the ID is already registered.
func (g *State) AddSystem(s *System) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.systems[s.ID]; exists {
		return fmt.Errorf("system %q already registered", s.ID)
	}
	g.systems[s.ID] = s
	return nil
}

// AddPlanet registers a planet and links it to its system.
//
// Precondition: p.SystemID must reference a registered system.
func (g *State) AddPlanet(p *Planet) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sys, ok := g.systems[p.SystemID]
	if !ok {
		return fmt.Errorf("planet %q references unknown system %q", p.ID, p.SystemID)
	}
	if _, exists := g.planets[p.ID]; exists {
		return fmt.Errorf("planet %q already registered", p.ID)
	}
	g.planets[p.ID] = p
	sys.Planets = append(sys.Planets, p.ID)
	return nil
}

// System returns the system with the given ID.
//
// Postcondition: Returns (system, true) if found, or (nil, false) otherwise.
func (g *State) System(id string) (*System, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.systems[id]
	return s, ok
}

// Planet returns the planet with the given ID.
func (g *State) Planet(id string) (*Planet, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.planets[id]
	return p, ok
}

// PlaceUnit adds a unit to the arena in the given system, on planetID when
// non-empty or in the system's space otherwise.
//
// Precondition: u must be non-nil; systemID must be registered; planetID, if
// non-empty, must belong to systemID.
func (g *State) PlaceUnit(u *unit.Unit, systemID, planetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.systems[systemID]; !ok {
		return fmt.Errorf("placing unit %q: unknown system %q", u.ID, systemID)
	}
	if planetID != "" {
		p, ok := g.planets[planetID]
		if !ok {
			return fmt.Errorf("placing unit %q: unknown planet %q", u.ID, planetID)
		}
		if p.SystemID != systemID {
			return fmt.Errorf("placing unit %q: planet %q is not in system %q", u.ID, planetID, systemID)
		}
	}
	if _, exists := g.units[u.ID]; exists {
		return fmt.Errorf("unit %q already placed", u.ID)
	}
	g.units[u.ID] = u
	g.unitSystem[u.ID] = systemID
	g.unitPlanet[u.ID] = planetID
	return nil
}

// RecordArrival marks the system a unit most recently arrived from, used by
// retreat validation to bar re-entry into the origin.
//
// Precondition: unitID must be placed.
func (g *State) RecordArrival(unitID, fromSystemID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.arrivedFrom[unitID] = fromSystemID
}

// LastArrivedFrom returns the system the unit most recently arrived from, or
// an empty string when it has not moved.
func (g *State) LastArrivedFrom(unitID string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.arrivedFrom[unitID]
}

// Unit returns the live unit with the given ID.
func (g *State) Unit(id string) (*unit.Unit, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	u, ok := g.units[id]
	return u, ok
}

// IsAdjacent reports whether two systems are neighbors, in either direction.
//
// Postcondition: Returns false when either system is unknown.
func (g *State) IsAdjacent(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sa, okA := g.systems[a]
	sb, okB := g.systems[b]
	if !okA || !okB {
		return false
	}
	return sa.IsAdjacentTo(b) || sb.IsAdjacentTo(a)
}

// AdjacentSystems returns the IDs of all systems adjacent to systemID.
//
// Postcondition: Returns a sorted copy; nil when the system is unknown.
func (g *State) AdjacentSystems(systemID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.systems[systemID]
	if !ok {
		return nil
	}
	neighbors := make(map[string]bool, len(s.Adjacent))
	for _, id := range s.Adjacent {
		neighbors[id] = true
	}
	for id, other := range g.systems {
		if other.IsAdjacentTo(systemID) {
			neighbors[id] = true
		}
	}
	delete(neighbors, systemID)
	out := make([]string, 0, len(neighbors))
	for id := range neighbors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SpaceUnits returns all units in the space area of systemID, sorted by ID
// for deterministic iteration.
func (g *State) SpaceUnits(systemID string) []*unit.Unit {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*unit.Unit
	for id, sys := range g.unitSystem {
		if sys == systemID && g.unitPlanet[id] == "" {
			out = append(out, g.units[id])
		}
	}
	sortUnits(out)
	return out
}

// UnitsOnPlanet returns all units on planetID, sorted by ID.
func (g *State) UnitsOnPlanet(planetID string) []*unit.Unit {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*unit.Unit
	for id, planet := range g.unitPlanet {
		if planet == planetID {
			out = append(out, g.units[id])
		}
	}
	sortUnits(out)
	return out
}

// IsEmptyOrFriendly reports whether the space area of systemID contains no
// units owned by a player outside owners.
//
// Postcondition: Returns true for an empty system.
func (g *State) IsEmptyOrFriendly(systemID string, owners []string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	friendly := make(map[string]bool, len(owners))
	for _, o := range owners {
		friendly[o] = true
	}
	for id, sys := range g.unitSystem {
		if sys != systemID || g.unitPlanet[id] != "" {
			continue
		}
		if !friendly[g.units[id].Owner] {
			return false
		}
	}
	return true
}

// RemoveUnit takes a unit off the board and returns it to its owner's
// reinforcement pool.
//
// Precondition: unitID must be placed.
// Postcondition: The unit no longer appears in any system or planet query.
func (g *State) RemoveUnit(unitID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.units[unitID]
	if !ok {
		return fmt.Errorf("removing unit %q: not on the board", unitID)
	}
	delete(g.units, unitID)
	delete(g.unitSystem, unitID)
	delete(g.unitPlanet, unitID)
	delete(g.arrivedFrom, unitID)
	g.reinforcements[u.Owner] = append(g.reinforcements[u.Owner], unitID)
	return nil
}

// RelocateUnit moves a unit to the space area of toSystemID and records the
// system it came from as its most recent arrival origin.
//
// Precondition: unitID must be placed; toSystemID must be registered.
func (g *State) RelocateUnit(unitID, toSystemID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.units[unitID]; !ok {
		return fmt.Errorf("relocating unit %q: not on the board", unitID)
	}
	if _, ok := g.systems[toSystemID]; !ok {
		return fmt.Errorf("relocating unit %q: unknown system %q", unitID, toSystemID)
	}
	from := g.unitSystem[unitID]
	g.unitSystem[unitID] = toSystemID
	g.unitPlanet[unitID] = ""
	g.arrivedFrom[unitID] = from
	return nil
}

// MarkDamaged sets the unit's damaged flag.
//
// Precondition: unitID must be placed.
func (g *State) MarkDamaged(unitID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.units[unitID]
	if !ok {
		return fmt.Errorf("marking unit %q damaged: not on the board", unitID)
	}
	u.Damaged = true
	return nil
}

// RepairUnit clears the unit's damaged flag, restoring sustain eligibility.
// Repair timing is owned by the surrounding game loop, not the combat engine.
//
// Precondition: unitID must be placed.
func (g *State) RepairUnit(unitID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.units[unitID]
	if !ok {
		return fmt.Errorf("repairing unit %q: not on the board", unitID)
	}
	u.Damaged = false
	return nil
}

// PlaceCommandToken marks systemID with a command token for owner, invoked
// after a successful retreat.
func (g *State) PlaceCommandToken(systemID, owner string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tokens[systemID] == nil {
		g.tokens[systemID] = make(map[string]bool)
	}
	g.tokens[systemID][owner] = true
}

// HasCommandToken reports whether owner has a command token in systemID.
func (g *State) HasCommandToken(systemID, owner string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tokens[systemID][owner]
}

// Reinforcements returns a copy of the unit IDs returned to owner's pool.
func (g *State) Reinforcements(owner string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.reinforcements[owner]))
	copy(out, g.reinforcements[owner])
	return out
}

// sortUnits orders units by ID in place for deterministic iteration.
func sortUnits(units []*unit.Unit) {
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
}

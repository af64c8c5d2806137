package combat

import "github.com/cory-johannsen/helios/internal/game/unit"

// GameState is the narrow view of the surrounding game the engine consumes.
// The engine never owns game state: it queries unit presence and issues
// mutation commands that the collaborator executes. galaxy.State satisfies it.
type GameState interface {
	// SpaceUnits returns the units in the space area of systemID, in a
	// deterministic order.
	SpaceUnits(systemID string) []*unit.Unit
	// UnitsOnPlanet returns the units on planetID, in a deterministic order.
	UnitsOnPlanet(planetID string) []*unit.Unit
	// IsAdjacent reports whether two systems neighbor each other.
	IsAdjacent(a, b string) bool
	// AdjacentSystems returns the IDs of systems adjacent to systemID.
	AdjacentSystems(systemID string) []string
	// IsEmptyOrFriendly reports whether systemID's space area holds no units
	// owned by a player outside owners.
	IsEmptyOrFriendly(systemID string, owners []string) bool
	// LastArrivedFrom returns the system a unit most recently arrived from.
	LastArrivedFrom(unitID string) string
	// RemoveUnit takes a unit off the board and returns it to reinforcements.
	RemoveUnit(unitID string) error
	// RelocateUnit moves a unit to the space area of another system.
	RelocateUnit(unitID, toSystemID string) error
	// MarkDamaged sets a unit's damaged flag after a sustain.
	MarkDamaged(unitID string) error
	// PlaceCommandToken marks a system after a successful retreat.
	PlaceCommandToken(systemID, owner string)
}

// DecisionProvider supplies player decisions at the engine's suspension
// points. Implementations may be a human UI bridge or a bot policy; the
// engine blocks on each call and re-validates every returned value,
// requesting a new decision when a value is illegal.
type DecisionProvider interface {
	// ChooseRetreatDestination picks a destination from eligible, or returns
	// an empty string to decline announcing a retreat.
	ChooseRetreatDestination(p Participant, eligible []string) string
	// ChooseSustainOrNot reports whether the side spends u's sustain-damage
	// capability to cancel an incoming hit.
	ChooseSustainOrNot(p Participant, u *unit.Unit) bool
	// ChooseUnitToDestroy picks which of the side's own units absorbs a hit.
	ChooseUnitToDestroy(p Participant, candidates []*unit.Unit) string
	// ChooseOverflowRemoval picks which excess unit the winner removes during
	// post-combat capacity cleanup.
	ChooseOverflowRemoval(p Participant, candidates []*unit.Unit) string
}

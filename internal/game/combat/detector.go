package combat

import (
	"sort"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// Detection identifies a combat that must occur: the variant, the location,
// and the attacker/defender pair. It is produced by a pure query and carries
// no unit references; the engine re-queries game state at every step.
type Detection struct {
	// Variant is the combat variant to resolve.
	Variant Variant
	// LocationID is the system ID (space) or planet ID (ground).
	LocationID string
	// SystemID is the system containing the combat location.
	SystemID string
	// Attacker is the side that initiated the triggering action.
	Attacker Participant
	// Defender is every other owning side, merged for space combat.
	Defender Participant
}

// DetectSpaceCombat decides whether a space combat must start in systemID
// after a tactical action by attackerPlayer. Only spaceworthy units count:
// a side whose space-area presence is carried ground forces alone has no
// fleet to fight with.
//
// Postcondition: Returns (detection, true) iff the system's space area holds
// spaceworthy units of the attacker and of at least one other owner; every
// non-attacking owner is merged into the defender side. Pure query, no side
// effects.
func DetectSpaceCombat(gs GameState, systemID, attackerPlayer string) (Detection, bool) {
	return detect(spaceworthy(gs.SpaceUnits(systemID)), SpaceCombat, systemID, systemID, attackerPlayer)
}

// DetectGroundCombat decides whether a ground combat must start on planetID
// after an invasion by attackerPlayer. Detection is scoped to the single
// planet, never the whole system.
//
// Postcondition: Returns (detection, true) iff the planet holds ground units
// of the attacker and of another owner. Pure query, no side effects.
func DetectGroundCombat(gs GameState, planetID, systemID, attackerPlayer string) (Detection, bool) {
	return detect(gs.UnitsOnPlanet(planetID), GroundCombat, planetID, systemID, attackerPlayer)
}

// detect derives the attacker/defender pair from the units present. Fewer
// than two owning sides means no combat: the caller treats that as a no-op.
func detect(units []*unit.Unit, variant Variant, locationID, systemID, attackerPlayer string) (Detection, bool) {
	owners := make(map[string]bool)
	for _, u := range units {
		owners[u.Owner] = true
	}
	if !owners[attackerPlayer] {
		return Detection{}, false
	}
	var others []string
	for owner := range owners {
		if owner != attackerPlayer {
			others = append(others, owner)
		}
	}
	if len(others) == 0 {
		return Detection{}, false
	}
	sort.Strings(others)
	return Detection{
		Variant:    variant,
		LocationID: locationID,
		SystemID:   systemID,
		Attacker:   NewParticipant(RoleAttacker, attackerPlayer),
		Defender:   NewParticipant(RoleDefender, others...),
	}, true
}

// spaceworthy filters units down to those that fight in space combat.
func spaceworthy(units []*unit.Unit) []*unit.Unit {
	var out []*unit.Unit
	for _, u := range units {
		if u.Class.Spaceworthy() {
			out = append(out, u)
		}
	}
	return out
}

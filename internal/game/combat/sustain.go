package combat

import (
	"fmt"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// OfferSustain reports whether u may cancel an incoming hit with sustain
// damage: it must have the capability and must not already be damaged.
//
// Postcondition: Returns true iff u.SustainCapacity > 0 and !u.Damaged.
func OfferSustain(u *unit.Unit) bool {
	return u.CanSustain()
}

// ApplySustain spends u's sustain-damage capability: the unit is marked
// damaged through the game-state collaborator and the unit's sustain capacity
// of hits is cancelled. A damaged unit keeps every other capability but may
// not sustain again until externally repaired.
//
// Precondition: OfferSustain(u) must be true.
// Postcondition: Returns the number of hits cancelled (>= 1) or an error; on
// success u.Damaged is set.
func ApplySustain(gs GameState, u *unit.Unit) (int, error) {
	if !u.CanSustain() {
		return 0, fmt.Errorf("unit %q cannot sustain damage", u.ID)
	}
	if err := gs.MarkDamaged(u.ID); err != nil {
		return 0, fmt.Errorf("sustaining with unit %q: %w", u.ID, err)
	}
	return u.SustainCapacity, nil
}

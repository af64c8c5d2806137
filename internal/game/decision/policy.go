// Package decision provides automated decision providers for combat: the
// policies a bot or simulation uses in place of a human player for retreat,
// sustain, and casualty choices. All policies are deterministic so that
// simulated combats are reproducible under a seeded dice source.
package decision

import (
	"sort"

	"github.com/cory-johannsen/helios/internal/game/combat"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// Policy is a deterministic combat.DecisionProvider with a simple doctrine:
// always sustain when offered, lose expendable units first, and retreat only
// when the side's unit count has fallen to RetreatBelow or fewer.
//
// Invariant: given the same inputs, every method returns the same choice.
type Policy struct {
	// RetreatBelow triggers a retreat announcement when the side has this
	// many units or fewer at the combat location. Zero means never retreat.
	RetreatBelow int

	// UnitsAt reports the side's current units; required when RetreatBelow
	// is positive so the policy can count survivors.
	UnitsAt func(p combat.Participant) []*unit.Unit
}

// NewPolicy returns a Policy that never retreats.
func NewPolicy() *Policy {
	return &Policy{}
}

// ChooseRetreatDestination announces a retreat to the first eligible
// destination once the side is reduced to RetreatBelow units or fewer.
func (b *Policy) ChooseRetreatDestination(p combat.Participant, eligible []string) string {
	if b.RetreatBelow <= 0 || b.UnitsAt == nil {
		return ""
	}
	if len(b.UnitsAt(p)) > b.RetreatBelow {
		return ""
	}
	if len(eligible) == 0 {
		return ""
	}
	return eligible[0]
}

// ChooseSustainOrNot always accepts: a sustain cancels a hit without losing
// the unit, which is never worse than the alternative.
func (b *Policy) ChooseSustainOrNot(combat.Participant, *unit.Unit) bool {
	return true
}

// ChooseUnitToDestroy picks the most expendable candidate.
func (b *Policy) ChooseUnitToDestroy(_ combat.Participant, candidates []*unit.Unit) string {
	return mostExpendable(candidates).ID
}

// ChooseOverflowRemoval picks the most expendable candidate.
func (b *Policy) ChooseOverflowRemoval(_ combat.Participant, candidates []*unit.Unit) string {
	return mostExpendable(candidates).ID
}

// mostExpendable orders candidates by doctrine and returns the first:
// fighters before ground forces before ships, already-damaged units before
// intact ones within a class, then fewer combat dice, then unit ID as the
// deterministic tiebreak.
//
// Precondition: candidates must be non-empty.
func mostExpendable(candidates []*unit.Unit) *unit.Unit {
	sorted := make([]*unit.Unit, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := classRank(a.Class), classRank(b.Class); ra != rb {
			return ra < rb
		}
		if a.Damaged != b.Damaged {
			return a.Damaged
		}
		if a.CombatDice != b.CombatDice {
			return a.CombatDice < b.CombatDice
		}
		return a.ID < b.ID
	})
	return sorted[0]
}

func classRank(c unit.Class) int {
	switch c {
	case unit.ClassFighter:
		return 0
	case unit.ClassGroundForce:
		return 1
	default:
		return 2
	}
}

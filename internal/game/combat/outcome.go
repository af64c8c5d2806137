package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// Outcome identifies the winner and loser once a combat is terminal.
type Outcome struct {
	// Winner is the winning participant ID; empty on a draw.
	Winner string
	// Loser is the losing participant ID; empty on a draw.
	Loser string
	// IsDraw is true when neither side retained units.
	IsDraw bool
}

// ResolveOutcome determines the winner once no further rounds are needed.
//
// Precondition: at most one side has remaining units (terminal state).
// Postcondition: Exactly one side with units wins; neither side with units is
// a draw.
func ResolveOutcome(det Detection, attackerUnits, defenderUnits []*unit.Unit) Outcome {
	attAlive := len(attackerUnits) > 0
	defAlive := len(defenderUnits) > 0
	switch {
	case attAlive && !defAlive:
		return Outcome{Winner: det.Attacker.ID, Loser: det.Defender.ID}
	case defAlive && !attAlive:
		return Outcome{Winner: det.Defender.ID, Loser: det.Attacker.ID}
	default:
		return Outcome{IsDraw: true}
	}
}

// EnforceCapacityOverflow removes the winner's excess transportable units
// after a space combat: fighters and ground forces in the space area beyond
// the remaining ships' combined capacity must go, chosen by the winning
// participant. Illegal choices are rejected and re-requested.
//
// Postcondition: Returns the removed unit IDs; afterwards the winner's
// transportable units in space do not exceed ship capacity.
func EnforceCapacityOverflow(gs GameState, det Detection, winner Participant, decider DecisionProvider, logger *zap.Logger) ([]string, error) {
	if det.Variant != SpaceCombat {
		return nil, nil
	}

	var removed []string
	for {
		capacity := 0
		var carried []*unit.Unit
		for _, u := range sideSpaceUnits(gs, det.SystemID, winner) {
			if u.Class == unit.ClassShip {
				capacity += u.Capacity
				continue
			}
			if u.Class.Transportable() {
				carried = append(carried, u)
			}
		}
		if len(carried) <= capacity {
			return removed, nil
		}

		victim := chooseValidUnit(decider.ChooseOverflowRemoval, winner, carried, logger, "overflow removal")
		if err := gs.RemoveUnit(victim.ID); err != nil {
			return removed, fmt.Errorf("removing overflow unit %q: %w", victim.ID, err)
		}
		removed = append(removed, victim.ID)
	}
}

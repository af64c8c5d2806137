package combat

import (
	"fmt"

	"github.com/cory-johannsen/helios/internal/game/dice"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// BarrageReport is the audit trail of one anti-fighter barrage step.
type BarrageReport struct {
	// AttackerOutcomes and DefenderOutcomes hold each side's barrage rolls.
	AttackerOutcomes []RollOutcome
	DefenderOutcomes []RollOutcome
	// AttackerHits and DefenderHits are the hits each side produced.
	AttackerHits int
	DefenderHits int
	// AttackerLosses and DefenderLosses list the fighter IDs each side lost.
	AttackerLosses []string
	DefenderLosses []string
}

// ResolveBarrage performs the round-one anti-fighter barrage for a space
// combat. Both sides roll their barrage dice independently and simultaneously
// (hit counts are fixed before any destruction), then each side destroys one
// of its own fighters per hit the opponent produced; hits beyond the
// available fighters are discarded with no further effect. Barrage rolls are
// a distinct channel from ordinary combat rolls, so combat-roll modifiers
// never touch them.
//
// Fighter losses are not a player decision point: fighters are
// interchangeable, so casualties are taken in deterministic unit-ID order.
//
// Precondition: det must describe a space combat; sides >= 2.
func ResolveBarrage(gs GameState, det Detection, sides int, roller dice.PoolRoller) (*BarrageReport, error) {
	if det.Variant != SpaceCombat {
		return nil, fmt.Errorf("anti-fighter barrage applies to space combat only, got %s", det.Variant)
	}

	attUnits := sideSpaceUnits(gs, det.SystemID, det.Attacker)
	defUnits := sideSpaceUnits(gs, det.SystemID, det.Defender)

	report := &BarrageReport{}
	// Attacker rolls first; the counts are simultaneous regardless.
	report.AttackerHits, report.AttackerOutcomes = RollGroups(GroupBarrageDice(attUnits), sides, roller)
	report.DefenderHits, report.DefenderOutcomes = RollGroups(GroupBarrageDice(defUnits), sides, roller)

	var err error
	report.DefenderLosses, err = destroyFighters(gs, defUnits, report.AttackerHits)
	if err != nil {
		return report, err
	}
	report.AttackerLosses, err = destroyFighters(gs, attUnits, report.DefenderHits)
	if err != nil {
		return report, err
	}
	return report, nil
}

// destroyFighters removes up to hits fighters from the given side's units in
// deterministic order and returns their IDs.
func destroyFighters(gs GameState, units []*unit.Unit, hits int) ([]string, error) {
	var lost []string
	for _, u := range units {
		if hits <= 0 {
			break
		}
		if u.Class != unit.ClassFighter {
			continue
		}
		if err := gs.RemoveUnit(u.ID); err != nil {
			return lost, fmt.Errorf("barrage destroying fighter %q: %w", u.ID, err)
		}
		lost = append(lost, u.ID)
		hits--
	}
	return lost, nil
}

// sideSpaceUnits returns p's units in the system's space area.
func sideSpaceUnits(gs GameState, systemID string, p Participant) []*unit.Unit {
	var out []*unit.Unit
	for _, u := range gs.SpaceUnits(systemID) {
		if p.Owns(u.Owner) {
			out = append(out, u)
		}
	}
	return out
}

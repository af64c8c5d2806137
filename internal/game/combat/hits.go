package combat

import (
	"sort"

	"github.com/cory-johannsen/helios/internal/game/dice"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// RollGroup collects the dice of all units sharing one hit threshold, so that
// same-threshold units roll together. Ordering within a group is irrelevant
// to the result.
type RollGroup struct {
	// Threshold is the minimum die value that scores a hit.
	Threshold int
	// Dice is the total dice the group rolls (burst units contribute two or more).
	Dice int
	// UnitIDs lists the contributing units.
	UnitIDs []string
}

// RollOutcome pairs one group's rolled dice with its hit count.
type RollOutcome struct {
	Group RollGroup
	Pool  dice.PoolResult
	// Hits is the number of dice at or above the group threshold.
	Hits int
}

// GroupCombatDice groups units by combat threshold for the ROLL_DICE step.
// Units without combat dice contribute nothing.
//
// Postcondition: Groups are ordered by ascending threshold for deterministic
// roll sequencing.
func GroupCombatDice(units []*unit.Unit) []RollGroup {
	return groupDice(units, func(u *unit.Unit) (int, int) {
		return u.CombatThreshold, u.CombatDice
	})
}

// GroupBarrageDice groups units by anti-fighter-barrage threshold. Barrage is
// a distinct roll channel: modifiers to ordinary combat rolls never apply to
// it unless they target it explicitly.
func GroupBarrageDice(units []*unit.Unit) []RollGroup {
	return groupDice(units, func(u *unit.Unit) (int, int) {
		if !u.HasBarrage() {
			return 0, 0
		}
		return u.BarrageThreshold, u.BarrageDice
	})
}

func groupDice(units []*unit.Unit, stats func(*unit.Unit) (threshold, count int)) []RollGroup {
	byThreshold := make(map[int]*RollGroup)
	for _, u := range units {
		threshold, count := stats(u)
		if threshold <= 0 || count <= 0 {
			continue
		}
		g, ok := byThreshold[threshold]
		if !ok {
			g = &RollGroup{Threshold: threshold}
			byThreshold[threshold] = g
		}
		g.Dice += count
		g.UnitIDs = append(g.UnitIDs, u.ID)
	}
	groups := make([]RollGroup, 0, len(byThreshold))
	for _, g := range byThreshold {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Threshold < groups[j].Threshold })
	return groups
}

// CountHits counts rolls at or above threshold.
//
// Postcondition: 0 <= return value <= len(rolls).
func CountHits(rolls []int, threshold int) int {
	hits := 0
	for _, r := range rolls {
		if r >= threshold {
			hits++
		}
	}
	return hits
}

// RollGroups rolls every group through roller and returns the total hits plus
// the per-group audit trail. Rolling through a PoolRoller keeps every combat
// pool on the logged dice path.
//
// Precondition: sides >= 2; roller must be non-nil.
// Postcondition: total equals the sum of every outcome's Hits.
func RollGroups(groups []RollGroup, sides int, roller dice.PoolRoller) (int, []RollOutcome) {
	total := 0
	outcomes := make([]RollOutcome, 0, len(groups))
	for _, g := range groups {
		pool := roller.Pool(g.Dice, sides)
		hits := pool.Hits(g.Threshold)
		total += hits
		outcomes = append(outcomes, RollOutcome{Group: g, Pool: pool, Hits: hits})
	}
	return total, outcomes
}

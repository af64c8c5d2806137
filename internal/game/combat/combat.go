// Package combat implements the Helios combat resolution engine: detection,
// the space-combat step sequence (barrage, retreat announcement, dice, hit
// assignment, retreat execution) and the ground-combat variant, with
// deterministic, replayable dice resolution.
package combat

import (
	"errors"
	"fmt"
	"strings"
)

// Variant distinguishes the two combat step sequences.
type Variant int

const (
	// SpaceCombat resolves between fleets in a system's space area.
	SpaceCombat Variant = iota
	// GroundCombat resolves between ground forces on a single planet.
	GroundCombat
)

// String returns a human-readable variant label.
func (v Variant) String() string {
	switch v {
	case SpaceCombat:
		return "space"
	case GroundCombat:
		return "ground"
	default:
		return "unknown"
	}
}

// Step identifies one stage of a combat round. Steps are strictly ordered;
// within a round the sequence only ever moves forward.
type Step int

const (
	// StepAntiFighterBarrage is the space-combat pre-combat barrage, round 1 only.
	StepAntiFighterBarrage Step = iota
	// StepAnnounceRetreats is where each side may announce a retreat, defender first.
	StepAnnounceRetreats
	// StepRollDice is where both sides roll combat dice, attacker first.
	StepRollDice
	// StepAssignHits is where each side resolves the hits its opponent produced.
	StepAssignHits
	// StepRetreat is where an announced retreat is physically executed.
	StepRetreat
)

// String returns the canonical step name.
func (s Step) String() string {
	switch s {
	case StepAntiFighterBarrage:
		return "ANTI_FIGHTER_BARRAGE"
	case StepAnnounceRetreats:
		return "ANNOUNCE_RETREATS"
	case StepRollDice:
		return "ROLL_DICE"
	case StepAssignHits:
		return "ASSIGN_HITS"
	case StepRetreat:
		return "RETREAT"
	default:
		return "UNKNOWN"
	}
}

// Role distinguishes the side that initiated the triggering action from the
// side defending the location.
type Role int

const (
	RoleAttacker Role = iota
	RoleDefender
)

// String returns a human-readable role label.
func (r Role) String() string {
	if r == RoleAttacker {
		return "attacker"
	}
	return "defender"
}

// Participant is one side in a combat. The defender side of a space combat
// merges every non-attacking owner present in the system.
type Participant struct {
	// ID is the stable side identifier, derived from the owning player IDs.
	ID string
	// Players lists the player IDs whose units fight on this side.
	Players []string
	// Role is the side's role in the triggering action.
	Role Role
}

// NewParticipant builds a side from its owning players.
//
// Precondition: players must be non-empty.
// Postcondition: ID is the sorted players joined with "+".
func NewParticipant(role Role, players ...string) Participant {
	sorted := make([]string, len(players))
	copy(sorted, players)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return Participant{ID: strings.Join(sorted, "+"), Players: sorted, Role: role}
}

// Owns reports whether owner's units fight on this side.
func (p Participant) Owns(owner string) bool {
	for _, id := range p.Players {
		if id == owner {
			return true
		}
	}
	return false
}

// Round tracks one combat round's number, current step, and the hit counts
// owed by each side. A Round is created at round start and discarded once the
// engine loops or terminates.
type Round struct {
	// Number is the round number, starting at 1.
	Number int
	step   Step
	// hitsOwed maps a participant ID to the hits that side must resolve this
	// round (the hits its opponent produced).
	hitsOwed map[string]int
}

// newRound creates a Round positioned at the variant's first step.
func newRound(number int, variant Variant) *Round {
	step := StepRollDice
	if variant == SpaceCombat {
		if number == 1 {
			step = StepAntiFighterBarrage
		} else {
			step = StepAnnounceRetreats
		}
	}
	return &Round{Number: number, step: step, hitsOwed: make(map[string]int)}
}

// Step returns the round's current step.
func (r *Round) Step() Step {
	return r.step
}

// HitsOwed returns the hits participantID must resolve this round.
func (r *Round) HitsOwed(participantID string) int {
	return r.hitsOwed[participantID]
}

// advance moves the round to the next step.
//
// Precondition: next must not precede the current step. The step sequence
// moves forward only; a backward move is a sequencing bug and panics.
func (r *Round) advance(next Step) {
	if next < r.step {
		panic(fmt.Sprintf("combat: round %d step may not move backward from %s to %s", r.Number, r.step, next))
	}
	r.step = next
}

// Result is the finalized outcome of a combat, handed to the surrounding game
// loop which owns all subsequent mutation.
type Result struct {
	// Variant is the combat variant that produced this result.
	Variant Variant
	// LocationID is the system ID (space) or planet ID (ground).
	LocationID string
	// Winner is the winning participant ID; empty on a draw.
	Winner string
	// Loser is the losing participant ID; empty on a draw.
	Loser string
	// IsDraw is true when neither side retained units.
	IsDraw bool
	// Destroyed lists the IDs of every unit destroyed during the combat.
	Destroyed []string
	// Retreated lists the IDs of every unit relocated by a retreat.
	Retreated []string
	// Rounds is the number of rounds fought.
	Rounds int
	// Events is the ordered audit trail of everything that happened.
	Events []Event
}

// Validation errors raised at the decision boundary. All are
// caller-correctable; the engine never retries a rejected value itself.
var (
	// ErrInvalidRetreatTarget rejects a destination that is not adjacent, is
	// hostile-occupied, or re-enters the origin without friendly presence.
	ErrInvalidRetreatTarget = errors.New("invalid retreat target")
	// ErrRetreatNotEligible rejects an announcement the side may not make:
	// the attacker after the defender announced, or a side with no eligible
	// destination.
	ErrRetreatNotEligible = errors.New("retreat not eligible")
	// ErrHitAssignmentOverflow rejects an attempt to assign more destructions
	// or cancellations than the hits owed. Overflow is rejected, not clamped.
	ErrHitAssignmentOverflow = errors.New("hit assignment exceeds hits owed")
)

package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// maxDecisionRetries bounds how many times an illegal provider choice is
// rejected and re-requested before the engine falls back to a deterministic
// selection to keep the combat progressing.
const maxDecisionRetries = 3

// HitAssigner processes the destruction-or-cancellation decisions one side
// owes for one round. It performs exactly the owed number of decisions, never
// more: a decision beyond the owed count is rejected with
// ErrHitAssignmentOverflow, and hits exceeding the side's remaining units are
// discarded with no effect.
type HitAssigner struct {
	gs   GameState
	p    Participant
	owed int
	done int
	// destroyed and sustained record unit IDs in decision order.
	destroyed []string
	sustained []string
}

// NewHitAssigner creates a HitAssigner for the hits participant p owes.
//
// Precondition: owed >= 0; gs must be non-nil.
func NewHitAssigner(gs GameState, p Participant, owed int) *HitAssigner {
	return &HitAssigner{gs: gs, p: p, owed: owed}
}

// Remaining returns the number of decisions still owed.
func (h *HitAssigner) Remaining() int {
	return h.owed - h.done
}

// Destroyed returns the unit IDs destroyed so far, in decision order.
func (h *HitAssigner) Destroyed() []string {
	return h.destroyed
}

// Sustained returns the unit IDs that sustained so far, in decision order.
func (h *HitAssigner) Sustained() []string {
	return h.sustained
}

// SustainWith cancels owed hits by spending u's sustain-damage capability.
// One use cancels the unit's sustain capacity of hits, capped at the
// remaining owed count.
//
// Precondition: u must belong to the assigning side and be sustain-eligible.
// Postcondition: Returns ErrHitAssignmentOverflow when nothing is owed;
// otherwise the unit is marked damaged and at least one hit is cancelled.
func (h *HitAssigner) SustainWith(u *unit.Unit) error {
	if h.Remaining() <= 0 {
		return fmt.Errorf("sustain with unit %q: %w", u.ID, ErrHitAssignmentOverflow)
	}
	if !h.p.Owns(u.Owner) {
		return fmt.Errorf("sustain with unit %q: unit is not owned by side %q", u.ID, h.p.ID)
	}
	cancelled, err := ApplySustain(h.gs, u)
	if err != nil {
		return err
	}
	if cancelled > h.Remaining() {
		cancelled = h.Remaining()
	}
	h.done += cancelled
	h.sustained = append(h.sustained, u.ID)
	return nil
}

// DestroyUnit resolves one owed hit by destroying the side's own unit,
// removing it from the combat area and handing it to the reinforcement
// collaborator.
//
// Precondition: u must belong to the assigning side.
// Postcondition: Returns ErrHitAssignmentOverflow when nothing is owed;
// otherwise exactly one hit is resolved.
func (h *HitAssigner) DestroyUnit(u *unit.Unit) error {
	if h.Remaining() <= 0 {
		return fmt.Errorf("destroy unit %q: %w", u.ID, ErrHitAssignmentOverflow)
	}
	if !h.p.Owns(u.Owner) {
		return fmt.Errorf("destroy unit %q: unit is not owned by side %q", u.ID, h.p.ID)
	}
	if err := h.gs.RemoveUnit(u.ID); err != nil {
		return fmt.Errorf("destroying unit %q: %w", u.ID, err)
	}
	h.done++
	h.destroyed = append(h.destroyed, u.ID)
	return nil
}

// Resolve drives the full decision loop against a DecisionProvider: for each
// owed hit the provider is first offered a sustain on an eligible unit, then
// chooses a unit to destroy. Illegal choices are rejected and a new decision
// requested; after maxDecisionRetries the first candidate is selected so the
// combat still runs to a terminal state. The loop ends early when the side
// has no units left; the excess hits are discarded.
//
// Precondition: decider must be non-nil; unitsAt must return the side's units
// currently at the combat location.
// Postcondition: Exactly min(owed, available decisions) hits are resolved.
func (h *HitAssigner) Resolve(decider DecisionProvider, unitsAt func() []*unit.Unit, logger *zap.Logger) error {
	for h.Remaining() > 0 {
		units := unitsAt()
		if len(units) == 0 {
			// Hits beyond the side's unit count are discarded.
			return nil
		}

		if u := h.offerSustains(decider, units); u != nil {
			if err := h.SustainWith(u); err != nil {
				return err
			}
			continue
		}

		target := chooseValidUnit(decider.ChooseUnitToDestroy, h.p, units, logger, "destroy")
		if err := h.DestroyUnit(target); err != nil {
			return err
		}
	}
	return nil
}

// offerSustains walks the sustain-eligible units and returns the first one
// the provider accepts, or nil when the offer is declined or unavailable.
func (h *HitAssigner) offerSustains(decider DecisionProvider, units []*unit.Unit) *unit.Unit {
	for _, u := range units {
		if !OfferSustain(u) {
			continue
		}
		if decider.ChooseSustainOrNot(h.p, u) {
			return u
		}
	}
	return nil
}

// chooseValidUnit asks the provider to pick from candidates, re-requesting on
// an illegal choice and falling back to the first candidate after
// maxDecisionRetries rejections.
//
// Precondition: candidates must be non-empty.
func chooseValidUnit(choose func(Participant, []*unit.Unit) string, p Participant, candidates []*unit.Unit, logger *zap.Logger, purpose string) *unit.Unit {
	for attempt := 0; attempt < maxDecisionRetries; attempt++ {
		id := choose(p, candidates)
		for _, u := range candidates {
			if u.ID == id {
				return u
			}
		}
		logger.Warn("decision provider returned an illegal unit choice, requesting a new decision",
			zap.String("participant", p.ID),
			zap.String("purpose", purpose),
			zap.String("unit_id", id),
			zap.Int("attempt", attempt+1),
		)
	}
	return candidates[0]
}

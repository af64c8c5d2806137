package combat

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/helios/internal/game/dice"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// DefaultDieSides is the combat die used when no override is configured.
const DefaultDieSides = 10

// maxCombatRounds is a hard guard against a combat that cannot terminate,
// which would indicate corrupt unit data (no side able to score a hit and no
// side able to retreat).
const maxCombatRounds = 10000

// Engine resolves combats against a game-state collaborator. A combat, once
// started, runs step by step to a terminal state within the same invocation;
// the only suspension points are synchronous DecisionProvider calls. Combats
// at different locations do not share mutable state and may resolve in
// parallel, but each location admits a single combat at a time.
// All methods are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	active map[string]bool

	gs     GameState
	roller dice.PoolRoller
	sides  int
	logger *zap.Logger
}

// NewEngine creates an Engine that reads and mutates game state through gs
// and rolls with src. Every pool is rolled through a logged roller so dice
// results land in the debug log.
//
// Precondition: gs, src, and logger must be non-nil.
// Postcondition: dieSides < 2 falls back to DefaultDieSides.
func NewEngine(gs GameState, src dice.Source, dieSides int, logger *zap.Logger) *Engine {
	if dieSides < 2 {
		dieSides = DefaultDieSides
	}
	return &Engine{
		active: make(map[string]bool),
		gs:     gs,
		roller: dice.NewLoggedRoller(src, logger),
		sides:  dieSides,
		logger: logger,
	}
}

// ResolveSpaceCombat detects and fully resolves a space combat in systemID
// triggered by attackerPlayer's tactical action.
//
// Postcondition: Returns (nil, nil) when fewer than two owning sides are
// present (no combat, a no-op); otherwise returns the finalized Result.
func (e *Engine) ResolveSpaceCombat(systemID, attackerPlayer string, attacker, defender DecisionProvider) (*Result, error) {
	det, ok := DetectSpaceCombat(e.gs, systemID, attackerPlayer)
	if !ok {
		return nil, nil
	}
	return e.Resolve(det, attacker, defender)
}

// ResolveGroundCombat detects and fully resolves a ground combat on planetID
// triggered by attackerPlayer's invasion.
//
// Postcondition: Returns (nil, nil) when fewer than two owning sides are
// present on the planet; otherwise returns the finalized Result.
func (e *Engine) ResolveGroundCombat(planetID, systemID, attackerPlayer string, attacker, defender DecisionProvider) (*Result, error) {
	det, ok := DetectGroundCombat(e.gs, planetID, systemID, attackerPlayer)
	if !ok {
		return nil, nil
	}
	return e.Resolve(det, attacker, defender)
}

// Resolve runs an already-detected combat to its terminal state and returns
// the Result. Re-invoking on an already-terminal state determines the same
// outcome without further mutation.
//
// Precondition: det must come from a Detect call or a replayed Detection.
// Postcondition: Returns an error if a combat is already active at the
// location.
func (e *Engine) Resolve(det Detection, attacker, defender DecisionProvider) (*Result, error) {
	if err := e.acquire(det.LocationID); err != nil {
		return nil, err
	}
	defer e.release(det.LocationID)

	r := &resolution{
		gs:     e.gs,
		roller: e.roller,
		sides:  e.sides,
		logger: e.logger.With(
			zap.String("variant", det.Variant.String()),
			zap.String("location", det.LocationID),
		),
		det: det,
		deciders: map[Role]DecisionProvider{
			RoleAttacker: attacker,
			RoleDefender: defender,
		},
		result: &Result{Variant: det.Variant, LocationID: det.LocationID},
	}
	return r.run()
}

// acquire marks locationID as hosting an active combat.
func (e *Engine) acquire(locationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[locationID] {
		return fmt.Errorf("combat already active at %q", locationID)
	}
	e.active[locationID] = true
	return nil
}

// release clears the active marker for locationID.
func (e *Engine) release(locationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, locationID)
}

// resolution is the per-invocation state of one combat: it owns the round
// loop and the accumulating Result, nothing outlives the invocation.
type resolution struct {
	gs       GameState
	roller   dice.PoolRoller
	sides    int
	logger   *zap.Logger
	det      Detection
	deciders map[Role]DecisionProvider
	result   *Result
}

// run drives rounds until a terminal state, then finalizes the Result.
func (r *resolution) run() (*Result, error) {
	rounds := 0
	for !r.terminal() {
		rounds++
		if rounds > maxCombatRounds {
			return nil, fmt.Errorf("combat at %q did not reach a terminal state after %d rounds", r.det.LocationID, maxCombatRounds)
		}
		round := newRound(rounds, r.det.Variant)
		r.logger.Debug("combat round started", zap.Int("round", round.Number))

		if r.det.Variant == SpaceCombat {
			if round.Number == 1 {
				if err := r.barrageStep(round); err != nil {
					return nil, err
				}
				if r.terminal() {
					// A side lost its last ship to barrage: combat ends
					// without entering ROLL_DICE.
					break
				}
			}
			round.advance(StepAnnounceRetreats)
			rm := NewRetreatManager(r.gs, r.det.SystemID)
			r.announceStep(round, rm)

			round.advance(StepRollDice)
			r.rollStep(round)

			round.advance(StepAssignHits)
			if err := r.assignStep(round); err != nil {
				return nil, err
			}

			round.advance(StepRetreat)
			if err := r.retreatStep(round, rm); err != nil {
				return nil, err
			}
		} else {
			r.rollStep(round)
			round.advance(StepAssignHits)
			if err := r.assignStep(round); err != nil {
				return nil, err
			}
		}
	}
	return r.finalize(rounds)
}

// unitsOf returns p's combatant units at the combat location. In space
// combat only spaceworthy units fight: carried ground forces in the space
// area are cargo, never combatants or casualties of assigned hits.
func (r *resolution) unitsOf(p Participant) []*unit.Unit {
	var present []*unit.Unit
	if r.det.Variant == SpaceCombat {
		present = spaceworthy(r.gs.SpaceUnits(r.det.LocationID))
	} else {
		present = r.gs.UnitsOnPlanet(r.det.LocationID)
	}
	var out []*unit.Unit
	for _, u := range present {
		if p.Owns(u.Owner) {
			out = append(out, u)
		}
	}
	return out
}

// terminal reports whether either side has zero units at the location.
func (r *resolution) terminal() bool {
	return len(r.unitsOf(r.det.Attacker)) == 0 || len(r.unitsOf(r.det.Defender)) == 0
}

// barrageStep resolves the round-one anti-fighter barrage and records it.
func (r *resolution) barrageStep(round *Round) error {
	report, err := ResolveBarrage(r.gs, r.det, r.sides, r.roller)
	if err != nil {
		return err
	}
	r.emitBarrage(round, r.det.Attacker, report.AttackerOutcomes, report.AttackerHits)
	r.emitBarrage(round, r.det.Defender, report.DefenderOutcomes, report.DefenderHits)
	for _, id := range append(append([]string{}, report.AttackerLosses...), report.DefenderLosses...) {
		r.result.Destroyed = append(r.result.Destroyed, id)
		r.emit(Event{
			Round: round.Number, Step: StepAntiFighterBarrage, Type: EventUnitDestroyed,
			UnitID:    id,
			Narrative: fmt.Sprintf("fighter %s destroyed by anti-fighter barrage", id),
		})
	}
	return nil
}

func (r *resolution) emitBarrage(round *Round, p Participant, outcomes []RollOutcome, hits int) {
	r.emit(Event{
		Round: round.Number, Step: StepAntiFighterBarrage, Type: EventBarrageRolled,
		ParticipantID: p.ID,
		Rolls:         flattenRolls(outcomes),
		Hits:          hits,
		Narrative:     fmt.Sprintf("%s barrage produced %d hit(s)", p.Role, hits),
	})
}

// announceStep offers retreat announcements, defender strictly before the
// attacker; once the defender announces, the attacker is locked out for the
// round. An illegal destination is rejected and a new decision requested.
func (r *resolution) announceStep(round *Round, rm *RetreatManager) {
	for _, p := range []Participant{r.det.Defender, r.det.Attacker} {
		if rm.Announcement() != nil {
			break
		}
		eligible := rm.EligibleDestinations(p)
		if len(eligible) == 0 {
			continue
		}
		decider := r.deciders[p.Role]
		for attempt := 0; attempt < maxDecisionRetries; attempt++ {
			dest := decider.ChooseRetreatDestination(p, eligible)
			if dest == "" {
				break
			}
			if err := rm.Announce(p, dest); err != nil {
				r.logger.Warn("retreat announcement rejected, requesting a new decision",
					zap.String("participant", p.ID),
					zap.String("destination", dest),
					zap.Error(err),
				)
				continue
			}
			r.emit(Event{
				Round: round.Number, Step: StepAnnounceRetreats, Type: EventRetreatAnnounced,
				ParticipantID: p.ID,
				Narrative:     fmt.Sprintf("%s announces retreat to %s", p.Role, dest),
			})
			break
		}
	}
}

// rollStep rolls combat dice for both sides, attacker first, and records the
// hits each side owes. Hit counts are fixed before any assignment so that
// simultaneous destruction is possible.
func (r *resolution) rollStep(round *Round) {
	attHits, attOutcomes := RollGroups(GroupCombatDice(r.unitsOf(r.det.Attacker)), r.sides, r.roller)
	defHits, defOutcomes := RollGroups(GroupCombatDice(r.unitsOf(r.det.Defender)), r.sides, r.roller)

	// Hits owed by a side are the hits its opponent produced.
	round.hitsOwed[r.det.Defender.ID] = attHits
	round.hitsOwed[r.det.Attacker.ID] = defHits

	r.emitRolls(round, r.det.Attacker, attOutcomes, attHits)
	r.emitRolls(round, r.det.Defender, defOutcomes, defHits)
}

func (r *resolution) emitRolls(round *Round, p Participant, outcomes []RollOutcome, hits int) {
	r.emit(Event{
		Round: round.Number, Step: StepRollDice, Type: EventDiceRolled,
		ParticipantID: p.ID,
		Rolls:         flattenRolls(outcomes),
		Hits:          hits,
		Narrative:     fmt.Sprintf("%s rolled %d hit(s)", p.Role, hits),
	})
}

// assignStep resolves each side's owed hits through its decision provider.
func (r *resolution) assignStep(round *Round) error {
	for _, p := range []Participant{r.det.Defender, r.det.Attacker} {
		owed := round.HitsOwed(p.ID)
		if owed == 0 {
			continue
		}
		assigner := NewHitAssigner(r.gs, p, owed)
		unitsAt := func() []*unit.Unit { return r.unitsOf(p) }
		if err := assigner.Resolve(r.deciders[p.Role], unitsAt, r.logger); err != nil {
			return fmt.Errorf("assigning hits for side %q: %w", p.ID, err)
		}
		for _, id := range assigner.Sustained() {
			r.emit(Event{
				Round: round.Number, Step: StepAssignHits, Type: EventUnitSustained,
				ParticipantID: p.ID,
				UnitID:        id,
				Narrative:     fmt.Sprintf("unit %s sustains damage to cancel a hit", id),
			})
		}
		for _, id := range assigner.Destroyed() {
			r.result.Destroyed = append(r.result.Destroyed, id)
			r.emit(Event{
				Round: round.Number, Step: StepAssignHits, Type: EventUnitDestroyed,
				ParticipantID: p.ID,
				UnitID:        id,
				Narrative:     fmt.Sprintf("unit %s destroyed by assigned hit", id),
			})
		}
	}
	return nil
}

// retreatStep executes the round's announced retreat, if any. When the
// opposing side has no units left the retreat is voided, not consumed.
func (r *resolution) retreatStep(round *Round, rm *RetreatManager) error {
	ann := rm.Announcement()
	if ann == nil {
		return nil
	}
	p, opposing := r.det.Attacker, r.det.Defender
	if ann.ParticipantID == r.det.Defender.ID {
		p, opposing = r.det.Defender, r.det.Attacker
	}
	retreated, removed, err := rm.Execute(p, r.unitsOf(opposing))
	if err != nil {
		return fmt.Errorf("executing retreat for side %q: %w", p.ID, err)
	}
	if !ann.Executed {
		r.emit(Event{
			Round: round.Number, Step: StepRetreat, Type: EventRetreatVoided,
			ParticipantID: p.ID,
			Narrative:     fmt.Sprintf("%s retreat voided: opponent has no units left", p.Role),
		})
		return nil
	}
	r.result.Retreated = append(r.result.Retreated, retreated...)
	r.result.Destroyed = append(r.result.Destroyed, removed...)
	r.emit(Event{
		Round: round.Number, Step: StepRetreat, Type: EventRetreatExecuted,
		ParticipantID: p.ID,
		Narrative: fmt.Sprintf("%s retreats to %s: %d unit(s) relocated, %d left behind",
			p.Role, ann.Destination, len(retreated), len(removed)),
	})
	return nil
}

// finalize determines the outcome, enforces capacity overflow for the
// winner, and seals the Result.
func (r *resolution) finalize(rounds int) (*Result, error) {
	outcome := ResolveOutcome(r.det, r.unitsOf(r.det.Attacker), r.unitsOf(r.det.Defender))
	if outcome.Winner != "" {
		winner := r.det.Attacker
		if outcome.Winner == r.det.Defender.ID {
			winner = r.det.Defender
		}
		removed, err := EnforceCapacityOverflow(r.gs, r.det, winner, r.deciders[winner.Role], r.logger)
		if err != nil {
			return nil, err
		}
		for _, id := range removed {
			r.result.Destroyed = append(r.result.Destroyed, id)
			r.emit(Event{
				Round: rounds, Step: StepRetreat, Type: EventOverflowRemoved,
				ParticipantID: winner.ID,
				UnitID:        id,
				Narrative:     fmt.Sprintf("unit %s removed: exceeds remaining transport capacity", id),
			})
		}
	}

	r.result.Winner = outcome.Winner
	r.result.Loser = outcome.Loser
	r.result.IsDraw = outcome.IsDraw
	r.result.Rounds = rounds

	narrative := "combat ends in a draw"
	if !outcome.IsDraw {
		narrative = fmt.Sprintf("combat won by %s", outcome.Winner)
	}
	r.emit(Event{Round: rounds, Type: EventCombatEnded, ParticipantID: outcome.Winner, Narrative: narrative})
	r.logger.Info("combat resolved",
		zap.Int("rounds", rounds),
		zap.String("winner", outcome.Winner),
		zap.Bool("draw", outcome.IsDraw),
		zap.Int("destroyed", len(r.result.Destroyed)),
		zap.Int("retreated", len(r.result.Retreated)),
	)
	return r.result, nil
}

// emit appends an event to the result's audit trail.
func (r *resolution) emit(ev Event) {
	r.result.Events = append(r.result.Events, ev)
}

// flattenRolls concatenates the die faces of all outcomes in group order.
func flattenRolls(outcomes []RollOutcome) []int {
	var rolls []int
	for _, o := range outcomes {
		rolls = append(rolls, o.Pool.Dice...)
	}
	return rolls
}

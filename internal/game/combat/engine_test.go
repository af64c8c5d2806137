package combat_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/helios/internal/game/combat"
)

func newTestEngine(gs combat.GameState, faces ...int) *combat.Engine {
	return combat.NewEngine(gs, &faceSrc{faces: faces}, 10, zap.NewNop())
}

// Attacker hits on a fixed 6 against threshold 5; defender rolls 3 against
// threshold 8 and misses. The defender's only unit dies and the attacker wins.
func TestEngine_DeterministicDice_AttackerWins(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	engine := newTestEngine(gs, 6, 3)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result == nil {
		t.Fatal("expected a combat result")
	}
	if result.Winner != "red" || result.Loser != "blue" || result.IsDraw {
		t.Errorf("result = %+v, want red victory", result)
	}
	if result.Rounds != 1 {
		t.Errorf("rounds = %d, want 1", result.Rounds)
	}
	if len(result.Destroyed) != 1 || result.Destroyed[0] != "b-1" {
		t.Errorf("destroyed = %v, want [b-1]", result.Destroyed)
	}
	if len(result.Retreated) != 0 {
		t.Errorf("retreated = %v, want none", result.Retreated)
	}
	if _, ok := gs.Unit("r-1"); !ok {
		t.Error("attacker's unit must survive")
	}
	if _, ok := gs.Unit("b-1"); ok {
		t.Error("defender's unit must be off the board")
	}
}

// A sustain cancels the first round's hit and marks the unit damaged; the
// second round's hit then destroys it because sustain is spent.
func TestEngine_SustainDamage_SpentAfterOneUse(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	dread := placeSpace(t, gs, "b-1", "blue", shipTemplate("dreadnought", 8, 1, 1, 1, 1))

	// Faces cycle: attacker hits with 6, defender misses with 3, every round.
	engine := newTestEngine(gs, 6, 3)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, sustainAll())
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "red" || result.Rounds != 2 {
		t.Fatalf("result = winner %q in %d rounds, want red in 2", result.Winner, result.Rounds)
	}

	sawSustain, sawBarrageRound2 := false, false
	for _, ev := range result.Events {
		if ev.Type == combat.EventUnitSustained {
			sawSustain = true
			if ev.Round != 1 || ev.UnitID != "b-1" {
				t.Errorf("sustain event = %+v, want b-1 in round 1", ev)
			}
		}
		if ev.Type == combat.EventUnitDestroyed && ev.Round == 1 {
			t.Errorf("round 1 must destroy nothing, got %+v", ev)
		}
		if ev.Type == combat.EventBarrageRolled && ev.Round > 1 {
			sawBarrageRound2 = true
		}
	}
	if !sawSustain {
		t.Error("expected a sustain event in round 1")
	}
	if sawBarrageRound2 {
		t.Error("anti-fighter barrage must only occur in round 1")
	}
	if !dread.Damaged {
		t.Error("sustaining unit must be marked damaged")
	}
}

// The defender announces a retreat before dice are rolled; after the RETREAT
// step its ship is at the destination and the attacker wins on the spot.
func TestEngine_Retreat_DefenderEscapes(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	// Both sides miss in round 1 so the retreat executes with units intact.
	engine := newTestEngine(gs, 2, 3)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, retreatTo("haven"))
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "red" || result.IsDraw {
		t.Errorf("result = %+v, want red victory by defender withdrawal", result)
	}
	if len(result.Retreated) != 1 || result.Retreated[0] != "b-1" {
		t.Errorf("retreated = %v, want [b-1]", result.Retreated)
	}
	if len(result.Destroyed) != 0 {
		t.Errorf("destroyed = %v, want none", result.Destroyed)
	}
	if len(gs.SpaceUnits("haven")) != 1 {
		t.Error("defender's ship must be at the retreat destination")
	}
	if !gs.HasCommandToken("haven", "blue") {
		t.Error("retreat must place a command token at the destination")
	}

	sawAnnounce, sawExecute := false, false
	for _, ev := range result.Events {
		switch ev.Type {
		case combat.EventRetreatAnnounced:
			sawAnnounce = true
		case combat.EventRetreatExecuted:
			sawExecute = true
		}
	}
	if !sawAnnounce || !sawExecute {
		t.Errorf("announce=%v execute=%v, want both retreat events", sawAnnounce, sawExecute)
	}
}

// Hit counts are fixed before assignment, so two single-ship fleets that both
// hit annihilate each other and the combat is a draw.
func TestEngine_SimultaneousDestruction_IsDraw(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	engine := newTestEngine(gs, 6, 9)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if !result.IsDraw || result.Winner != "" || result.Loser != "" {
		t.Errorf("result = %+v, want a draw", result)
	}
	if len(result.Destroyed) != 2 {
		t.Errorf("destroyed = %v, want both ships", result.Destroyed)
	}
	if len(gs.SpaceUnits("battlefield")) != 0 {
		t.Error("no units may remain after mutual destruction")
	}
}

// A defender barrage that wipes the attacker's fighter-only fleet ends the
// combat in round 1 without any combat dice being rolled.
func TestEngine_BarrageOnlyResolution(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-f1", "red", fighterTemplate())
	placeSpace(t, gs, "r-f2", "red", fighterTemplate())
	placeSpace(t, gs, "b-d1", "blue", barrageShipTemplate("destroyer", 9, 1, 9, 2, 2))
	placeSpace(t, gs, "b-d2", "blue", barrageShipTemplate("destroyer", 9, 1, 9, 2, 2))

	// The attacker has no barrage dice; the defender's four all hit, two hits
	// beyond the available fighters are discarded.
	engine := newTestEngine(gs, 9, 9, 9, 9)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "blue" || result.Rounds != 1 {
		t.Fatalf("result = winner %q in %d rounds, want blue in 1", result.Winner, result.Rounds)
	}
	if len(result.Destroyed) != 2 {
		t.Errorf("destroyed = %v, want both attacker fighters", result.Destroyed)
	}
	for _, ev := range result.Events {
		if ev.Type == combat.EventDiceRolled {
			t.Fatalf("combat dice must not be rolled after a barrage-only resolution, got %+v", ev)
		}
	}
}

// Every pool the engine rolls, barrage and combat alike, goes through the
// logged roller and lands in the debug log.
func TestEngine_LogsEveryDicePool(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-d1", "red", barrageShipTemplate("destroyer", 9, 1, 9, 2, 2))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	core, logs := observer.New(zapcore.DebugLevel)
	engine := combat.NewEngine(gs, &faceSrc{faces: []int{9, 9, 9, 1}}, 10, zap.New(core))
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "red" || result.Rounds != 1 {
		t.Fatalf("result = winner %q in %d rounds, want red in 1", result.Winner, result.Rounds)
	}

	// Attacker barrage pool, then one combat pool per side; the defender has
	// no barrage dice so no fourth pool exists.
	if got := logs.FilterMessage("dice pool").Len(); got != 3 {
		t.Errorf("logged %d dice pools, want 3", got)
	}
}

// Carried ground forces in the space area are cargo: they are not hit
// candidates and they do not keep the combat alive once the fleet is gone.
func TestEngine_CargoDoesNotProlongSpaceCombat(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))
	placeSpace(t, gs, "b-g1", "blue", infantryTemplate())

	engine := newTestEngine(gs, 6, 3)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "red" || result.Rounds != 1 {
		t.Fatalf("result = winner %q in %d rounds, want red in 1", result.Winner, result.Rounds)
	}
	if len(result.Destroyed) != 1 || result.Destroyed[0] != "b-1" {
		t.Errorf("destroyed = %v, want the frigate only: cargo is never a hit candidate", result.Destroyed)
	}
	if _, ok := gs.Unit("b-g1"); !ok {
		t.Error("carried ground force must survive the fleet's destruction")
	}
}

func TestEngine_GroundCombat_RollAndAssignOnly(t *testing.T) {
	gs := newBattleState(t)
	placeGround(t, gs, "r-g1", "red", infantryTemplate())
	placeGround(t, gs, "r-g2", "red", infantryTemplate())
	placeGround(t, gs, "b-g1", "blue", infantryTemplate())

	// Red's two dice both hit; blue's one die misses.
	engine := newTestEngine(gs, 8, 8, 1)
	result, err := engine.ResolveGroundCombat("battlefield-prime", "battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveGroundCombat: %v", err)
	}
	if result.Winner != "red" || result.Rounds != 1 {
		t.Fatalf("result = winner %q in %d rounds, want red in 1", result.Winner, result.Rounds)
	}
	for _, ev := range result.Events {
		switch ev.Type {
		case combat.EventBarrageRolled, combat.EventRetreatAnnounced, combat.EventRetreatExecuted, combat.EventRetreatVoided:
			t.Errorf("ground combat must not produce %s events", ev.Type)
		}
	}
	if len(gs.UnitsOnPlanet("battlefield-prime")) != 2 {
		t.Error("both attacker infantry must hold the planet")
	}
}

func TestEngine_NoCombatDetected_IsNoOp(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))

	engine := newTestEngine(gs, 6)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result != nil {
		t.Fatalf("result = %+v, want nil when no combat is detected", result)
	}
	if len(gs.SpaceUnits("battlefield")) != 1 {
		t.Error("a no-op detection must not mutate state")
	}
}

// Re-invoking the engine on an already-terminal state determines the same
// outcome without destroying or moving anything further.
func TestEngine_IdempotentOnTerminalState(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "r-1", "red", shipTemplate("cruiser", 5, 1, 0, 2, 0))
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	engine := newTestEngine(gs, 6, 3)
	det, ok := combat.DetectSpaceCombat(gs, "battlefield", "red")
	if !ok {
		t.Fatal("expected combat detection")
	}
	first, err := engine.Resolve(det, &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	again, err := engine.Resolve(det, &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if again.Winner != first.Winner || again.Loser != first.Loser || again.IsDraw != first.IsDraw {
		t.Errorf("second result = %+v, want the same outcome as %+v", again, first)
	}
	if len(again.Destroyed) != 0 || len(again.Retreated) != 0 {
		t.Errorf("second resolution mutated state: destroyed=%v retreated=%v", again.Destroyed, again.Retreated)
	}
	if len(gs.SpaceUnits("battlefield")) != 1 {
		t.Error("re-invocation must leave the board unchanged")
	}
}

// The winner's surviving fighters beyond remaining ship capacity are removed
// after a space combat.
func TestEngine_CapacityOverflowAfterVictory(t *testing.T) {
	gs := newBattleState(t)
	placeSpace(t, gs, "carrier-1", "red", shipTemplate("carrier", 5, 1, 0, 1, 1))
	placeSpace(t, gs, "r-f1", "red", fighterTemplate())
	placeSpace(t, gs, "r-f2", "red", fighterTemplate())
	placeSpace(t, gs, "b-1", "blue", shipTemplate("frigate", 8, 1, 0, 2, 0))

	// Round 1: carrier hits with 6, fighters miss with 1s, defender misses.
	engine := newTestEngine(gs, 6, 1, 1, 3)
	result, err := engine.ResolveSpaceCombat("battlefield", "red", &stubDecider{}, &stubDecider{})
	if err != nil {
		t.Fatalf("ResolveSpaceCombat: %v", err)
	}
	if result.Winner != "red" {
		t.Fatalf("winner = %q, want red", result.Winner)
	}

	sawOverflow := false
	for _, ev := range result.Events {
		if ev.Type == combat.EventOverflowRemoved {
			sawOverflow = true
		}
	}
	if !sawOverflow {
		t.Error("expected an overflow removal event")
	}
	// One fighter fits the carrier's capacity; the other is removed.
	if len(gs.SpaceUnits("battlefield")) != 2 {
		t.Errorf("%d units remain, want carrier plus one fighter", len(gs.SpaceUnits("battlefield")))
	}
	if len(result.Destroyed) != 2 {
		t.Errorf("destroyed = %v, want the frigate plus one overflow fighter", result.Destroyed)
	}
}

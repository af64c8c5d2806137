package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/helios/internal/game/combat"
	"github.com/cory-johannsen/helios/internal/game/dice"
	"github.com/cory-johannsen/helios/internal/game/galaxy"
	"github.com/cory-johannsen/helios/internal/game/unit"
)

// faceSrc yields scripted die faces in order, cycling when exhausted.
type faceSrc struct {
	faces []int
	i     int
}

func (s *faceSrc) Intn(n int) int {
	f := s.faces[s.i%len(s.faces)]
	s.i++
	return (f - 1) % n
}

// scriptedRoller wraps scripted faces in the standard roller so tests roll
// pools through the same path the engine does.
func scriptedRoller(faces ...int) dice.PoolRoller {
	return dice.NewLoggedRoller(&faceSrc{faces: faces}, zap.NewNop())
}

// stubDecider is a scriptable DecisionProvider. Nil fields fall back to
// declining retreats and sustains and destroying the first candidate.
type stubDecider struct {
	retreat  func(p combat.Participant, eligible []string) string
	sustain  func(p combat.Participant, u *unit.Unit) bool
	destroy  func(p combat.Participant, candidates []*unit.Unit) string
	overflow func(p combat.Participant, candidates []*unit.Unit) string
}

func (d *stubDecider) ChooseRetreatDestination(p combat.Participant, eligible []string) string {
	if d.retreat == nil {
		return ""
	}
	return d.retreat(p, eligible)
}

func (d *stubDecider) ChooseSustainOrNot(p combat.Participant, u *unit.Unit) bool {
	if d.sustain == nil {
		return false
	}
	return d.sustain(p, u)
}

func (d *stubDecider) ChooseUnitToDestroy(p combat.Participant, candidates []*unit.Unit) string {
	if d.destroy == nil {
		return candidates[0].ID
	}
	return d.destroy(p, candidates)
}

func (d *stubDecider) ChooseOverflowRemoval(p combat.Participant, candidates []*unit.Unit) string {
	if d.overflow == nil {
		return candidates[0].ID
	}
	return d.overflow(p, candidates)
}

// sustainAll accepts every sustain offer and otherwise takes defaults.
func sustainAll() *stubDecider {
	return &stubDecider{sustain: func(combat.Participant, *unit.Unit) bool { return true }}
}

// retreatTo announces a retreat to dest whenever it is eligible.
func retreatTo(dest string) *stubDecider {
	return &stubDecider{retreat: func(_ combat.Participant, eligible []string) string {
		for _, e := range eligible {
			if e == dest {
				return dest
			}
		}
		return ""
	}}
}

// newBattleState builds the standard test galaxy: a battlefield system with
// one planet, adjacent to an empty haven and the origin the attacker jumped
// in from.
func newBattleState(t *testing.T) *galaxy.State {
	t.Helper()
	gs := galaxy.NewState()
	require.NoError(t, gs.AddSystem(&galaxy.System{ID: "battlefield", Name: "Battlefield", Adjacent: []string{"haven", "origin"}}))
	require.NoError(t, gs.AddSystem(&galaxy.System{ID: "haven", Name: "Haven"}))
	require.NoError(t, gs.AddSystem(&galaxy.System{ID: "origin", Name: "Origin"}))
	require.NoError(t, gs.AddPlanet(&galaxy.Planet{ID: "battlefield-prime", SystemID: "battlefield", Name: "Battlefield Prime"}))
	return gs
}

func shipTemplate(id string, threshold, dice, sustain, move, capacity int) *unit.Template {
	return &unit.Template{
		ID: id, Name: id, Class: unit.ClassShip,
		CombatThreshold: threshold, CombatDice: dice,
		SustainCapacity: sustain, Move: move, Capacity: capacity,
	}
}

func barrageShipTemplate(id string, threshold, dice, barrageThreshold, barrageDice, move int) *unit.Template {
	return &unit.Template{
		ID: id, Name: id, Class: unit.ClassShip,
		CombatThreshold: threshold, CombatDice: dice,
		BarrageThreshold: barrageThreshold, BarrageDice: barrageDice,
		Move: move,
	}
}

func fighterTemplate() *unit.Template {
	return &unit.Template{
		ID: "fighter", Name: "Fighter", Class: unit.ClassFighter,
		CombatThreshold: 9, CombatDice: 1,
	}
}

func infantryTemplate() *unit.Template {
	return &unit.Template{
		ID: "infantry", Name: "Infantry", Class: unit.ClassGroundForce,
		CombatThreshold: 8, CombatDice: 1,
	}
}

// placeSpace places a unit in the battlefield's space area.
func placeSpace(t *testing.T, gs *galaxy.State, id, owner string, tmpl *unit.Template) *unit.Unit {
	t.Helper()
	u := unit.New(id, tmpl, owner)
	require.NoError(t, gs.PlaceUnit(u, "battlefield", ""))
	return u
}

// placeGround places a unit on the battlefield's planet.
func placeGround(t *testing.T, gs *galaxy.State, id, owner string, tmpl *unit.Template) *unit.Unit {
	t.Helper()
	u := unit.New(id, tmpl, owner)
	require.NoError(t, gs.PlaceUnit(u, "battlefield", "battlefield-prime"))
	return u
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

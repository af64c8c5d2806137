package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/helios/internal/game/dice"
)

// seqSrc returns scripted values in order, then repeats the last one.
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(_ int) int {
	if s.i < len(s.vals)-1 {
		v := s.vals[s.i]
		s.i++
		return v
	}
	return s.vals[len(s.vals)-1]
}

// TestPoolResult_Hits verifies hits count only dice at or above the threshold.
func TestPoolResult_Hits(t *testing.T) {
	r := dice.PoolResult{Sides: 10, Dice: []int{4, 9, 2, 10, 5}}
	assert.Equal(t, 3, r.Hits(5), "dice 9, 10, 5 are >= 5")
	assert.Equal(t, 5, r.Hits(1), "every die hits at threshold 1")
	assert.Equal(t, 0, r.Hits(11), "no die can reach an impossible threshold")
}

// TestPoolResult_String verifies the audit string contains count, sides, and dice.
func TestPoolResult_String(t *testing.T) {
	r := dice.PoolResult{Sides: 10, Dice: []int{4, 9, 2}}
	s := r.String()
	require.Contains(t, s, "3d10", "String() must contain the pool shape")
	require.Contains(t, s, "[4 9 2]", "String() must contain the dice results")
}

// TestRollPool verifies every die lands in [1, sides] and the count is exact.
func TestRollPool(t *testing.T) {
	src := &seqSrc{vals: []int{0, 4, 9}}
	r := dice.RollPool(3, 10, src)
	require.Len(t, r.Dice, 3)
	assert.Equal(t, []int{1, 5, 10}, r.Dice, "Intn values are shifted into [1, sides]")
}

// TestNewSeededSource_Deterministic verifies equal seeds replay equal sequences.
func TestNewSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 32; i++ {
		require.Equal(t, a.Intn(10), b.Intn(10), "call %d diverged for equal seeds", i)
	}
}

// TestPoolResult_Hits_Property: hits are never negative and never exceed the
// number of dice rolled, for any dice and threshold.
func TestPoolResult_Hits_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOf(rapid.IntRange(1, 10)).Draw(rt, "dice")
		threshold := rapid.IntRange(0, 12).Draw(rt, "threshold")

		r := dice.PoolResult{Sides: 10, Dice: faces}
		hits := r.Hits(threshold)

		assert.GreaterOrEqual(rt, hits, 0, "hits must never be negative")
		assert.LessOrEqual(rt, hits, len(faces), "hits must never exceed dice rolled")
	})
}

// TestRollPool_Property: RollPool always produces exactly count dice in range.
func TestRollPool_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 24).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		seed := rapid.Int64().Draw(rt, "seed")

		r := dice.RollPool(count, sides, dice.NewSeededSource(seed))

		require.Len(rt, r.Dice, count)
		for i, d := range r.Dice {
			assert.True(rt, d >= 1 && d <= sides, "die %d out of range: %d", i, d)
		}
	})
}

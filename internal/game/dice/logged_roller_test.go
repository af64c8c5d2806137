package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/helios/internal/game/dice"
)

// TestRoller_Pool_LogsEveryPool verifies each pool rolled through the Roller
// lands in the debug log with its shape and results.
func TestRoller_Pool_LogsEveryPool(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	roller := dice.NewLoggedRoller(&seqSrc{vals: []int{0, 4, 9}}, zap.New(core))

	r := roller.Pool(3, 10)
	require.Len(t, r.Dice, 3)
	roller.Pool(1, 10)

	entries := logs.FilterMessage("dice pool").All()
	require.Len(t, entries, 2, "every pool roll must produce a log entry")
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["count"])
	assert.Equal(t, int64(10), fields["sides"])
	assert.Contains(t, fields, "dice", "logged pools must carry the die results")
}

// TestRoller_Intn_PassesThrough verifies a Roller is usable wherever a Source
// is expected.
func TestRoller_Intn_PassesThrough(t *testing.T) {
	roller := dice.NewLoggedRoller(&seqSrc{vals: []int{7}}, zap.NewNop())
	assert.Equal(t, 7, roller.Intn(10))
}

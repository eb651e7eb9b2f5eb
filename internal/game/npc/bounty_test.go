package npc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	mockdice "github.com/cory-johannsen/battlecore/internal/game/dice/mock"
	"github.com/cory-johannsen/battlecore/internal/game/npc"
)

func TestGoldDrop_Roll(t *testing.T) {
	engine := dice.NewEngine(mockdice.NewScriptedSource(3), nil, nil)
	g := &npc.GoldDrop{Min: 10, Max: 15}
	assert.Equal(t, 12, g.Roll(engine))

	var none *npc.GoldDrop
	assert.Equal(t, 0, none.Roll(engine))
	assert.Equal(t, 7, (&npc.GoldDrop{Min: 7, Max: 7}).Roll(engine))
}

func TestGoldDrop_Roll_WiderThanOneDie(t *testing.T) {
	engine := dice.NewEngine(dice.NewSeededSource(11), nil, nil)
	g := &npc.GoldDrop{Min: 0, Max: 5000}
	require.NoError(t, g.Validate())

	seen := make(map[int]bool)
	for range 200 {
		got := g.Roll(engine)
		require.GreaterOrEqual(t, got, 0)
		require.LessOrEqual(t, got, 5000)
		seen[got] = true
	}
	assert.Greater(t, len(seen), 100, "a wide range must not collapse onto its minimum")

	top := dice.NewEngine(mockdice.Always(6000), nil, nil)
	assert.Equal(t, 5000, g.Roll(top))
}

func TestProperty_GoldDrop_RollInRange(t *testing.T) {
	engine := dice.NewEngine(dice.NewSeededSource(7), nil, nil)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 100).Draw(rt, "min")
		spread := rapid.OneOf(rapid.IntRange(0, 100), rapid.IntRange(dice.MaxSides, 100*dice.MaxSides)).Draw(rt, "spread")
		hi := lo + spread
		g := &npc.GoldDrop{Min: lo, Max: hi}
		if err := g.Validate(); err != nil {
			rt.Fatal(err)
		}
		got := g.Roll(engine)
		if hi > 0 && (got < lo || got > hi) {
			rt.Fatalf("roll %d outside [%d, %d]", got, lo, hi)
		}
	})
}

package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/formula"
)

// fixedSource always returns the same Intn value, clamped to n-1.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int { return min(f.v, n-1) }

// seqSource returns the queued values in order, then zeros.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	if s.i >= len(s.vals) {
		return 0
	}
	v := s.vals[s.i]
	s.i++
	return min(v, n-1)
}

func newEngine(src dice.Source) *dice.Engine {
	logger := zap.NewNop()
	return dice.NewEngine(src, formula.NewEvaluator(logger), logger)
}

// TestResult_Total verifies the postcondition: Total == sum(Dice) + Modifier.
func TestResult_Total(t *testing.T) {
	eng := newEngine(&seqSource{vals: []int{3, 4}})
	r := eng.Roll("2d6+3", nil)
	require.NoError(t, r.Err)
	assert.Equal(t, []int{4, 5}, r.Dice)
	assert.Equal(t, 3, r.Modifier)
	assert.Equal(t, 12, r.Total)
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
	assert.Equal(t, r.String(), r.Details)
}

func TestRoll_NestedCountAndModifier(t *testing.T) {
	eng := newEngine(fixedSource{v: 0})
	vars := formula.Map{"strengthMod": 2}
	r := eng.Roll("(strengthMod+2)d6+strengthMod", vars)
	require.NoError(t, r.Err)
	assert.Len(t, r.Dice, 4)
	assert.Equal(t, 2, r.Modifier)
	assert.Equal(t, 6, r.Total)
}

func TestRoll_CountFloorsAndMinimumOne(t *testing.T) {
	eng := newEngine(fixedSource{v: 0})
	assert.Len(t, eng.Roll("(0-5)d4", nil).Dice, 1, "count below one rolls a single die")
	assert.Len(t, eng.Roll("(5/2)d4", nil).Dice, 2, "count is floored")
	assert.Len(t, eng.Roll("d20", nil).Dice, 1, "omitted count means one die")
}

func TestRoll_NoDiceDelegatesToEvaluator(t *testing.T) {
	eng := newEngine(fixedSource{v: 0})
	r := eng.Roll("floor((strength-10)/2)+2", formula.Map{"strength": 14})
	require.NoError(t, r.Err)
	assert.Empty(t, r.Dice)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 4, r.CriticalTotal(), "without dice a critical changes nothing")
}

func TestRoll_AdditionalDiceTerms(t *testing.T) {
	eng := newEngine(&seqSource{vals: []int{5, 2}})
	r := eng.Roll("1d6+1d4+2", nil)
	require.NoError(t, r.Err)
	assert.Equal(t, []int{6, 3}, r.Dice)
	assert.Equal(t, 2, r.Modifier)
	assert.Equal(t, 11, r.Total)
}

func TestRoll_GroupedDiceTerm(t *testing.T) {
	eng := newEngine(fixedSource{v: 3})
	for f, want := range map[string]int{
		"(1d6)+2":   6,
		"(1d6+2)":   6,
		"((2)d6)-1": 7,
		"((1d6))":   4,
		"1d6+(1d4)": 8,
	} {
		r := eng.Roll(f, nil)
		require.NoError(t, r.Err, "formula %q", f)
		assert.Equal(t, want, r.Total, "formula %q", f)
		assert.Equal(t, f, r.Formula)
	}

	r := eng.Roll("(1d6)+2", nil)
	assert.Equal(t, 10, r.CriticalTotal(), "grouping does not change critical scope")

	for _, f := range []string{"(1d6+2)*2", "3+(1d6)", "(1d6"} {
		r := eng.Roll(f, nil)
		assert.Error(t, r.Err, "formula %q", f)
		assert.Zero(t, r.Total, "formula %q", f)
	}
}

func TestRoll_IdentifiersContainingDAreNotDice(t *testing.T) {
	eng := newEngine(fixedSource{v: 0})
	assert.False(t, dice.HasDice("damage+dexterityMod"))
	assert.True(t, dice.HasDice("1D8"))
	r := eng.Roll("dexterity", formula.Map{"dexterity": 13})
	assert.Equal(t, 13, r.Total)
}

func TestRoll_ErrorsYieldZeroResult(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	eng := dice.NewEngine(fixedSource{v: 3}, formula.NewEvaluator(logger), logger)
	for _, f := range []string{"1d0", "1d6+", "window.alert(1)", "2d6-1d4", "1000d6", "1d100000", "1d6+bogus(1)"} {
		var r dice.Result
		require.NotPanics(t, func() { r = eng.Roll(f, nil) }, "formula %q", f)
		assert.Error(t, r.Err, "formula %q", f)
		assert.Zero(t, r.Total, "formula %q", f)
		assert.NotEmpty(t, r.Details, "formula %q", f)
		assert.Zero(t, r.CriticalTotal())
	}
	assert.Equal(t, 7, logs.FilterMessage("dice roll failed").Len())
}

func TestRoll_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	eng := dice.NewEngine(fixedSource{v: 1}, formula.NewEvaluator(logger), logger)
	eng.Roll("1d6+1", nil)
	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["total"])
}

// TestResult_CriticalTotal verifies doubling applies to dice only, never to the modifier.
func TestResult_CriticalTotal(t *testing.T) {
	eng := newEngine(fixedSource{v: 3})
	r := eng.Roll("1d6+3", nil)
	require.NoError(t, r.Err)
	d := r.Dice[0]
	assert.Equal(t, 2*d+3, r.CriticalTotal())
	assert.NotEqual(t, 2*(d+3), r.CriticalTotal())
}

func TestRollWithAdvantage(t *testing.T) {
	eng := newEngine(&seqSource{vals: []int{4, 16}})
	p := eng.RollWithAdvantage("1d20", nil)
	assert.Equal(t, 5, p.First.Total)
	assert.Equal(t, 17, p.Second.Total)
	assert.Equal(t, 17, p.Chosen.Total)
}

func TestRollWithDisadvantage(t *testing.T) {
	eng := newEngine(&seqSource{vals: []int{4, 16}})
	p := eng.RollWithDisadvantage("1d20", nil)
	assert.Equal(t, 5, p.Chosen.Total)
	assert.Equal(t, []int{5}, p.First.Dice)
	assert.Equal(t, []int{17}, p.Second.Dice)
}

func TestChance_Extremes(t *testing.T) {
	eng := newEngine(dice.NewSeededSource(7))
	for i := 0; i < 100; i++ {
		assert.False(t, eng.Chance(0))
		assert.True(t, eng.Chance(1))
	}
}

func TestIntn_BeyondMaxSides(t *testing.T) {
	eng := newEngine(fixedSource{v: 4321})
	assert.Equal(t, 4321, eng.Intn(10*dice.MaxSides))
	assert.Equal(t, 9, eng.Intn(10), "source clamps to n-1")
}

func TestD20_InRange(t *testing.T) {
	eng := newEngine(dice.NewCryptoSource())
	for i := 0; i < 500; i++ {
		v := eng.D20()
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}

func TestSeededSource_Deterministic(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

// TestProperty_DiceBounds verifies NdM totals lie in [N, N*M] and exactly N dice are rolled.
func TestProperty_DiceBounds(t *testing.T) {
	eng := newEngine(dice.NewCryptoSource())
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		m := rapid.IntRange(1, 100).Draw(rt, "m")
		r := eng.Roll(fmt.Sprintf("%dd%d", n, m), formula.Map{})
		require.NoError(rt, r.Err)
		assert.Len(rt, r.Dice, n)
		assert.GreaterOrEqual(rt, r.Total, n)
		assert.LessOrEqual(rt, r.Total, n*m)
	})
}

func TestProperty_TotalEqualsDicePlusModifier(t *testing.T) {
	eng := newEngine(dice.NewSeededSource(1))
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		m := rapid.IntRange(2, 20).Draw(rt, "m")
		k := rapid.IntRange(-50, 50).Draw(rt, "k")
		r := eng.Roll(fmt.Sprintf("%dd%d+(%d)", n, m, k), nil)
		require.NoError(rt, r.Err)
		assert.Equal(rt, r.DiceSum()+k, r.Total)
		assert.True(rt, strings.Contains(r.String(), "→"))
	})
}

// TestCryptoSource_Intn_InRange verifies every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

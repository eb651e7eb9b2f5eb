package attribute_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
)

func baseSet() attribute.Set {
	return attribute.Set{
		attribute.Strength:     14,
		attribute.Dexterity:    12,
		attribute.Constitution: 10,
		attribute.Intelligence: 8,
		attribute.Wisdom:       10,
		attribute.Charisma:     10,
		attribute.Agility:      12,
	}
}

func TestNewAggregator_PoolsStartFull(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	final := a.Final()
	assert.Equal(t, 100.0, final[attribute.MaxHealth])
	assert.Equal(t, final[attribute.MaxHealth], a.Resource(attribute.ResourceHealth))
	assert.Equal(t, final[attribute.MaxMana], a.Resource(attribute.ResourceMana))
	assert.Equal(t, final[attribute.MaxStamina], a.Resource(attribute.ResourceStamina))
}

func TestFinal_DerivedStats(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	f := a.Final()
	assert.Equal(t, 7.0, f[attribute.Attack], "attack gains floor(strength/2)")
	assert.Equal(t, 3.0, f[attribute.Defense], "defense gains floor(constitution/3)")
	assert.Equal(t, 81.0, f[attribute.HitChance])
	assert.Equal(t, 8.0, f[attribute.CritChance])
	assert.Equal(t, 150.0, f[attribute.CritPower])
	assert.InDelta(t, 3.6, f[attribute.Dodge], 1e-9)
	assert.Equal(t, 12.0, f[attribute.Initiative])
	assert.Equal(t, 11.0, f[attribute.ArmorClass], "10 + dexterity modifier")
	assert.Equal(t, 70.0, f[attribute.MaxMana])
	assert.Equal(t, 90.0, f[attribute.MaxStamina])
	assert.Equal(t, 0.0, f[attribute.DamageReduction])
}

func TestFinal_Clamps(t *testing.T) {
	a := attribute.NewAggregator(attribute.Set{
		attribute.Strength: -4,
		attribute.Agility:  400,
		"fireResist":       250,
		"coldResist":       -300,
		attribute.CritPower: -500,
	})
	f := a.Final()
	assert.Equal(t, 1.0, f[attribute.Strength], "primary attributes never drop below 1")
	assert.Equal(t, 95.0, f[attribute.HitChance])
	assert.Equal(t, 75.0, f[attribute.CritChance])
	assert.Equal(t, 60.0, f[attribute.Dodge])
	assert.Equal(t, 75.0, f[attribute.Block])
	assert.Equal(t, 100.0, f["fireresist"])
	assert.Equal(t, -100.0, f["coldresist"])
	assert.Equal(t, 100.0, f[attribute.CritPower])
	assert.GreaterOrEqual(t, f[attribute.MaxHealth], 1.0)
}

func TestFinal_HealthDeltaFoldsIntoMax(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	a.ModifyResource(attribute.ResourceHealth, -30)
	before := a.Resource(attribute.ResourceHealth)

	a.AddModifier("ring", attribute.Set{"health": 25})
	f := a.Final()
	assert.Equal(t, 125.0, f[attribute.MaxHealth])
	_, present := f[attribute.Health]
	assert.False(t, present, "current health is never part of the final set")
	assert.Equal(t, before, a.Resource(attribute.ResourceHealth), "capacity grows, current does not")
}

func TestFinal_IsACopy(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	f := a.Final()
	f[attribute.Strength] = 99
	assert.Equal(t, 14.0, a.Get(attribute.Strength))
}

func TestAddModifier_Replaces(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	a.AddModifier("sword", attribute.Set{attribute.Strength: 2})
	a.AddModifier("sword", attribute.Set{attribute.Strength: 4})
	assert.Equal(t, 18.0, a.Get(attribute.Strength))
	assert.Equal(t, []string{"sword"}, a.Sources())
}

func TestAddModifier_CaseInsensitiveNames(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	a.AddModifier("belt", attribute.Set{"STR": 2, "Constitution": 1})
	assert.Equal(t, 16.0, a.Get("strength"))
	assert.Equal(t, 11.0, a.Get("con"))
}

func TestRemoveModifier_Unknown_NoOp(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	before := a.Final()
	a.RemoveModifier("nothing")
	assert.Equal(t, before, a.Final())
	assert.False(t, a.HasModifier("nothing"))
}

func TestSetBase_ClampsPools(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	base := baseSet()
	base[attribute.Constitution] = 3
	a.SetBase(base)
	assert.Equal(t, 30.0, a.Resource(attribute.ResourceHealth))
	assert.Equal(t, 3.0, a.Base()[attribute.Constitution])
}

func TestSetResource_Clamps(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	assert.Equal(t, 0.0, a.SetResource(attribute.ResourceHealth, -10))
	assert.Equal(t, 100.0, a.SetResource(attribute.ResourceHealth, 1000))
	assert.Equal(t, 60.0, a.ModifyResource(attribute.ResourceHealth, -40))
}

func TestRemoveModifier_ClampsCurrentToShrunkMax(t *testing.T) {
	a := attribute.NewAggregator(baseSet())
	a.AddModifier("amulet", attribute.Set{attribute.MaxHealth: 50})
	a.Restore()
	require.Equal(t, 150.0, a.Resource(attribute.ResourceHealth))
	a.RemoveModifier("amulet")
	assert.Equal(t, 100.0, a.Resource(attribute.ResourceHealth))
}

func TestSet_LookupModifiers(t *testing.T) {
	s := attribute.Set{attribute.Strength: 14, attribute.Wisdom: 7}
	v, ok := s.Lookup("strengthmod")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	v, _ = s.Lookup("wisdommod")
	assert.Equal(t, -2.0, v)
	_, ok = s.Lookup("charismamod")
	assert.False(t, ok)
}

func TestMod(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{{10, 0}, {11, 0}, {12, 1}, {14, 2}, {9, -1}, {8, -1}, {1, -5}, {20, 5}}
	for _, tc := range tests {
		assert.Equal(t, tc.want, attribute.Mod(tc.score), "score=%v", tc.score)
	}
}

func drawDeltas(rt *rapid.T, label string) attribute.Set {
	names := []string{attribute.Strength, attribute.Constitution, attribute.Agility, attribute.Health, attribute.MaxMana, "fireresist", attribute.Attack}
	out := attribute.Set{}
	for _, n := range names {
		if rapid.Bool().Draw(rt, fmt.Sprintf("%s_has_%s", label, n)) {
			out[n] = float64(rapid.IntRange(-30, 30).Draw(rt, fmt.Sprintf("%s_%s", label, n)))
		}
	}
	return out
}

func TestProperty_ModifierReplaceNotStack(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := drawDeltas(rt, "a")
		b := drawDeltas(rt, "b")
		other := drawDeltas(rt, "other")

		replaced := attribute.NewAggregator(baseSet())
		replaced.AddModifier("other", other)
		replaced.AddModifier("src", a)
		replaced.AddModifier("src", b)

		direct := attribute.NewAggregator(baseSet())
		direct.AddModifier("other", other)
		direct.AddModifier("src", b)

		assert.Equal(rt, direct.Final(), replaced.Final())
	})
}

func TestProperty_ModifierRemovalReversible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := drawDeltas(rt, "d")
		agg := attribute.NewAggregator(baseSet())
		before := agg.Final()
		agg.AddModifier("buff", d)
		agg.RemoveModifier("buff")
		assert.Equal(rt, before, agg.Final())
	})
}

func TestProperty_ResourceClamp(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		agg := attribute.NewAggregator(baseSet())
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			src := rapid.SampledFrom([]string{"a", "b", "c"}).Draw(rt, fmt.Sprintf("src_%d", i))
			switch rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("op_%d", i)) {
			case 0:
				agg.AddModifier(src, drawDeltas(rt, fmt.Sprintf("m%d", i)))
			case 1:
				agg.RemoveModifier(src)
			case 2:
				agg.ModifyResource(attribute.ResourceHealth, float64(rapid.IntRange(-200, 200).Draw(rt, fmt.Sprintf("dh_%d", i))))
			case 3:
				agg.Restore()
			}
			final := agg.Final()
			for _, r := range attribute.Resources {
				v := agg.Resource(r)
				assert.GreaterOrEqual(rt, v, 0.0)
				assert.LessOrEqual(rt, v, final[r.Max()])
			}
		}
	})
}

func TestIsKnown(t *testing.T) {
	assert.True(t, attribute.IsKnown("strength"))
	assert.True(t, attribute.IsKnown("STR"))
	assert.True(t, attribute.IsKnown("armorclass"))
	assert.False(t, attribute.IsKnown("luck"))
}

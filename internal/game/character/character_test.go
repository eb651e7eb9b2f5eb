package character_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
	"github.com/cory-johannsen/battlecore/internal/game/formula"
)

func registry(t *testing.T) *equipment.Registry {
	t.Helper()
	reg := equipment.NewRegistry()
	require.NoError(t, reg.RegisterWeapon(&equipment.WeaponDef{
		ID: "iron_sword", Name: "Iron Sword", Type: equipment.WeaponSword,
		Material: "iron", Weight: 3, Hands: 1, DamageFormula: "1d6+strengthMod",
	}))
	require.NoError(t, reg.RegisterArmor(&equipment.ArmorDef{
		ID: "chainmail", Name: "Chainmail", Slot: equipment.SlotBody,
		Type: equipment.ArmorMedium, Material: "iron", Weight: 20, ArmorClass: 4,
	}))
	return reg
}

func heroTemplate() *character.Template {
	return &character.Template{
		ID:   "hero",
		Name: "Hero",
		Attributes: map[string]float64{
			"strength": 14, "dexterity": 12, "constitution": 12, "agility": 10,
			"intelligence": 10, "wisdom": 10, "charisma": 10,
		},
		MainHand:  "iron_sword",
		Armor:     []string{"chainmail"},
		Abilities: []string{"power_strike"},
		Gold:      25,
	}
}

func TestBuild_EquipsAndFills(t *testing.T) {
	st, err := character.Build(heroTemplate(), registry(t))
	require.NoError(t, err)

	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 25, st.Gold)
	assert.Equal(t, "iron_sword", st.Loadout.Main().ID)
	assert.Equal(t, 15.0, st.Attributes.Get(attribute.ArmorClass), "10 + dex mod 1 + chainmail 4")
	assert.Equal(t, st.Attributes.Get(attribute.MaxHealth), st.Attributes.Resource(attribute.ResourceHealth))
}

func TestBuild_UnknownItem(t *testing.T) {
	tpl := heroTemplate()
	tpl.MainHand = "nope"
	_, err := character.Build(tpl, registry(t))
	assert.Error(t, err)

	tpl = heroTemplate()
	tpl.Armor = []string{"nope"}
	_, err = character.Build(tpl, registry(t))
	assert.Error(t, err)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`id: hero
name: Hero
level: 2
attributes:
  str: 14
  con: 12
main_hand: iron_sword
abilities: [power_strike]
`), 0o644))
	tpl, err := character.LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Level)
	assert.Equal(t, []string{"power_strike"}, tpl.Abilities)

	st, err := character.Build(tpl, registry(t))
	require.NoError(t, err)
	assert.Equal(t, 14.0, st.Attributes.Get("strength"), "aliases resolve on build")
	assert.Equal(t, 2.0, st.Attributes.Get(attribute.Level))
}

func TestGameState_PlayerHandleSharesState(t *testing.T) {
	gs := character.NewGameState()
	st, err := character.Build(heroTemplate(), registry(t))
	require.NoError(t, err)
	p, err := gs.AddPlayer("p1", st)
	require.NoError(t, err)

	_, err = gs.AddPlayer("p1", st)
	assert.Error(t, err)

	again, ok := gs.Player("p1")
	require.True(t, ok)
	p.TakeDamage(5)
	assert.Equal(t, p.Attributes().Resource(attribute.ResourceHealth), again.Attributes().Resource(attribute.ResourceHealth))
	assert.Same(t, gs.State("p1"), again.State())

	p.SelectAbility("power_strike")
	assert.Equal(t, "power_strike", again.SelectedAbility())
	assert.Equal(t, character.KindPlayer, p.Kind())
	assert.Nil(t, p.NaturalWeapon())

	_, ok = gs.Player("ghost")
	assert.False(t, ok)
}

func TestGameState_Update(t *testing.T) {
	gs := character.NewGameState()
	st, err := character.Build(heroTemplate(), registry(t))
	require.NoError(t, err)
	p, err := gs.AddPlayer("p1", st)
	require.NoError(t, err)

	assert.True(t, p.Update(func(st *character.PlayerState) { st.Gold += 10 }))
	assert.Equal(t, 35, gs.State("p1").Gold)
	assert.False(t, gs.Update("ghost", func(*character.PlayerState) {}))
}

func TestGameState_AddPlayerRejectsInvalid(t *testing.T) {
	gs := character.NewGameState()
	_, err := gs.AddPlayer("", &character.PlayerState{Attributes: attribute.NewAggregator(nil)})
	assert.Error(t, err)
	_, err = gs.AddPlayer("p", &character.PlayerState{})
	assert.Error(t, err)
}

func TestNPC_TakeDamageAndDefeat(t *testing.T) {
	claw := &equipment.WeaponDef{ID: "claw", Name: "Claw", Type: equipment.WeaponDagger, Hands: 1, DamageFormula: "1d4"}
	n := character.NewNPC("wolf-1", "Wolf", attribute.Set{attribute.Constitution: 1}, claw, []string{"bite"})
	assert.Equal(t, character.KindNPC, n.Kind())
	assert.Equal(t, 10, character.Health(n))
	assert.Equal(t, "claw", n.NaturalWeapon().ID)
	assert.Equal(t, []string{"bite"}, n.KnownAbilities())

	assert.Equal(t, 10, n.TakeDamage(-3), "negative damage is ignored")
	assert.Equal(t, 3, n.TakeDamage(7))
	assert.False(t, n.IsDefeated())
	assert.Equal(t, 0, n.TakeDamage(100))
	assert.True(t, n.IsDefeated())
}

func TestDamageContext_Lookup(t *testing.T) {
	st, err := character.Build(heroTemplate(), registry(t))
	require.NoError(t, err)
	p, err := character.NewGameState().AddPlayer("p1", st)
	require.NoError(t, err)

	ctx := character.NewDamageContext(p, true)
	v, ok := ctx.Lookup("strengthmod")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	v, _ = ctx.Lookup("weaponweight")
	assert.Equal(t, 3.0, v)
	v, _ = ctx.Lookup("armortype")
	assert.Equal(t, 3.0, v)
	_, ok = ctx.Lookup("levelmod")
	assert.False(t, ok, "only primary attributes carry a modifier")

	bare := character.NewDamageContext(p, false)
	assert.Nil(t, bare.Equipment)
	_, ok = bare.Lookup("weaponweight")
	assert.False(t, ok)

	eval := formula.NewEvaluator(nil)
	assert.Equal(t, 5.0, eval.Evaluate("STR_unknown + strMod + weaponWeight", ctx))
}

func TestDamageContext_ModMatchesAttribute(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		str := rapid.IntRange(1, 40).Draw(rt, "str")
		n := character.NewNPC("n", "N", attribute.Set{attribute.Strength: float64(str)}, nil, nil)
		ctx := character.NewDamageContext(n, false)
		v, ok := ctx.Lookup("strengthmod")
		assert.True(rt, ok)
		assert.Equal(rt, float64(attribute.Mod(float64(str))), v)
	})
}

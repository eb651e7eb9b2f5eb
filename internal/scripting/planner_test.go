package scripting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

var _ battle.AbilityPlanner = (*scripting.Manager)(nil)

const plannerScript = `
function select_ability(id, name, health, max_health, abilities)
	if health < max_health / 2 then
		return abilities[2]
	end
	if id == "stubborn" then
		return "fireball"
	end
	if id == "quiet" then
		return 7
	end
	return abilities[1]
end
`

func shaman(id string) *character.NPC {
	n := character.NewNPC(id, "Shaman", attribute.Set{attribute.Constitution: 10}, nil, []string{"hex", "mend"})
	n.TemplateID = "shaman"
	return n
}

func TestSelectAbility_UsesTemplateScope(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.Load("shaman", writeTempLua(t, "shaman.lua", plannerScript)))

	s := shaman("s1")
	assert.Equal(t, "hex", mgr.SelectAbility(context.Background(), s))

	s.TakeDamage(60)
	assert.Equal(t, "mend", mgr.SelectAbility(context.Background(), s))
}

func TestSelectAbility_RejectsUnknownAndNonString(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	require.NoError(t, mgr.LoadGlobal(writeTempLua(t, "global.lua", plannerScript)))

	stubborn := character.NewNPC("stubborn", "Stubborn", attribute.Set{attribute.Constitution: 10}, nil, []string{"hex"})
	assert.Empty(t, mgr.SelectAbility(context.Background(), stubborn))
	assert.True(t, hasLevel(logs, "scripting: selected ability is not known"))

	quiet := character.NewNPC("quiet", "Quiet", attribute.Set{attribute.Constitution: 10}, nil, []string{"hex"})
	assert.Empty(t, mgr.SelectAbility(context.Background(), quiet))
}

func TestSelectAbility_NoScriptsOrCancelled(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	assert.Empty(t, mgr.SelectAbility(context.Background(), shaman("s1")))

	require.NoError(t, mgr.Load("shaman", writeTempLua(t, "shaman.lua", plannerScript)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, mgr.SelectAbility(ctx, shaman("s1")))
}

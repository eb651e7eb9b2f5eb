package scripting

import (
	"context"
	"slices"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
)

// SelectAbilityHook is the Lua global consulted before each enemy attack:
//
//	select_ability(id, name, health, max_health, abilities) -> ability id | nil
const SelectAbilityHook = "select_ability"

// SelectAbility asks the enemy's scripts which ability to use next. Scripts
// are looked up under the NPC's template id, then the enemy id, then the
// global scope. A nil, non-string or unknown result yields "".
func (m *Manager) SelectAbility(ctx context.Context, enemy character.Combatant) string {
	scope := enemy.ID()
	if n, ok := enemy.(*character.NPC); ok && n.TemplateID != "" {
		scope = n.TemplateID
	}
	known := enemy.KnownAbilities()
	agg := enemy.Attributes()

	ret, err := m.call(ctx, scope, SelectAbilityHook, func(L *lua.LState) []lua.LValue {
		abilities := L.NewTable()
		for _, id := range known {
			abilities.Append(lua.LString(id))
		}
		return []lua.LValue{
			lua.LString(enemy.ID()),
			lua.LString(enemy.Name()),
			lua.LNumber(agg.Resource(attribute.ResourceHealth)),
			lua.LNumber(agg.Get(attribute.MaxHealth)),
			abilities,
		}
	})
	if err != nil {
		return ""
	}
	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return ""
	}
	if !slices.Contains(known, string(s)) {
		m.logger.Warn("scripting: selected ability is not known",
			zap.String("enemy", enemy.ID()),
			zap.String("ability", string(s)),
		)
		return ""
	}
	return string(s)
}

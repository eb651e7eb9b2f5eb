package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/formula"
)

// RegisterModules installs the engine table into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(formula) -> {total, dice, modifier, natural}
//	engine.dice.d20() -> number
//	engine.dice.chance(p) -> boolean
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logf := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logf(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res := m.dice.Roll(L.CheckString(1), formula.Map{})
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total))
		L.SetField(t, "dice", lua.LNumber(res.DiceSum()))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.SetField(t, "natural", lua.LNumber(res.Natural()))
		L.Push(t)
		return 1
	}))
	L.SetField(mod, "d20", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.dice.D20()))
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.dice.Chance(float64(L.CheckNumber(1)))))
		return 1
	}))
	return mod
}

package scripting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	mockdice "github.com/cory-johannsen/battlecore/internal/game/dice/mock"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

func runScript(t testing.TB, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	require.NoError(t, mgr.Load("modtest", writeTempLua(t, "test.lua", luaSrc)))
	ret, err := mgr.CallHook(context.Background(), "modtest", hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(newEngine(dice.NewCryptoSource(), nil), logger, 0)

	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	got := map[string]string{}
	for _, e := range logs.All() {
		if e.ContextMap()["source"] == "lua" {
			got[e.Level.String()] = e.Message
		}
	}
	assert.Equal(t, map[string]string{"debug": "d", "info": "i", "warn": "w", "error": "e"}, got)
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	mgr := scripting.NewManager(newEngine(mockdice.NewScriptedSource(5), nil), zap.NewNop(), 0)
	ret := runScript(t, mgr, `
		function do_roll()
			local r = engine.dice.roll("1d6+2")
			assert(r.dice == 5, "dice")
			assert(r.modifier == 2, "modifier")
			assert(r.natural == 5, "natural")
			return r.total
		end
	`, "do_roll")
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestEngineDice_D20AndChance(t *testing.T) {
	mgr := scripting.NewManager(newEngine(mockdice.Always(20), nil), zap.NewNop(), 0)
	ret := runScript(t, mgr, `
		function check()
			return engine.dice.d20() == 20 and engine.dice.chance(1) and not engine.dice.chance(0)
		end
	`, "check")
	assert.Equal(t, lua.LTrue, ret)
}

func TestProperty_DiceRoll_TotalEqualsDicePlusModifier(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	require.NoError(t, mgr.Load("prop", writeTempLua(t, "prop.lua", `
		function check_invariant(expr)
			local r = engine.dice.roll(expr)
			return r.total == r.dice + r.modifier
		end
	`)))
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.SampledFrom([]string{"1d6", "2d6+1", "1d4-1", "3d8+2"}).Draw(rt, "expr")
		ret, err := mgr.CallHook(context.Background(), "prop", "check_invariant", lua.LString(expr))
		if err != nil || ret != lua.LTrue {
			rt.Fatalf("invariant failed for %s: %v %v", expr, ret, err)
		}
	})
}

package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scoped VM is found.
const globalScope = "__global__"

// Manager owns one sandboxed LState per scope and dispatches hooks to them.
//
// An LState is single-threaded, so mu serialises every load and call.
type Manager struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	dice   *dice.Engine
	logger *zap.Logger
	limit  int
}

// NewManager creates a Manager whose loads and hook calls are each limited
// to instLimit opcodes (0 uses DefaultInstructionLimit).
//
// Precondition: engine and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(engine *dice.Engine, logger *zap.Logger, instLimit int) *Manager {
	if engine == nil {
		panic("scripting.NewManager: engine must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		states: make(map[string]*lua.LState),
		dice:   engine,
		logger: logger,
		limit:  instLimit,
	}
}

// Load creates a sandboxed VM for scope, registers the engine.* modules, then
// executes every *.lua file in dir in lexicographic order. A scope that is
// already loaded is replaced.
//
// Precondition: scope must be non-empty; dir must be a readable directory.
func (m *Manager) Load(scope, dir string) error {
	return m.loadInto(scope, dir)
}

// LoadGlobal loads the shared VM every CallHook falls back to.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadGlobal(dir string) error {
	return m.loadInto(globalScope, dir)
}

func (m *Manager) loadInto(key, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range files {
		if err := limited(L, context.Background(), m.limit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.logger.Debug("scripts loaded", zap.String("scope", key), zap.Int("files", len(files)))
	return nil
}

// Scopes returns the loaded scope keys, sorted. The global scope is included
// when loaded.
func (m *Manager) Scopes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.states))
	for k := range m.states {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the named Lua global in scope's VM, falling back to the
// global VM. It returns LNil when the hook or VM does not exist. Lua runtime
// errors, including exceeding the instruction limit, are logged at Warn
// level and never propagated; the only error is ctx already being done.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(ctx, scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// call is CallHook with arguments built inside the VM lock, so they may be
// tables owned by the target LState.
func (m *Manager) call(ctx context.Context, scope, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	if err := ctx.Err(); err != nil {
		return lua.LNil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[scope]
	if !ok {
		L = m.states[globalScope]
	}
	if L == nil {
		m.logger.Debug("scripting: no VM for scope", zap.String("scope", scope), zap.String("hook", hook))
		return lua.LNil, nil
	}
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	err := limited(L, ctx, m.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, build(L)...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: CallHook returns LNil for every scope.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, L := range m.states {
		L.Close()
		delete(m.states, k)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/events"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
	"github.com/cory-johannsen/battlecore/internal/game/npc"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// globalScriptDir is the scripting sub-directory loaded into the fallback VM.
const globalScriptDir = "global"

func provideDiceSource(cfg config.Config) dice.Source {
	if cfg.Dice.Source == "seeded" {
		return dice.NewSeededSource(cfg.Dice.Seed)
	}
	return dice.NewCryptoSource()
}

func provideEquipment(cfg config.Config, logger *zap.Logger) (*equipment.Registry, error) {
	reg, err := equipment.LoadRegistry(cfg.Content.Weapons, cfg.Content.Armor)
	if err != nil {
		return nil, fmt.Errorf("loading equipment: %w", err)
	}
	logger.Info("loaded equipment", zap.Int("weapons", len(reg.WeaponIDs())))
	return reg, nil
}

func provideAbilities(cfg config.Config, logger *zap.Logger) (*ability.Registry, error) {
	reg, err := ability.LoadDirectory(cfg.Content.Abilities)
	if err != nil {
		return nil, fmt.Errorf("loading abilities: %w", err)
	}
	logger.Info("loaded ability definitions", zap.Int("count", len(reg.All())))
	return reg, nil
}

func provideConditions(cfg config.Config, logger *zap.Logger) (*condition.Registry, error) {
	reg, err := condition.LoadDirectory(cfg.Content.Conditions)
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	logger.Info("loaded condition definitions", zap.Int("count", len(reg.All())))
	return reg, nil
}

func provideEnemies(cfg config.Config, equip *equipment.Registry, abilities *ability.Registry, engine *dice.Engine, logger *zap.Logger) (*npc.Manager, error) {
	m := npc.NewManager(equip, abilities, engine)
	if err := m.LoadDirectory(cfg.Content.Enemies); err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	logger.Info("loaded enemy templates", zap.Strings("ids", m.IDs()))
	return m, nil
}

func providePlayerTemplate(cfg config.Config) (*character.Template, error) {
	return character.LoadTemplate(cfg.Content.Player)
}

// provideScripts loads one VM per sub-directory of cfg.Scripting.Dir, keyed
// by the directory name, which must match an enemy template ID. A nil
// Manager means scripting is disabled.
func provideScripts(cfg config.Config, engine *dice.Engine, logger *zap.Logger) (*scripting.Manager, func(), error) {
	if cfg.Scripting.Dir == "" {
		return nil, func() {}, nil
	}
	start := time.Now()
	entries, err := os.ReadDir(cfg.Scripting.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading script root: %w", err)
	}
	mgr := scripting.NewManager(engine, logger, cfg.Scripting.InstructionLimit)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(cfg.Scripting.Dir, e.Name())
		if e.Name() == globalScriptDir {
			err = mgr.LoadGlobal(dir)
		} else {
			err = mgr.Load(e.Name(), dir)
		}
		if err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	logger.Info("scripting engine initialized",
		zap.Strings("scopes", mgr.Scopes()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mgr, mgr.Close, nil
}

func provideBus(logger *zap.Logger) (*events.Bus, func()) {
	bus := events.NewBus(logger)
	unsubscribe := observability.LogEvents(bus, logger)
	return bus, func() {
		unsubscribe()
		bus.Clear()
	}
}

func provideOrchestrator(
	cfg config.Config,
	resolver *combat.Resolver,
	abilities *ability.Service,
	engine *dice.Engine,
	conditions *condition.Registry,
	scripts *scripting.Manager,
	bus *events.Bus,
	logger *zap.Logger,
) (*battle.Orchestrator, func()) {
	opts := []battle.Option{
		battle.WithPublisher(bus),
		battle.WithConditions(conditions),
		battle.WithRewards(battle.StandardRewards{DefeatGoldPenalty: cfg.Combat.DefeatGoldPenalty}),
	}
	if scripts != nil {
		opts = append(opts, battle.WithPlanner(scripts))
	}
	orch := battle.NewOrchestrator(battle.Config{
		InactivityTimeout: cfg.Combat.InactivityTimeout,
		EscapeChance:      cfg.Combat.EscapeChance,
	}, resolver, abilities, engine, logger, opts...)
	return orch, orch.Shutdown
}

func provideSimulationConfig(cfg config.Config) config.SimulationConfig {
	return cfg.Simulation
}

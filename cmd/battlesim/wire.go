//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/formula"
	"github.com/cory-johannsen/battlecore/internal/simulation"
)

func initSimulator(cfg config.Config, logger *zap.Logger) (*simulation.Simulator, func(), error) {
	wire.Build(
		provideDiceSource,
		formula.NewEvaluator,
		dice.NewEngine,
		provideEquipment,
		provideAbilities,
		provideConditions,
		ability.NewCooldownTable,
		ability.NewService,
		combat.NewResolver,
		provideEnemies,
		providePlayerTemplate,
		provideScripts,
		provideBus,
		provideOrchestrator,
		provideSimulationConfig,
		simulation.New,
	)
	return nil, nil, nil
}

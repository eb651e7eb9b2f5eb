// Package main provides battlesim, a headless driver that plays configured
// encounters through the battle orchestrator and reports the outcomes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/events"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/simulation"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envPath := flag.String("env", ".env", "optional dotenv file applied before the config is read")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("loading %s: %v", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	sim, cleanup, err := initSimulator(cfg, logger)
	if err != nil {
		logger.Fatal("initializing simulator", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting simulation",
		zap.Int("battles", cfg.Simulation.Battles),
		zap.Strings("encounter", cfg.Simulation.Encounter),
		zap.Duration("startup", time.Since(start)),
	)

	results, err := sim.Run(ctx)
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		return
	}

	logSummary(logger, results, time.Since(start))
}

// logSummary logs the outcome tally and the mean battle length of results.
func logSummary(logger *zap.Logger, results []simulation.Result, elapsed time.Duration) {
	tally := make(map[events.Outcome]int)
	rounds := 0
	for _, r := range results {
		tally[r.Outcome]++
		rounds += r.Rounds
	}
	mean := 0.0
	if len(results) > 0 {
		mean = float64(rounds) / float64(len(results))
	}
	logger.Info("simulation complete",
		zap.Int("battles", len(results)),
		zap.Int("victories", tally[events.OutcomeVictory]),
		zap.Int("defeats", tally[events.OutcomeDefeat]),
		zap.Int("escapes", tally[events.OutcomeEscaped]),
		zap.Int("stopped", tally[events.OutcomeStopped]),
		zap.Float64("mean_rounds", mean),
		zap.Duration("elapsed", elapsed),
	)
}

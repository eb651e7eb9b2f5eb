// Package simulation drives complete battles headlessly: it builds a player
// from a template, spawns an encounter, and plays the player's turns until
// the battle resolves.
package simulation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/events"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
	"github.com/cory-johannsen/battlecore/internal/game/npc"
)

// Result summarises one simulated battle.
type Result struct {
	BattleID    string
	PlayerID    string
	Outcome     events.Outcome
	Rounds      int
	DamageDealt int
	DamageTaken int
	Reward      battle.Reward
}

// Simulator plays battles through an Orchestrator.
type Simulator struct {
	cfg       config.SimulationConfig
	orch      *battle.Orchestrator
	enemies   *npc.Manager
	equipment *equipment.Registry
	abilities *ability.Service
	player    *character.Template
	game      *character.GameState
	logger    *zap.Logger

	mu   sync.Mutex
	ends map[string]events.BattleEnd
}

// New creates a Simulator and subscribes it to battle.end on bus.
//
// Precondition: every argument except logger must be non-nil.
// Postcondition: Returns a Simulator with an empty GameState.
func New(
	cfg config.SimulationConfig,
	orch *battle.Orchestrator,
	bus *events.Bus,
	enemies *npc.Manager,
	equip *equipment.Registry,
	abilities *ability.Service,
	player *character.Template,
	logger *zap.Logger,
) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simulator{
		cfg:       cfg,
		orch:      orch,
		enemies:   enemies,
		equipment: equip,
		abilities: abilities,
		player:    player,
		game:      character.NewGameState(),
		logger:    logger,
		ends:      make(map[string]events.BattleEnd),
	}
	bus.Subscribe(events.TopicBattleEnd, s.recordEnd)
	return s
}

func (s *Simulator) recordEnd(e events.Event) {
	end, ok := e.Payload.(events.BattleEnd)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends[e.BattleID] = end
}

func (s *Simulator) end(battleID string) (events.BattleEnd, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	end, ok := s.ends[battleID]
	return end, ok
}

// Run plays cfg.Battles battles concurrently.
//
// Postcondition: Returns one Result per battle in start order, or the first error.
func (s *Simulator) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, s.cfg.Battles)
	g, ctx := errgroup.WithContext(ctx)
	for i := range s.cfg.Battles {
		g.Go(func() error {
			res, err := s.RunOne(ctx, i+1)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunOne builds a fresh player numbered n, starts a battle against the
// configured encounter and plays it out. A battle still unresolved after
// cfg.MaxRounds, or when ctx is done, is stopped.
func (s *Simulator) RunOne(ctx context.Context, n int) (Result, error) {
	player, err := s.newPlayer(n)
	if err != nil {
		return Result{}, err
	}
	foes, err := s.enemies.SpawnGroup(s.cfg.Encounter...)
	if err != nil {
		return Result{}, err
	}
	snap, err := s.orch.Start(player, foes)
	if err != nil {
		return Result{}, err
	}

	res := Result{BattleID: snap.ID, PlayerID: player.ID(), Rounds: snap.Round}
	for {
		if ctx.Err() != nil || res.Rounds > s.cfg.MaxRounds {
			s.orch.Stop(snap.ID)
			break
		}
		rep := s.orch.Act(snap.ID, s.chooseAction(player))
		if rep.Ignored {
			break
		}
		res.Rounds = rep.Round
		res.DamageDealt += rep.DamageDealt
		res.DamageTaken += rep.DamageTaken
		if rep.Outcome != "" {
			res.Reward = rep.Reward
			break
		}
	}

	if end, ok := s.end(snap.ID); ok {
		res.Outcome = end.Outcome
		res.Rounds = end.Rounds
	}
	s.logger.Info("simulated battle finished",
		zap.String("battle", res.BattleID),
		zap.String("player", res.PlayerID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("rounds", res.Rounds),
		zap.Int("damage_dealt", res.DamageDealt),
		zap.Int("damage_taken", res.DamageTaken),
	)
	return res, ctx.Err()
}

func (s *Simulator) newPlayer(n int) (*character.Player, error) {
	st, err := character.Build(s.player, s.equipment)
	if err != nil {
		return nil, err
	}
	return s.game.AddPlayer(fmt.Sprintf("%s-%d", s.player.ID, n), st)
}

// chooseAction uses the first known ability that can be used right now and
// otherwise attacks the first living enemy.
func (s *Simulator) chooseAction(p *character.Player) battle.Action {
	for _, id := range p.KnownAbilities() {
		def, ok := s.abilities.Lookup(id)
		if !ok {
			continue
		}
		if s.abilities.CanUse(p, def).Success {
			return battle.Action{Kind: battle.ActionAbility, AbilityID: id}
		}
	}
	return battle.Action{Kind: battle.ActionAttack}
}

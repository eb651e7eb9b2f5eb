package battle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/events"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// restrictedAction is the RestrictActions entry that keeps a combatant from acting.
const restrictedAction = "attack"

// AbilityPlanner chooses an enemy's ability for its coming attack.
// Returning "" keeps the enemy's configured ability.
type AbilityPlanner interface {
	SelectAbility(ctx context.Context, enemy character.Combatant) string
}

// Config holds the tunable battle rules.
type Config struct {
	InactivityTimeout time.Duration
	EscapeChance      float64
}

// DefaultConfig returns the standard battle rules.
func DefaultConfig() Config {
	return Config{InactivityTimeout: 30 * time.Second, EscapeChance: 0.5}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimerFactory replaces the inactivity timer implementation.
func WithTimerFactory(f TimerFactory) Option {
	return func(o *Orchestrator) { o.timers = f }
}

// WithPlanner installs an AbilityPlanner for enemy turns.
func WithPlanner(p AbilityPlanner) Option {
	return func(o *Orchestrator) { o.planner = p }
}

// WithRewards installs the policy applied when a battle is won or lost.
func WithRewards(p RewardPolicy) Option {
	return func(o *Orchestrator) { o.rewards = p }
}

// WithPublisher routes battle events to p.
func WithPublisher(p events.Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithConditions supplies the definitions ability conditions are looked up in.
func WithConditions(r *condition.Registry) Option {
	return func(o *Orchestrator) { o.conditions = r }
}

// Orchestrator owns every active battle.
//
// mu serialises all access to battle state, so the timer goroutine and
// callers never race on combatant attributes.
type Orchestrator struct {
	mu       sync.Mutex
	battles  map[string]*Battle
	byPlayer map[string]string

	cfg        Config
	resolver   *combat.Resolver
	abilities  *ability.Service
	dice       *dice.Engine
	conditions *condition.Registry
	timers     TimerFactory
	planner    AbilityPlanner
	rewards    RewardPolicy
	publisher  events.Publisher
	logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator.
//
// Precondition: resolver, abilities and engine must be non-nil; cfg.InactivityTimeout > 0.
// Postcondition: Returns an Orchestrator with no active battles.
func NewOrchestrator(cfg Config, resolver *combat.Resolver, abilities *ability.Service, engine *dice.Engine, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		battles:    make(map[string]*Battle),
		byPlayer:   make(map[string]string),
		cfg:        cfg,
		resolver:   resolver,
		abilities:  abilities,
		dice:       engine,
		conditions: condition.NewRegistry(),
		timers:     AfterFunc,
		publisher:  events.Discard,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start opens a battle between player and enemies at round 1 and arms the
// player's inactivity timer.
//
// Precondition: player is not defeated and not already in a battle; at least one enemy is alive.
// Nil entries in enemies are dropped.
// Postcondition: the battle is active and waiting for a player action.
func (o *Orchestrator) Start(player character.Combatant, enemies []*character.NPC) (Snapshot, error) {
	if player == nil || player.IsDefeated() {
		return Snapshot{}, errors.New("battle: player is missing or defeated")
	}
	enemies = slices.DeleteFunc(slices.Clone(enemies), func(e *character.NPC) bool { return e == nil })
	if !slices.ContainsFunc(enemies, func(e *character.NPC) bool { return !e.IsDefeated() }) {
		return Snapshot{}, errors.New("battle: no living enemies")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Battle{
		id:         uuid.NewString(),
		player:     player,
		enemies:    enemies,
		round:      1,
		phase:      PhasePlayerTurn,
		defaults:   make(map[string]string, len(enemies)),
		conditions: make(map[string]*condition.ActiveSet, len(enemies)+1),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, c := range b.participants() {
		b.conditions[c.ID()] = condition.NewActiveSet(c.Attributes())
	}
	for _, e := range b.enemies {
		b.defaults[e.ID()] = e.SelectedAbility()
	}

	o.mu.Lock()
	if existing, ok := o.byPlayer[player.ID()]; ok {
		o.mu.Unlock()
		cancel()
		return Snapshot{}, fmt.Errorf("battle: player %q is already in battle %s", player.ID(), existing)
	}
	o.battles[b.id] = b
	o.byPlayer[player.ID()] = b.id
	o.armTimerLocked(b)
	snap := b.snapshot()
	o.mu.Unlock()

	o.logger.Info("battle started",
		zap.String("battle", b.id),
		zap.String("player", player.ID()),
		zap.Int("enemies", len(enemies)),
	)
	o.publish(events.Event{Topic: events.TopicBattleStart, BattleID: b.id, Payload: events.BattleStart{
		PlayerID: player.ID(),
		Enemies:  snap.Enemies,
		Round:    snap.Round,
	}})
	return snap, nil
}

// Act resolves the player's action and, if the battle continues, the enemy
// turn after it. Acting on a battle that is not waiting for the player is
// ignored.
//
// Postcondition: the inactivity timer is re-armed iff the battle is still active.
func (o *Orchestrator) Act(battleID string, a Action) Report {
	o.mu.Lock()
	b, ok := o.battles[battleID]
	if !ok || b.phase != PhasePlayerTurn {
		o.mu.Unlock()
		o.logger.Debug("stale battle action ignored", zap.String("battle", battleID))
		return Report{BattleID: battleID, Ignored: true}
	}
	t := o.takeTurnLocked(b, a, false)
	o.mu.Unlock()

	o.publish(t.out...)
	return t.rep
}

// Escape is Act with ActionEscape.
func (o *Orchestrator) Escape(battleID string) Report {
	return o.Act(battleID, Action{Kind: ActionEscape})
}

// Get returns a snapshot of an active battle.
func (o *Orchestrator) Get(battleID string) (Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.battles[battleID]
	if !ok {
		return Snapshot{}, false
	}
	return b.snapshot(), true
}

// BattleFor returns the id of the battle player is in.
func (o *Orchestrator) BattleFor(playerID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id, ok := o.byPlayer[playerID]
	return id, ok
}

// Active returns the ids of every active battle, sorted.
func (o *Orchestrator) Active() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.battles))
	for id := range o.battles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop ends a battle without rewards. It reports whether the battle was active.
func (o *Orchestrator) Stop(battleID string) bool {
	o.mu.Lock()
	b, ok := o.battles[battleID]
	if !ok {
		o.mu.Unlock()
		return false
	}
	t := newTurn(b, false)
	o.finishLocked(t, events.OutcomeStopped)
	o.mu.Unlock()

	o.publish(t.out...)
	return true
}

// Shutdown stops every active battle.
func (o *Orchestrator) Shutdown() {
	for _, id := range o.Active() {
		o.Stop(id)
	}
}

// onTimeout injects a basic attack for an idle player. Callbacks from a timer
// that has since been stopped or replaced are no-ops.
func (o *Orchestrator) onTimeout(battleID string, gen uint64) {
	o.mu.Lock()
	b, ok := o.battles[battleID]
	if !ok || b.generation != gen || b.ctx.Err() != nil || b.phase != PhasePlayerTurn {
		o.mu.Unlock()
		return
	}
	o.logger.Info("player inactive; attacking on their behalf",
		zap.String("battle", battleID),
		zap.String("player", b.player.ID()),
		zap.Int("round", b.round),
	)
	t := o.takeTurnLocked(b, Action{Kind: ActionAttack}, true)
	o.mu.Unlock()

	o.publish(t.out...)
}

// armTimerLocked starts a fresh inactivity timer for b, replacing any other.
//
// Precondition: o.mu is held.
func (o *Orchestrator) armTimerLocked(b *Battle) {
	o.stopTimerLocked(b)
	gen := b.generation
	id := b.id
	b.timer = o.timers(o.cfg.InactivityTimeout, func() { o.onTimeout(id, gen) })
}

// stopTimerLocked cancels b's timer and invalidates any callback already in flight.
//
// Precondition: o.mu is held.
func (o *Orchestrator) stopTimerLocked(b *Battle) {
	b.generation++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// takeTurnLocked resolves one player action and the enemy turn after it.
//
// Precondition: o.mu is held; b.phase == PhasePlayerTurn.
func (o *Orchestrator) takeTurnLocked(b *Battle, a Action, auto bool) *turn {
	o.stopTimerLocked(b)
	t := newTurn(b, auto)
	player := b.player

	if auto {
		t.logf(combat.LogInfo, "%s is idle; attacking automatically.", player.Name())
	}

	switch {
	case condition.IsActionRestricted(b.conditions[player.ID()], restrictedAction):
		t.logf(combat.LogInfo, "%s is unable to act.", player.Name())
	case a.Kind == ActionEscape:
		if o.dice.Chance(o.cfg.EscapeChance) {
			t.logf(combat.LogInfo, "%s escapes!", player.Name())
			o.finishLocked(t, events.OutcomeEscaped)
			return t
		}
		t.logf(combat.LogInfo, "%s tries to escape but cannot get away.", player.Name())
	case a.Kind == ActionAttack || a.Kind == ActionAbility:
		if a.Kind == ActionAbility {
			if slices.Contains(player.KnownAbilities(), a.AbilityID) {
				player.SelectAbility(a.AbilityID)
			} else {
				t.logf(combat.LogInfo, "%s does not know %q.", player.Name(), a.AbilityID)
			}
		}
		o.playerAttackLocked(t, a.Target)
		player.SelectAbility("")
		if o.checkEndLocked(t) {
			return t
		}
	default:
		t.logf(combat.LogInfo, "%s hesitates.", player.Name())
	}

	if o.enemyTurnLocked(t) {
		return t
	}
	o.advanceRoundLocked(t)
	o.armTimerLocked(b)
	return t
}

func (o *Orchestrator) playerAttackLocked(t *turn, targetIdx int) {
	b := t.b
	target := b.target(targetIdx)
	rep := o.resolver.ResolveAttacks(b.player, target)
	o.absorbLocked(t, b.player, rep)
	t.rep.DamageDealt += rep.TotalDamage

	for _, s := range rep.Splash {
		for _, e := range b.enemies {
			if e == target || e.IsDefeated() {
				continue
			}
			dmg := combat.Mitigate(e, s.Damage)
			e.TakeDamage(dmg)
			t.rep.DamageDealt += dmg
			t.logf(combat.LogAbility, "%s is caught in the blast for %d damage.", e.Name(), dmg)
			if e.IsDefeated() {
				t.logf(combat.LogKill, "%s is defeated!", e.Name())
			}
		}
	}
}

// enemyTurnLocked lets every living enemy attack in initiative order. It
// reports whether the battle ended.
func (o *Orchestrator) enemyTurnLocked(t *turn) bool {
	b := t.b
	b.phase = PhaseEnemyTurn
	for _, e := range combat.TurnOrder(b.enemies) {
		if condition.IsActionRestricted(b.conditions[e.ID()], restrictedAction) {
			t.logf(combat.LogInfo, "%s is unable to act.", e.Name())
			continue
		}
		e.SelectAbility(o.planLocked(b, e))
		rep := o.resolver.ResolveAttacks(e, b.player)
		o.absorbLocked(t, e, rep)
		t.rep.DamageTaken += rep.TotalDamage
		if o.checkEndLocked(t) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) planLocked(b *Battle, e *character.NPC) string {
	id := b.defaults[e.ID()]
	if o.planner == nil {
		return id
	}
	if picked := o.planner.SelectAbility(b.ctx, e); picked != "" {
		return picked
	}
	return id
}

// absorbLocked folds a combat report into the turn: log lines, commitment
// events and condition applications.
func (o *Orchestrator) absorbLocked(t *turn, attacker character.Combatant, rep combat.Report) {
	t.rep.Log = append(t.rep.Log, rep.Log...)
	for _, c := range rep.Commitments {
		spent := make(map[string]float64, len(c.ResourcesSpent))
		for r, v := range c.ResourcesSpent {
			spent[string(r)] = v
		}
		t.emit(events.TopicAbilityCommit, events.AbilityCommit{
			OwnerID:        c.OwnerID,
			AbilityID:      c.AbilityID,
			ResourcesSpent: spent,
			Cooldown:       c.CooldownSet,
		})
	}
	for _, app := range rep.Conditions {
		o.applyConditionLocked(t, attacker, app)
	}
}

func (o *Orchestrator) applyConditionLocked(t *turn, source character.Combatant, app combat.ConditionApplication) {
	b := t.b
	set, ok := b.conditions[app.TargetID]
	target := b.combatant(app.TargetID)
	if !ok || target == nil {
		return
	}
	def, ok := o.conditions.Get(app.Effect.ID)
	if !ok {
		o.logger.Warn("condition not found",
			zap.String("battle", b.id),
			zap.String("condition", app.Effect.ID),
			zap.String("source", source.ID()),
		)
		return
	}
	if err := set.Apply(def, app.Effect.Stacks, app.Effect.Duration); err != nil {
		o.logger.Warn("applying condition", zap.String("condition", def.ID), zap.Error(err))
		return
	}
	t.logf(combat.LogInfo, "%s is now %s.", target.Name(), def.Name)
}

// checkEndLocked resolves the battle if either side has fallen. It reports
// whether the battle ended.
func (o *Orchestrator) checkEndLocked(t *turn) bool {
	switch {
	case t.b.player.IsDefeated():
		o.finishLocked(t, events.OutcomeDefeat)
		return true
	case t.b.enemiesDefeated():
		o.finishLocked(t, events.OutcomeVictory)
		return true
	}
	return false
}

// advanceRoundLocked closes an enemy turn the player survived: the round
// counter increments, cooldowns and conditions tick, and the player is up.
func (o *Orchestrator) advanceRoundLocked(t *turn) {
	b := t.b
	b.round++
	ids := make([]string, 0, len(b.enemies)+1)
	for _, c := range b.participants() {
		ids = append(ids, c.ID())
		for _, expired := range b.conditions[c.ID()].Tick() {
			name := expired
			if def, ok := o.conditions.Get(expired); ok {
				name = def.Name
			}
			t.logf(combat.LogInfo, "%s is no longer %s.", c.Name(), name)
		}
	}
	o.abilities.TickCooldowns(ids...)
	b.phase = PhasePlayerTurn

	t.rep.Round = b.round
	snap := b.snapshot()
	t.emit(events.TopicBattleLog, events.BattleLog{Round: b.round - 1, Auto: t.rep.Auto, Lines: logLines(t.rep.Log)})
	t.emit(events.TopicBattleUpdate, events.BattleUpdate{Round: b.round, Player: snap.Player, Enemies: snap.Enemies})
	t.emit(events.TopicPlayerStats, playerStats(b.player))
}

// finishLocked moves b out of the active set: the timer and battle context
// are cancelled, conditions and cooldowns are cleared, and rewards applied.
//
// Postcondition: b is no longer reachable through Get or Act.
func (o *Orchestrator) finishLocked(t *turn, outcome events.Outcome) {
	b := t.b
	o.stopTimerLocked(b)
	b.cancel()
	b.phase = PhaseResolved
	b.outcome = outcome
	delete(o.battles, b.id)
	delete(o.byPlayer, b.player.ID())

	for _, c := range b.participants() {
		b.conditions[c.ID()].Clear()
		o.abilities.Cooldowns().Clear(c.ID())
	}
	b.player.SelectAbility("")

	if o.rewards != nil {
		switch outcome {
		case events.OutcomeVictory:
			t.rep.Reward = o.rewards.Victory(b.player, b.enemies)
		case events.OutcomeDefeat:
			t.rep.Reward = o.rewards.Defeat(b.player)
		}
	}
	switch outcome {
	case events.OutcomeVictory:
		t.logf(combat.LogInfo, "Victory! %d experience and %d gold.", t.rep.Reward.Experience, t.rep.Reward.Gold)
	case events.OutcomeDefeat:
		t.logf(combat.LogInfo, "%s has fallen.", b.player.Name())
	}
	t.rep.Outcome = outcome
	t.rep.Round = b.round

	o.logger.Info("battle ended",
		zap.String("battle", b.id),
		zap.String("outcome", string(outcome)),
		zap.Int("rounds", b.round),
	)
	t.emit(events.TopicBattleLog, events.BattleLog{Round: b.round, Auto: t.rep.Auto, Lines: logLines(t.rep.Log)})
	t.emit(events.TopicBattleEnd, events.BattleEnd{
		Outcome:    outcome,
		Rounds:     b.round,
		Experience: t.rep.Reward.Experience,
		Gold:       t.rep.Reward.Gold,
	})
	t.emit(events.TopicPlayerStats, playerStats(b.player))
}

func (o *Orchestrator) publish(evs ...events.Event) {
	for _, e := range evs {
		o.publisher.Publish(e)
	}
}

func logLines(entries []combat.LogEntry) []events.LogLine {
	out := make([]events.LogLine, 0, len(entries))
	for _, e := range entries {
		out = append(out, events.LogLine{Message: e.Message, Type: string(e.Type)})
	}
	return out
}

func playerStats(p character.Combatant) events.PlayerStats {
	agg := p.Attributes()
	s := events.PlayerStats{
		PlayerID:   p.ID(),
		Health:     agg.Resource(attribute.ResourceHealth),
		MaxHealth:  agg.Get(attribute.MaxHealth),
		Mana:       agg.Resource(attribute.ResourceMana),
		MaxMana:    agg.Get(attribute.MaxMana),
		Stamina:    agg.Resource(attribute.ResourceStamina),
		MaxStamina: agg.Get(attribute.MaxStamina),
	}
	if pl, ok := p.(*character.Player); ok {
		if st := pl.State(); st != nil {
			s.Experience, s.Gold = st.Experience, st.Gold
		}
	}
	return s
}

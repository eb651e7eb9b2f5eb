// Package battle runs the lifecycle of a battle between one player and a
// group of enemies: turn order, the inactivity timer, escape, and the
// hand-off to reward handling once a side is defeated.
package battle

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/events"
	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/condition"
)

// Phase is a battle's position in its state machine.
type Phase int

const (
	PhasePlayerTurn Phase = iota
	PhaseEnemyTurn
	PhaseResolved
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ActionKind is what the player chose to do on their turn.
type ActionKind int

const (
	// ActionAttack is a basic attack with whatever is equipped.
	ActionAttack ActionKind = iota
	// ActionAbility selects an ability and then attacks.
	ActionAbility
	// ActionEscape tries to leave the battle.
	ActionEscape
)

// String returns a human-readable action label.
func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	case ActionEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Action is a declared player action.
type Action struct {
	Kind ActionKind
	// Target indexes the battle's enemies. An out-of-range or defeated
	// target falls back to the first living enemy.
	Target    int
	AbilityID string
}

// Report is the outcome of one player action and the enemy turn that followed it.
type Report struct {
	BattleID string
	// Ignored is set when the battle was not waiting for a player action.
	Ignored bool
	// Auto is set when the action was injected by the inactivity timer.
	Auto        bool
	Round       int
	Log         []combat.LogEntry
	DamageDealt int
	DamageTaken int
	// Outcome is empty while the battle continues.
	Outcome events.Outcome
	Reward  Reward
}

// Snapshot is a read-only copy of a battle's visible state.
type Snapshot struct {
	ID      string
	Round   int
	Phase   Phase
	Outcome events.Outcome
	Player  events.CombatantSnapshot
	Enemies []events.CombatantSnapshot
}

// Battle is the mutable state of one battle. It is only touched while the
// owning Orchestrator's lock is held.
type Battle struct {
	id      string
	player  character.Combatant
	enemies []*character.NPC
	round   int
	phase   Phase
	outcome events.Outcome

	// defaults holds each enemy's configured ability.
	defaults   map[string]string
	conditions map[string]*condition.ActiveSet

	ctx        context.Context
	cancel     context.CancelFunc
	timer      Timer
	generation uint64
}

func (b *Battle) participants() []character.Combatant {
	out := make([]character.Combatant, 0, len(b.enemies)+1)
	out = append(out, b.player)
	for _, e := range b.enemies {
		out = append(out, e)
	}
	return out
}

// target returns the enemy at idx, or the first living enemy when idx is out
// of range or already defeated.
func (b *Battle) target(idx int) *character.NPC {
	if idx >= 0 && idx < len(b.enemies) && !b.enemies[idx].IsDefeated() {
		return b.enemies[idx]
	}
	for _, e := range b.enemies {
		if !e.IsDefeated() {
			return e
		}
	}
	return nil
}

func (b *Battle) enemiesDefeated() bool {
	for _, e := range b.enemies {
		if !e.IsDefeated() {
			return false
		}
	}
	return true
}

func (b *Battle) combatant(id string) character.Combatant {
	if b.player.ID() == id {
		return b.player
	}
	for _, e := range b.enemies {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

func (b *Battle) snapshot() Snapshot {
	s := Snapshot{
		ID:      b.id,
		Round:   b.round,
		Phase:   b.phase,
		Outcome: b.outcome,
		Player:  combatantSnapshot(b.player),
	}
	for _, e := range b.enemies {
		s.Enemies = append(s.Enemies, combatantSnapshot(e))
	}
	return s
}

func combatantSnapshot(c character.Combatant) events.CombatantSnapshot {
	return events.CombatantSnapshot{
		ID:        c.ID(),
		Name:      c.Name(),
		Health:    character.Health(c),
		MaxHealth: int(c.Attributes().Get(attribute.MaxHealth)),
		Defeated:  c.IsDefeated(),
	}
}

// turn collects the report and outgoing events of one action while the
// orchestrator lock is held. Events are published after the lock is released.
type turn struct {
	b   *Battle
	rep Report
	out []events.Event
}

func newTurn(b *Battle, auto bool) *turn {
	return &turn{b: b, rep: Report{BattleID: b.id, Auto: auto}}
}

func (t *turn) logf(typ combat.LogType, format string, args ...any) {
	t.rep.Log = append(t.rep.Log, combat.LogEntry{Message: fmt.Sprintf(format, args...), Type: typ})
}

func (t *turn) emit(topic events.Topic, payload any) {
	t.out = append(t.out, events.Event{Topic: topic, BattleID: t.b.id, Payload: payload})
}

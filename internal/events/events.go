// Package events carries fire-and-forget notifications out of the battle
// core. Subscribers never influence resolution.
package events

//go:generate mockgen -destination=mock/mock_publisher.go -package=mockevents -source=events.go

// Topic names an event stream. Topic strings are the public contract.
type Topic string

const (
	TopicBattleStart   Topic = "battle.start"
	TopicBattleUpdate  Topic = "battle.update"
	TopicBattleEnd     Topic = "battle.end"
	TopicBattleLog     Topic = "battle.log"
	TopicPlayerStats   Topic = "player.stats"
	TopicAbilityCommit Topic = "ability.commit"
)

// Event is a single notification. Payload is one of the payload structs
// below, matching Topic.
type Event struct {
	Topic    Topic
	BattleID string
	Payload  any
}

// Publisher accepts events. Publish must not block on subscribers' work
// beyond running them, and must never fail the caller.
type Publisher interface {
	Publish(e Event)
}

// Outcome is how a battle ended.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeEscaped Outcome = "escaped"
	OutcomeStopped Outcome = "stopped"
)

// CombatantSnapshot is the externally visible state of one combatant.
type CombatantSnapshot struct {
	ID        string
	Name      string
	Health    int
	MaxHealth int
	Defeated  bool
}

// BattleStart is published on battle.start.
type BattleStart struct {
	PlayerID string
	Enemies  []CombatantSnapshot
	Round    int
}

// BattleUpdate is published on battle.update after every resolved turn.
type BattleUpdate struct {
	Round   int
	Player  CombatantSnapshot
	Enemies []CombatantSnapshot
}

// BattleEnd is published on battle.end.
type BattleEnd struct {
	Outcome    Outcome
	Rounds     int
	Experience int
	Gold       int
}

// LogLine is one entry of a battle.log batch.
type LogLine struct {
	Message string
	Type    string
}

// BattleLog is published on battle.log with the ordered lines of one action.
type BattleLog struct {
	Round int
	// Auto is set when the action was injected by the inactivity timer.
	Auto  bool
	Lines []LogLine
}

// PlayerStats is published on player.stats whenever the player's pools change.
type PlayerStats struct {
	PlayerID   string
	Health     float64
	MaxHealth  float64
	Mana       float64
	MaxMana    float64
	Stamina    float64
	MaxStamina float64
	Experience int
	Gold       int
}

// AbilityCommit is published on ability.commit when an ability's cost and
// cooldown are spent.
type AbilityCommit struct {
	OwnerID        string
	AbilityID      string
	ResourcesSpent map[string]float64
	Cooldown       int
}

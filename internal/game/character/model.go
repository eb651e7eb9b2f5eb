// Package character defines the capability set shared by every battle
// participant and its two variants: players, whose state is anchored in the
// shared game state, and NPCs, which own their state locally.
package character

import (
	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// Kind distinguishes player combatants from NPC combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// Combatant is anything that can take part in a battle.
//
// Attribute and resource state is reached only through the Aggregator; callers
// never mutate it directly.
type Combatant interface {
	ID() string
	Name() string
	Kind() Kind
	Attributes() *attribute.Aggregator
	Equipment() *equipment.Loadout
	// NaturalWeapon returns the combatant's innate weapon, or nil.
	NaturalWeapon() *equipment.WeaponDef
	// SelectedAbility returns the id of the ability chosen for the next
	// attack, or "" when none is selected.
	SelectedAbility() string
	SelectAbility(id string)
	// KnownAbilities lists the ability ids the combatant may select.
	KnownAbilities() []string
	IsDefeated() bool
	// TakeDamage lowers current health by amount (negative amounts are
	// ignored) and returns the health remaining.
	TakeDamage(amount int) int
}

// Health returns c's current health rounded down.
func Health(c Combatant) int {
	return int(c.Attributes().Resource(attribute.ResourceHealth))
}

func takeDamage(agg *attribute.Aggregator, amount int) int {
	if amount > 0 {
		agg.ModifyResource(attribute.ResourceHealth, -float64(amount))
	}
	return int(agg.Resource(attribute.ResourceHealth))
}

func defeated(agg *attribute.Aggregator) bool {
	return agg.Resource(attribute.ResourceHealth) <= 0
}

package character

import (
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// NPC is a non-player combatant that owns its attribute state locally.
type NPC struct {
	id       string
	name     string
	attrs    *attribute.Aggregator
	loadout  *equipment.Loadout
	natural  *equipment.WeaponDef
	known    []string
	selected string

	// TemplateID names the definition this NPC was spawned from.
	TemplateID string
	// Experience and Gold are granted to the victor.
	Experience int
	Gold       int
}

// NewNPC creates an NPC at full resources.
//
// Precondition: id must be non-empty.
// Postcondition: IsDefeated() is false unless base yields a zero health maximum.
func NewNPC(id, name string, base attribute.Set, natural *equipment.WeaponDef, abilities []string) *NPC {
	return &NPC{
		id:      id,
		name:    name,
		attrs:   attribute.NewAggregator(base),
		loadout: equipment.NewLoadout(),
		natural: natural,
		known:   slices.Clone(abilities),
	}
}

// Combatant implementation.

func (n *NPC) ID() string { return n.id }
func (n *NPC) Name() string { return n.name }
func (n *NPC) Kind() Kind { return KindNPC }
func (n *NPC) Attributes() *attribute.Aggregator { return n.attrs }
func (n *NPC) Equipment() *equipment.Loadout { return n.loadout }
func (n *NPC) NaturalWeapon() *equipment.WeaponDef { return n.natural }
func (n *NPC) SelectedAbility() string { return n.selected }
func (n *NPC) SelectAbility(id string) { n.selected = id }
func (n *NPC) KnownAbilities() []string { return slices.Clone(n.known) }
func (n *NPC) IsDefeated() bool { return defeated(n.attrs) }
func (n *NPC) TakeDamage(amount int) int { return takeDamage(n.attrs, amount) }

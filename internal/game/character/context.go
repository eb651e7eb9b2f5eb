package character

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// DamageContext is the variable context damage and attack formulas are
// evaluated against. Every field is enumerated; no other names resolve.
type DamageContext struct {
	Strength     float64
	Dexterity    float64
	Constitution float64
	Intelligence float64
	Wisdom       float64
	Charisma     float64
	Agility      float64
	Level        float64

	Health     float64
	MaxHealth  float64
	Mana       float64
	MaxMana    float64
	Stamina    float64
	MaxStamina float64

	ArmorClass      float64
	Attack          float64
	Defense         float64
	DamageReduction float64

	// Equipment is nil when equipment terms are not relevant to the formula.
	Equipment *equipment.Terms
}

// NewDamageContext snapshots c. Equipment terms are included only when
// withEquipment is set.
func NewDamageContext(c Combatant, withEquipment bool) DamageContext {
	agg := c.Attributes()
	f := agg.Final()
	ctx := DamageContext{
		Strength:        f[attribute.Strength],
		Dexterity:       f[attribute.Dexterity],
		Constitution:    f[attribute.Constitution],
		Intelligence:    f[attribute.Intelligence],
		Wisdom:          f[attribute.Wisdom],
		Charisma:        f[attribute.Charisma],
		Agility:         f[attribute.Agility],
		Level:           f[attribute.Level],
		Health:          agg.Resource(attribute.ResourceHealth),
		MaxHealth:       f[attribute.MaxHealth],
		Mana:            agg.Resource(attribute.ResourceMana),
		MaxMana:         f[attribute.MaxMana],
		Stamina:         agg.Resource(attribute.ResourceStamina),
		MaxStamina:      f[attribute.MaxStamina],
		ArmorClass:      f[attribute.ArmorClass],
		Attack:          f[attribute.Attack],
		Defense:         f[attribute.Defense],
		DamageReduction: f[attribute.DamageReduction],
	}
	if withEquipment {
		if l := c.Equipment(); l != nil {
			t := l.Terms()
			ctx.Equipment = &t
		}
	}
	return ctx
}

// Lookup implements formula.Vars. "<attribute>mod" resolves to the modifier
// of a primary attribute.
func (d DamageContext) Lookup(name string) (float64, bool) {
	switch name {
	case attribute.Strength:
		return d.Strength, true
	case attribute.Dexterity:
		return d.Dexterity, true
	case attribute.Constitution:
		return d.Constitution, true
	case attribute.Intelligence:
		return d.Intelligence, true
	case attribute.Wisdom:
		return d.Wisdom, true
	case attribute.Charisma:
		return d.Charisma, true
	case attribute.Agility:
		return d.Agility, true
	case attribute.Level:
		return d.Level, true
	case attribute.Health:
		return d.Health, true
	case attribute.MaxHealth:
		return d.MaxHealth, true
	case attribute.Mana:
		return d.Mana, true
	case attribute.MaxMana:
		return d.MaxMana, true
	case attribute.Stamina:
		return d.Stamina, true
	case attribute.MaxStamina:
		return d.MaxStamina, true
	case attribute.ArmorClass:
		return d.ArmorClass, true
	case attribute.Attack:
		return d.Attack, true
	case attribute.Defense:
		return d.Defense, true
	case attribute.DamageReduction:
		return d.DamageReduction, true
	}
	if base, ok := strings.CutSuffix(name, "mod"); ok {
		if v, ok := d.Lookup(base); ok && slices.Contains(attribute.Primary, base) {
			return float64(attribute.Mod(v)), true
		}
	}
	if d.Equipment != nil {
		return d.Equipment.Lookup(name)
	}
	return 0, false
}

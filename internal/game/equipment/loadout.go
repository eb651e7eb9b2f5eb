package equipment

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
)

// Slot identifies a carried or worn position on a combatant.
type Slot string

const (
	SlotMain    Slot = "main"
	SlotOffhand Slot = "offhand"
	SlotBody    Slot = "body"
	SlotFeet    Slot = "feet"
)

// Slots lists every slot in application order.
var Slots = []Slot{SlotMain, SlotOffhand, SlotBody, SlotFeet}

// ModifierSource returns the aggregator modifier source used for slot.
func ModifierSource(slot Slot) string {
	return "equipment:" + string(slot)
}

// Loadout tracks a combatant's equipped weapons and armor.
// Invariant: each Slot holds at most one item; a two-handed main weapon
// leaves the off-hand empty.
type Loadout struct {
	main    *WeaponDef
	offhand *WeaponDef
	armor   map[Slot]*ArmorDef
}

// NewLoadout returns an empty Loadout.
//
// Postcondition: all slots are empty.
func NewLoadout() *Loadout {
	return &Loadout{armor: make(map[Slot]*ArmorDef)}
}

// EquipWeapon places def into the main or off-hand slot, replacing what was there.
// A two-handed weapon in the main hand empties the off-hand.
//
// Precondition: def must not be nil and must satisfy def.Validate().
// Postcondition: on success Weapon(slot) == def.
func (l *Loadout) EquipWeapon(slot Slot, def *WeaponDef) error {
	if def == nil {
		return errors.New("equipment: Loadout.EquipWeapon: def must not be nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	switch slot {
	case SlotMain:
		if def.IsShield() {
			return fmt.Errorf("equipment: Loadout.EquipWeapon: shield %q cannot be held in the main hand", def.ID)
		}
		l.main = def
		if def.IsTwoHanded() {
			l.offhand = nil
		}
	case SlotOffhand:
		if def.IsTwoHanded() {
			return fmt.Errorf("equipment: Loadout.EquipWeapon: two-handed %q cannot be held in the off-hand", def.ID)
		}
		if l.main != nil && l.main.IsTwoHanded() {
			return fmt.Errorf("equipment: Loadout.EquipWeapon: main hand %q is two-handed", l.main.ID)
		}
		l.offhand = def
	default:
		return fmt.Errorf("equipment: Loadout.EquipWeapon: %q is not a weapon slot", slot)
	}
	return nil
}

// EquipArmor wears def in the slot it declares, replacing what was there.
//
// Precondition: def must not be nil and must satisfy def.Validate().
// Postcondition: on success Armor(def.Slot) == def.
func (l *Loadout) EquipArmor(def *ArmorDef) error {
	if def == nil {
		return errors.New("equipment: Loadout.EquipArmor: def must not be nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	l.armor[def.Slot] = def
	return nil
}

// Unequip empties slot.
//
// Postcondition: slot is empty.
func (l *Loadout) Unequip(slot Slot) {
	switch slot {
	case SlotMain:
		l.main = nil
	case SlotOffhand:
		l.offhand = nil
	default:
		delete(l.armor, slot)
	}
}

// Main returns the main-hand weapon, or nil.
func (l *Loadout) Main() *WeaponDef { return l.main }

// Offhand returns whatever is held in the off-hand, shields included, or nil.
func (l *Loadout) Offhand() *WeaponDef { return l.offhand }

// OffhandWeapon returns the off-hand item only when it can attack: it is not a
// shield and the main hand is not two-handed.
func (l *Loadout) OffhandWeapon() *WeaponDef {
	if l.offhand == nil || l.offhand.IsShield() {
		return nil
	}
	if l.main != nil && l.main.IsTwoHanded() {
		return nil
	}
	return l.offhand
}

// Armor returns the armor worn in slot, or nil.
func (l *Loadout) Armor(slot Slot) *ArmorDef { return l.armor[slot] }

// Deltas returns the attribute deltas supplied by the item in slot. An empty
// slot yields nil.
func (l *Loadout) Deltas(slot Slot) attribute.Set {
	switch slot {
	case SlotMain, SlotOffhand:
		w := l.main
		if slot == SlotOffhand {
			w = l.offhand
		}
		if w == nil {
			return nil
		}
		return attribute.Set(w.Modifiers).Clone()
	default:
		a := l.armor[slot]
		if a == nil {
			return nil
		}
		out := attribute.Set(a.Modifiers).Clone()
		out[attribute.ArmorClass] += float64(a.ArmorClass)
		out[attribute.DamageReduction] += float64(a.DamageReduction)
		return out
	}
}

// ApplyTo installs one modifier per occupied slot on agg and removes the
// modifiers of empty slots, so agg reflects exactly the current loadout.
func (l *Loadout) ApplyTo(agg *attribute.Aggregator) {
	for _, slot := range Slots {
		d := l.Deltas(slot)
		if d == nil {
			agg.RemoveModifier(ModifierSource(slot))
			continue
		}
		agg.AddModifier(ModifierSource(slot), d)
	}
}

// Terms returns the numeric equipment terms exposed to damage formulas.
func (l *Loadout) Terms() Terms {
	var t Terms
	if w := l.main; w != nil {
		t.WeaponWeight = w.Weight
		t.WeaponMaterial = w.Material.Tier()
		t.WeaponType = w.Type.Tier()
	}
	if w := l.offhand; w != nil {
		t.OffhandWeight = w.Weight
		t.OffhandType = w.Type.Tier()
	}
	if a := l.armor[SlotBody]; a != nil {
		t.ArmorWeight = a.Weight
		t.ArmorType = a.Type.Tier()
	}
	if a := l.armor[SlotFeet]; a != nil {
		t.BootWeight = a.Weight
		t.BootMaterial = a.Material.Tier()
	}
	return t
}

// Terms are the per-slot equipment values a damage formula may reference.
type Terms struct {
	WeaponWeight   float64
	WeaponMaterial float64
	WeaponType     float64
	BootWeight     float64
	BootMaterial   float64
	ArmorWeight    float64
	ArmorType      float64
	OffhandWeight  float64
	OffhandType    float64
}

// Lookup implements formula.Vars over canonical names such as "weaponweight".
func (t Terms) Lookup(name string) (float64, bool) {
	switch name {
	case "weaponweight":
		return t.WeaponWeight, true
	case "weaponmaterial":
		return t.WeaponMaterial, true
	case "weapontype":
		return t.WeaponType, true
	case "bootweight":
		return t.BootWeight, true
	case "bootmaterial":
		return t.BootMaterial, true
	case "armorweight":
		return t.ArmorWeight, true
	case "armortype":
		return t.ArmorType, true
	case "offhandweight":
		return t.OffhandWeight, true
	case "offhandtype":
		return t.OffhandType, true
	}
	return 0, false
}

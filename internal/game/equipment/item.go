// Package equipment defines weapon and armor templates, the slots a combatant
// carries them in, and the attribute modifiers and formula terms they supply.
package equipment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Material is what an item is made of. Formulas see its tier number.
type Material string

// WeaponType classifies a weapon. Formulas see its tier number.
type WeaponType string

// ArmorType classifies armor by weight class. Formulas see its tier number.
type ArmorType string

const (
	WeaponDagger WeaponType = "dagger"
	WeaponSword  WeaponType = "sword"
	WeaponAxe    WeaponType = "axe"
	WeaponMace   WeaponType = "mace"
	WeaponSpear  WeaponType = "spear"
	WeaponStaff  WeaponType = "staff"
	WeaponBow    WeaponType = "bow"
	WeaponShield WeaponType = "shield"

	ArmorCloth  ArmorType = "cloth"
	ArmorLight  ArmorType = "light"
	ArmorMedium ArmorType = "medium"
	ArmorHeavy  ArmorType = "heavy"
)

var materialTiers = map[Material]float64{
	"cloth":      1,
	"wood":       1,
	"leather":    2,
	"bone":       2,
	"bronze":     3,
	"iron":       4,
	"steel":      5,
	"mithril":    6,
	"adamantine": 7,
}

var weaponTypeTiers = map[WeaponType]float64{
	WeaponDagger: 1,
	WeaponStaff:  2,
	WeaponSword:  3,
	WeaponSpear:  3,
	WeaponMace:   4,
	WeaponAxe:    4,
	WeaponBow:    3,
	WeaponShield: 1,
}

var armorTypeTiers = map[ArmorType]float64{
	ArmorCloth:  1,
	ArmorLight:  2,
	ArmorMedium: 3,
	ArmorHeavy:  4,
}

// Tier returns the numeric tier of m, or 0 when m is unknown.
func (m Material) Tier() float64 { return materialTiers[m] }

// Tier returns the numeric tier of t, or 0 when t is unknown.
func (t WeaponType) Tier() float64 { return weaponTypeTiers[t] }

// Tier returns the numeric tier of t, or 0 when t is unknown.
func (t ArmorType) Tier() float64 { return armorTypeTiers[t] }

// WeaponDef defines the static properties of a weapon loaded from YAML.
type WeaponDef struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	Type          WeaponType         `yaml:"type"`
	Material      Material           `yaml:"material"`
	Weight        float64            `yaml:"weight"`
	Hands         int                `yaml:"hands"`
	DamageFormula string             `yaml:"damage"`
	AttackFormula string             `yaml:"attack"` // empty = resolver default
	Modifiers     map[string]float64 `yaml:"modifiers"`
}

// IsShield reports whether the weapon is a shield and therefore never attacks.
func (w *WeaponDef) IsShield() bool { return w.Type == WeaponShield }

// IsTwoHanded reports whether the weapon occupies both hands.
func (w *WeaponDef) IsTwoHanded() bool { return w.Hands == 2 }

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, ok := weaponTypeTiers[w.Type]; !ok {
		errs = append(errs, fmt.Errorf("type %q is not a known weapon type", w.Type))
	}
	if w.DamageFormula == "" && !w.IsShield() {
		errs = append(errs, errors.New("damage must not be empty"))
	}
	if w.Hands != 1 && w.Hands != 2 {
		errs = append(errs, fmt.Errorf("hands must be 1 or 2, got %d", w.Hands))
	}
	if w.IsShield() && w.IsTwoHanded() {
		errs = append(errs, errors.New("a shield cannot be two-handed"))
	}
	if w.Weight < 0 {
		errs = append(errs, errors.New("weight must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %w", w.ID, errors.Join(errs...))
	}
	return nil
}

// ArmorDef defines the static properties of a worn armor piece loaded from YAML.
type ArmorDef struct {
	ID              string             `yaml:"id"`
	Name            string             `yaml:"name"`
	Description     string             `yaml:"description"`
	Slot            Slot               `yaml:"slot"`
	Type            ArmorType          `yaml:"type"`
	Material        Material           `yaml:"material"`
	Weight          float64            `yaml:"weight"`
	ArmorClass      int                `yaml:"armor_class"`
	DamageReduction int                `yaml:"damage_reduction"`
	Modifiers       map[string]float64 `yaml:"modifiers"`
}

// Validate reports an error if the ArmorDef is missing required fields or
// contains illegal values.
// Precondition: a is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Slot != SlotBody && a.Slot != SlotFeet {
		errs = append(errs, fmt.Errorf("slot %q is not an armor slot", a.Slot))
	}
	if _, ok := armorTypeTiers[a.Type]; !ok {
		errs = append(errs, fmt.Errorf("type %q is not a known armor type", a.Type))
	}
	if a.ArmorClass < 0 {
		errs = append(errs, errors.New("armor_class must be >= 0"))
	}
	if a.DamageReduction < 0 {
		errs = append(errs, errors.New("damage_reduction must be >= 0"))
	}
	if a.Weight < 0 {
		errs = append(errs, errors.New("weight must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor %q validation failed: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	var out []*WeaponDef
	err := eachYAML(dir, func(path string, data []byte) error {
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if w.Hands == 0 {
			w.Hands = 1
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("invalid weapon in %q: %w", path, err)
		}
		out = append(out, &w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: %w", err)
	}
	return out, nil
}

// LoadArmor reads all *.yaml files from dir, parses each as an ArmorDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ArmorDefs or the first encountered error.
func LoadArmor(dir string) ([]*ArmorDef, error) {
	var out []*ArmorDef
	err := eachYAML(dir, func(path string, data []byte) error {
		var a ArmorDef
		if err := yaml.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid armor in %q: %w", path, err)
		}
		out = append(out, &a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadArmor: %w", err)
	}
	return out, nil
}

func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

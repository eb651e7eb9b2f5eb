package character

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// Template is the static definition a player character is built from.
type Template struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name"`
	Level      int                `yaml:"level"`
	Gold       int                `yaml:"gold"`
	Attributes map[string]float64 `yaml:"attributes"`
	MainHand   string             `yaml:"main_hand"`
	OffHand    string             `yaml:"off_hand"`
	Armor      []string           `yaml:"armor"`
	Abilities  []string           `yaml:"abilities"`
}

// Validate reports an error if the template is missing required fields.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(t.Attributes) == 0 {
		errs = append(errs, errors.New("attributes must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character template %q validation failed: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// LoadTemplate reads and validates one character template from path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("LoadTemplate: cannot read %q: %w", path, err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("LoadTemplate: cannot parse %q: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("LoadTemplate: %w", err)
	}
	return &t, nil
}

// Build constructs a PlayerState from tpl, equipping items resolved through
// reg and installing their modifiers. Pools start full.
//
// Precondition: tpl must satisfy Validate; reg must be non-nil.
// Postcondition: returns a PlayerState ready for GameState.AddPlayer, or a non-nil error
// naming the first item that could not be resolved or equipped.
func Build(tpl *Template, reg *equipment.Registry) (*PlayerState, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	base := attribute.Set(tpl.Attributes).Clone()
	level := tpl.Level
	if level < 1 {
		level = 1
	}
	base[attribute.Level] = float64(level)

	loadout := equipment.NewLoadout()
	if tpl.MainHand != "" {
		w, ok := reg.Weapon(tpl.MainHand)
		if !ok {
			return nil, fmt.Errorf("character: Build: unknown weapon %q", tpl.MainHand)
		}
		if err := loadout.EquipWeapon(equipment.SlotMain, w); err != nil {
			return nil, fmt.Errorf("character: Build: %w", err)
		}
	}
	if tpl.OffHand != "" {
		w, ok := reg.Weapon(tpl.OffHand)
		if !ok {
			return nil, fmt.Errorf("character: Build: unknown weapon %q", tpl.OffHand)
		}
		if err := loadout.EquipWeapon(equipment.SlotOffhand, w); err != nil {
			return nil, fmt.Errorf("character: Build: %w", err)
		}
	}
	for _, id := range tpl.Armor {
		a, ok := reg.Armor(id)
		if !ok {
			return nil, fmt.Errorf("character: Build: unknown armor %q", id)
		}
		if err := loadout.EquipArmor(a); err != nil {
			return nil, fmt.Errorf("character: Build: %w", err)
		}
	}

	agg := attribute.NewAggregator(base)
	loadout.ApplyTo(agg)
	agg.Restore()

	return &PlayerState{
		Name:       tpl.Name,
		Level:      level,
		Gold:       tpl.Gold,
		Attributes: agg,
		Loadout:    loadout,
		Abilities:  append([]string(nil), tpl.Abilities...),
	}, nil
}

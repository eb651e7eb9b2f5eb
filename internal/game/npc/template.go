// Package npc provides enemy template definitions and spawns combat-ready
// NPCs from them.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Level       int                `yaml:"level"`
	Attributes  map[string]float64 `yaml:"attributes"`
	// NaturalWeapon is used whenever MainHand is empty.
	NaturalWeapon *equipment.WeaponDef `yaml:"natural_weapon"`
	MainHand      string               `yaml:"main_hand"`
	Armor         []string             `yaml:"armor"`
	Abilities     []string             `yaml:"abilities"`
	// DefaultAbility is selected before every attack unless a planner
	// picks something else. Empty means a basic attack.
	DefaultAbility string   `yaml:"default_ability"`
	Experience     int      `yaml:"experience"`
	Gold           *GoldDrop `yaml:"gold"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, every
// attribute name is known, the natural weapon (if any) is valid, the default
// ability is one of Abilities, Experience >= 0 and Gold (if any) is valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	for name := range t.Attributes {
		if !attribute.IsKnown(name) {
			return fmt.Errorf("npc template %q: unknown attribute %q", t.ID, name)
		}
	}
	if t.NaturalWeapon != nil {
		if err := t.NaturalWeapon.Validate(); err != nil {
			return fmt.Errorf("npc template %q: natural_weapon: %w", t.ID, err)
		}
	}
	if t.DefaultAbility != "" && !slices.Contains(t.Abilities, t.DefaultAbility) {
		return fmt.Errorf("npc template %q: default_ability %q is not in abilities", t.ID, t.DefaultAbility)
	}
	if t.Experience < 0 {
		return fmt.Errorf("npc template %q: experience must be >= 0", t.ID)
	}
	if t.Gold != nil {
		if err := t.Gold.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes. Unknown
// fields are rejected.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if tmpl.NaturalWeapon != nil && tmpl.NaturalWeapon.Hands == 0 {
		tmpl.NaturalWeapon.Hands = 1
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

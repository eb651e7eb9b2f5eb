// Package ability defines usable actions (spells and skills), loads them from
// YAML, and gates their use on resources, attribute requirements, and
// per-owner cooldowns.
package ability

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
)

// Kind distinguishes spells from skills.
type Kind string

const (
	KindSpell Kind = "spell"
	KindSkill Kind = "skill"
)

// Target is who an ability's effect lands on.
type Target string

const (
	TargetEnemy Target = "enemy"
	TargetSelf  Target = "self"
	TargetArea  Target = "area"
)

// Cost is an amount of one resource pool spent on use.
type Cost struct {
	Resource attribute.Resource `yaml:"resource"`
	Amount   float64            `yaml:"amount"`
}

// ConditionEffect is a condition an ability applies to its target on use.
type ConditionEffect struct {
	ID       string `yaml:"id"`
	Stacks   int    `yaml:"stacks"`
	Duration int    `yaml:"duration"`
}

// Definition is the immutable template of an ability. Per-owner state such
// as remaining cooldown lives in a CooldownTable, never here.
type Definition struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	Kind          Kind               `yaml:"kind"`
	Costs         []Cost             `yaml:"costs"`
	Cooldown      int                `yaml:"cooldown"` // rounds
	Requirements  map[string]float64 `yaml:"requirements"`
	DamageFormula string             `yaml:"damage"`
	Target        Target             `yaml:"target"`
	// CasterOnly marks a formula that reads caster attributes only, so no
	// equipment terms are supplied even for a skill.
	CasterOnly bool             `yaml:"caster_only"`
	Condition  *ConditionEffect `yaml:"condition"`
}

// UsesEquipment reports whether damage resolution includes equipment terms.
func (d *Definition) UsesEquipment() bool {
	return !d.CasterOnly && d.Kind != KindSpell
}

// Validate reports an error if d is malformed.
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Kind != KindSpell && d.Kind != KindSkill {
		errs = append(errs, fmt.Errorf("kind %q must be spell or skill", d.Kind))
	}
	switch d.Target {
	case TargetEnemy, TargetSelf, TargetArea:
	default:
		errs = append(errs, fmt.Errorf("target %q must be enemy, self or area", d.Target))
	}
	for i, c := range d.Costs {
		switch c.Resource {
		case attribute.ResourceHealth, attribute.ResourceMana, attribute.ResourceStamina:
		default:
			errs = append(errs, fmt.Errorf("costs[%d]: unknown resource %q", i, c.Resource))
		}
		if c.Amount < 0 {
			errs = append(errs, fmt.Errorf("costs[%d]: amount must be >= 0", i))
		}
	}
	if d.Cooldown < 0 {
		errs = append(errs, errors.New("cooldown must be >= 0"))
	}
	if d.Condition != nil && d.Condition.ID == "" {
		errs = append(errs, errors.New("condition.id must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q validation failed: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds all loaded ability definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Get(def.ID) returns def; returns error if def is invalid or def.ID is already registered.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("ability: Registry.Register: ability ID %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every registered definition sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir. A file holds either one
// definition or a list of them. Unknown YAML fields are rejected.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range defs {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return reg, nil
}

func decode(data []byte) ([]*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		var defs []*Definition
		if err := dec.Decode(&defs); err != nil {
			return nil, err
		}
		return defs, nil
	}
	var d Definition
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return []*Definition{&d}, nil
}

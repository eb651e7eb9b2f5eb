package npc

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// Manager holds enemy templates and spawns NPCs from them.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	templates map[string]*Template
	equipment *equipment.Registry
	abilities *ability.Registry
	dice      *dice.Engine
	counter   atomic.Uint64
}

// NewManager creates an empty Manager. Templates are checked against equip
// and abilities when registered.
//
// Precondition: equip, abilities and engine must be non-nil.
func NewManager(equip *equipment.Registry, abilities *ability.Registry, engine *dice.Engine) *Manager {
	return &Manager{
		templates: make(map[string]*Template),
		equipment: equip,
		abilities: abilities,
		dice:      engine,
	}
}

// Register validates tmpl and its references, then adds it.
//
// Precondition: tmpl must be non-nil.
// Postcondition: Template(tmpl.ID) returns tmpl on success; a duplicate ID,
// an unknown item or an unknown ability is an error.
func (m *Manager) Register(tmpl *Template) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}
	if tmpl.MainHand != "" {
		if _, ok := m.equipment.Weapon(tmpl.MainHand); !ok {
			return fmt.Errorf("npc template %q: unknown weapon %q", tmpl.ID, tmpl.MainHand)
		}
	}
	for _, id := range tmpl.Armor {
		if _, ok := m.equipment.Armor(id); !ok {
			return fmt.Errorf("npc template %q: unknown armor %q", tmpl.ID, id)
		}
	}
	for _, id := range tmpl.Abilities {
		if _, ok := m.abilities.Get(id); !ok {
			return fmt.Errorf("npc template %q: unknown ability %q", tmpl.ID, id)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc template %q already registered", tmpl.ID)
	}
	m.templates[tmpl.ID] = tmpl
	return nil
}

// LoadDirectory registers every template in dir.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadDirectory(dir string) error {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if err := m.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Template returns the template registered under id.
func (m *Manager) Template(id string) (*Template, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	return t, ok
}

// IDs returns every registered template ID, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.templates))
	for id := range m.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Spawn creates a new NPC from the template registered under templateID.
//
// Postcondition: Returns an NPC at full resources with a unique ID of the form
// "<template>-<n>", its equipment installed, its default ability selected,
// and its gold rolled; or an error when the template is unknown.
func (m *Manager) Spawn(templateID string) (*character.NPC, error) {
	tmpl, ok := m.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("npc.Manager.Spawn: unknown template %q", templateID)
	}

	base := attribute.Set(tmpl.Attributes).Clone()
	base[attribute.Level] = float64(tmpl.Level)

	id := fmt.Sprintf("%s-%d", tmpl.ID, m.counter.Add(1))
	n := character.NewNPC(id, tmpl.Name, base, tmpl.NaturalWeapon, tmpl.Abilities)

	loadout := n.Equipment()
	if tmpl.MainHand != "" {
		w, _ := m.equipment.Weapon(tmpl.MainHand)
		if err := loadout.EquipWeapon(equipment.SlotMain, w); err != nil {
			return nil, fmt.Errorf("npc.Manager.Spawn: %w", err)
		}
	}
	for _, aid := range tmpl.Armor {
		a, _ := m.equipment.Armor(aid)
		if err := loadout.EquipArmor(a); err != nil {
			return nil, fmt.Errorf("npc.Manager.Spawn: %w", err)
		}
	}
	loadout.ApplyTo(n.Attributes())
	n.Attributes().Restore()

	n.SelectAbility(tmpl.DefaultAbility)
	n.TemplateID = tmpl.ID
	n.Experience = tmpl.Experience
	n.Gold = tmpl.Gold.Roll(m.dice)
	return n, nil
}

// SpawnGroup spawns one NPC per template ID, in order.
//
// Postcondition: Returns all NPCs or the first error.
func (m *Manager) SpawnGroup(templateIDs ...string) ([]*character.NPC, error) {
	out := make([]*character.NPC, 0, len(templateIDs))
	for _, id := range templateIDs {
		n, err := m.Spawn(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

package equipment

import (
	"fmt"
	"sort"
)

// Registry holds all loaded weapon and armor definitions indexed by ID.
type Registry struct {
	weapons map[string]*WeaponDef
	armor   map[string]*ArmorDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		armor:   make(map[string]*ArmorDef),
	}
}

// LoadRegistry loads weapons from weaponDir and armor from armorDir. An empty
// directory argument is skipped.
func LoadRegistry(weaponDir, armorDir string) (*Registry, error) {
	r := NewRegistry()
	if weaponDir != "" {
		ws, err := LoadWeapons(weaponDir)
		if err != nil {
			return nil, err
		}
		for _, w := range ws {
			if err := r.RegisterWeapon(w); err != nil {
				return nil, err
			}
		}
	}
	if armorDir != "" {
		as, err := LoadArmor(armorDir)
		if err != nil {
			return nil, err
		}
		for _, a := range as {
			if err := r.RegisterArmor(a); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("equipment: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// RegisterArmor adds a to the registry.
//
// Precondition:  a must not be nil.
// Postcondition: Armor(a.ID) returns a; returns error if a.ID already registered.
func (r *Registry) RegisterArmor(a *ArmorDef) error {
	if _, exists := r.armor[a.ID]; exists {
		return fmt.Errorf("equipment: Registry.RegisterArmor: armor ID %q already registered", a.ID)
	}
	r.armor[a.ID] = a
	return nil
}

// Weapon returns the WeaponDef for id and whether it was found.
func (r *Registry) Weapon(id string) (*WeaponDef, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// Armor returns the ArmorDef for id and whether it was found.
func (r *Registry) Armor(id string) (*ArmorDef, bool) {
	a, ok := r.armor[id]
	return a, ok
}

// WeaponIDs returns every registered weapon ID, sorted.
func (r *Registry) WeaponIDs() []string {
	out := make([]string, 0, len(r.weapons))
	for id := range r.weapons {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

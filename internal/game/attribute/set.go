// Package attribute aggregates a character's base attributes and named
// modifiers into a derived final attribute set, and tracks the current values
// of the health, mana, and stamina pools.
package attribute

import (
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/cory-johannsen/battlecore/internal/game/formula"
)

// Canonical attribute names. Names are lower-case so they match formula
// variables directly.
const (
	Strength     = "strength"
	Dexterity    = "dexterity"
	Constitution = "constitution"
	Intelligence = "intelligence"
	Wisdom       = "wisdom"
	Charisma     = "charisma"
	Agility      = "agility"

	Health     = "health"
	MaxHealth  = "maxhealth"
	Mana       = "mana"
	MaxMana    = "maxmana"
	Stamina    = "stamina"
	MaxStamina = "maxstamina"

	Attack          = "attack"
	Defense         = "defense"
	ArmorClass      = "armorclass"
	DamageReduction = "damagereduction"
	HitChance       = "hitchance"
	CritChance      = "critchance"
	CritPower       = "critpower"
	Dodge           = "dodge"
	Block           = "block"
	Initiative      = "initiative"
	HealthRegen     = "healthregen"
	ManaRegen       = "manaregen"
	StaminaRegen    = "staminaregen"
	Level           = "level"
)

// Primary lists the core attributes that carry a D&D-style modifier and are
// never allowed below 1.
var Primary = []string{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma, Agility}

// Set maps attribute names to values.
type Set map[string]float64

// Get returns the value of name, or 0 when absent. name is canonicalised.
func (s Set) Get(name string) float64 {
	return s[formula.CanonicalName(name)]
}

// Lookup implements formula.Vars so a Set can be used directly as a formula
// context. "<attribute>mod" resolves to the modifier of a primary attribute.
func (s Set) Lookup(name string) (float64, bool) {
	if v, ok := s[name]; ok {
		return v, true
	}
	if base, ok := strings.CutSuffix(name, "mod"); ok && isPrimary(base) {
		if v, ok := s[base]; ok {
			return float64(Mod(v)), true
		}
	}
	return 0, false
}

func isPrimary(name string) bool {
	return slices.Contains(Primary, name)
}

var known = append(slices.Clone(Primary),
	Health, MaxHealth, Mana, MaxMana, Stamina, MaxStamina,
	Attack, Defense, ArmorClass, DamageReduction, HitChance, CritChance, CritPower,
	Dodge, Block, Initiative, HealthRegen, ManaRegen, StaminaRegen, Level,
)

// IsKnown reports whether name, once canonicalised, is one of the attribute
// names declared in this package.
func IsKnown(name string) bool {
	return slices.Contains(known, formula.CanonicalName(name))
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return Set{}
	}
	return maps.Clone(s)
}

// Names returns the attribute names in s, sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// canonical returns a copy of s with every key canonicalised; values of keys
// that collapse onto the same name are summed.
func canonical(s Set) Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[formula.CanonicalName(k)] += v
	}
	return out
}

// Mod returns the D&D-style modifier for an attribute score:
// floor((score - 10) / 2).
func Mod(score float64) int {
	return int(math.Floor((score - 10) / 2))
}

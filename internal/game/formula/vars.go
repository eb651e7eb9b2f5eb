package formula

import "strings"

// Vars resolves variable names to values during evaluation.
//
// Names passed to Lookup are canonical (see CanonicalName). A variable that is
// not found evaluates to 0.
type Vars interface {
	Lookup(name string) (float64, bool)
}

// Map is a loosely typed Vars backed by a plain map. Keys may use any case or
// alias; they are matched canonically.
type Map map[string]float64

// Lookup implements Vars.
func (m Map) Lookup(name string) (float64, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if CanonicalName(k) == name {
			return v, true
		}
	}
	return 0, false
}

// Chain consults each Vars in order and returns the first hit.
type Chain []Vars

// Lookup implements Vars.
func (c Chain) Lookup(name string) (float64, bool) {
	for _, v := range c {
		if v == nil {
			continue
		}
		if x, ok := v.Lookup(name); ok {
			return x, true
		}
	}
	return 0, false
}

var aliases = map[string]string{
	"str": "strength",
	"dex": "dexterity",
	"con": "constitution",
	"int": "intelligence",
	"wis": "wisdom",
	"cha": "charisma",
	"agi": "agility",
	"lvl": "level",
	"hp":  "health",
	"mp":  "mana",
	"ac":  "armorclass",
}

// CanonicalName lower-cases name and expands short attribute aliases, including
// their modifier forms ("str" → "strength", "strMod" → "strengthmod").
func CanonicalName(name string) string {
	n := strings.ToLower(name)
	if full, ok := aliases[n]; ok {
		return full
	}
	if base, ok := strings.CutSuffix(n, "mod"); ok {
		if full, ok := aliases[base]; ok {
			return full + "mod"
		}
	}
	return n
}

package attribute

import (
	"math"
	"strings"
)

// Resource identifies one of the current-value pools.
type Resource string

const (
	ResourceHealth  Resource = Health
	ResourceMana    Resource = Mana
	ResourceStamina Resource = Stamina
)

// Resources lists every pool in a stable order.
var Resources = []Resource{ResourceHealth, ResourceMana, ResourceStamina}

// Max returns the final attribute holding the pool's capacity.
func (r Resource) Max() string {
	return "max" + string(r)
}

// Aggregator holds base attributes, one modifier per source, and the current
// resource pools of a single character.
//
// Invariant: Final() is a pure function of the base set and the active
// modifiers; current resources always lie in [0, max].
//
// It is not safe for concurrent use; the owner must serialise access.
type Aggregator struct {
	base      Set
	modifiers map[string]Set
	order     []string

	final Set
	dirty bool

	current map[Resource]float64
}

// NewAggregator creates an Aggregator over base with every pool full.
//
// Postcondition: Resource(r) == Final()[r.Max()] for every pool.
func NewAggregator(base Set) *Aggregator {
	a := &Aggregator{
		base:      canonical(base),
		modifiers: make(map[string]Set),
		dirty:     true,
		current:   make(map[Resource]float64),
	}
	a.Restore()
	return a
}

// SetBase replaces the base attributes. Pools are re-clamped to the new maxima.
func (a *Aggregator) SetBase(base Set) {
	a.base = canonical(base)
	a.invalidate()
}

// Base returns a copy of the base attributes.
func (a *Aggregator) Base() Set { return a.base.Clone() }

// AddModifier installs deltas under source, replacing any deltas previously
// installed under the same source.
//
// Postcondition: HasModifier(source) is true; Final() reflects only the new deltas for source.
func (a *Aggregator) AddModifier(source string, deltas Set) {
	if _, ok := a.modifiers[source]; !ok {
		a.order = append(a.order, source)
	}
	a.modifiers[source] = canonical(deltas)
	a.invalidate()
}

// RemoveModifier deletes the modifier installed under source. Removing an
// unknown source is a no-op.
func (a *Aggregator) RemoveModifier(source string) {
	if _, ok := a.modifiers[source]; !ok {
		return
	}
	delete(a.modifiers, source)
	for i, s := range a.order {
		if s == source {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.invalidate()
}

// HasModifier reports whether a modifier is installed under source.
func (a *Aggregator) HasModifier(source string) bool {
	_, ok := a.modifiers[source]
	return ok
}

// Sources returns the installed modifier sources in installation order.
func (a *Aggregator) Sources() []string {
	return append([]string(nil), a.order...)
}

// Final returns a copy of the derived attribute set, recomputing it if any
// base or modifier change happened since the last read.
func (a *Aggregator) Final() Set {
	return a.snapshot().Clone()
}

// Get returns a single final attribute.
func (a *Aggregator) Get(name string) float64 {
	return a.snapshot().Get(name)
}

// Resource returns the current value of pool r clamped to [0, max].
func (a *Aggregator) Resource(r Resource) float64 {
	a.snapshot()
	return a.current[r]
}

// SetResource sets pool r to v, clamped to [0, max], and returns the stored value.
func (a *Aggregator) SetResource(r Resource, v float64) float64 {
	final := a.snapshot()
	a.current[r] = clamp(v, 0, final[r.Max()])
	return a.current[r]
}

// ModifyResource adds delta to pool r, clamped to [0, max], and returns the
// stored value.
func (a *Aggregator) ModifyResource(r Resource, delta float64) float64 {
	a.snapshot()
	return a.SetResource(r, a.current[r]+delta)
}

// Restore fills every pool to its maximum.
func (a *Aggregator) Restore() {
	final := a.snapshot()
	for _, r := range Resources {
		a.current[r] = final[r.Max()]
	}
}

func (a *Aggregator) invalidate() {
	a.dirty = true
	a.snapshot()
}

// snapshot recomputes the final set when dirty and re-clamps the pools.
func (a *Aggregator) snapshot() Set {
	if !a.dirty {
		return a.final
	}
	a.final = derive(a.base, a.modifierSets())
	a.dirty = false
	for _, r := range Resources {
		a.current[r] = clamp(a.current[r], 0, a.final[r.Max()])
	}
	return a.final
}

func (a *Aggregator) modifierSets() []Set {
	out := make([]Set, 0, len(a.order))
	for _, s := range a.order {
		out = append(out, a.modifiers[s])
	}
	return out
}

// Range is an inclusive clamp range; NaN bounds are open.
type Range struct{ Min, Max float64 }

var unbounded = math.NaN()

// ranges documents the valid range of every bounded stat.
var ranges = map[string]Range{
	HitChance:       {5, 95},
	CritChance:      {0, 75},
	CritPower:       {100, unbounded},
	Dodge:           {0, 60},
	Block:           {0, 75},
	MaxHealth:       {1, unbounded},
	MaxMana:         {0, unbounded},
	MaxStamina:      {0, unbounded},
	HealthRegen:     {0, unbounded},
	ManaRegen:       {0, unbounded},
	StaminaRegen:    {0, unbounded},
	DamageReduction: {0, unbounded},
}

const resistSuffix = "resist"

// derive computes the final set from base and modifiers.
func derive(base Set, mods []Set) Set {
	out := base.Clone()
	for _, m := range mods {
		// Sorted for deterministic float summation.
		keys := m.Names()
		for _, k := range keys {
			out[k] += m[k]
		}
	}

	// Flat pool deltas raise capacity, never the current value.
	for _, r := range Resources {
		if v, ok := out[string(r)]; ok {
			out[r.Max()] += v
			delete(out, string(r))
		}
	}

	for _, p := range Primary {
		if v, ok := out[p]; ok && v < 1 {
			out[p] = 1
		}
	}

	str, con, agi := out[Strength], out[Constitution], out[Agility]
	wis, intl := out[Wisdom], out[Intelligence]

	out[Attack] += math.Floor(str / 2)
	out[Defense] += math.Floor(con / 3)
	out[HitChance] += 75 + agi/2
	out[CritChance] += 5 + agi/4
	out[CritPower] += 150
	out[Dodge] += agi * 0.3
	out[Block] += agi / 5
	out[Initiative] += agi
	out[MaxHealth] += con * 10
	out[MaxMana] += intl*5 + wis*3
	out[MaxStamina] += agi*5 + con*3
	out[HealthRegen] += con / 10
	out[ManaRegen] += wis / 5
	out[StaminaRegen] += agi / 5
	out[ArmorClass] += 10
	if dex, ok := out[Dexterity]; ok {
		out[ArmorClass] += float64(Mod(dex))
	}
	if _, ok := out[DamageReduction]; !ok {
		out[DamageReduction] = 0
	}

	for name, v := range out {
		if r, ok := ranges[name]; ok {
			out[name] = clamp(v, r.Min, r.Max)
			continue
		}
		if strings.HasSuffix(name, resistSuffix) {
			out[name] = clamp(v, -100, 100)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if !math.IsNaN(lo) && v < lo {
		v = lo
	}
	if !math.IsNaN(hi) && v > hi {
		v = hi
	}
	return v
}

package condition

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
)

// ActiveCondition tracks one applied condition on an entity.
type ActiveCondition struct {
	Def               *ConditionDef
	Stacks            int
	DurationRemaining int // -1 = permanent
}

// ActiveSet tracks all conditions currently applied to one combatant and keeps
// the combatant's aggregator in step with them.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	agg        *attribute.Aggregator
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet bound to agg.
//
// Precondition: agg must not be nil.
func NewActiveSet(agg *attribute.Aggregator) *ActiveSet {
	return &ActiveSet{agg: agg, conditions: make(map[string]*ActiveCondition)}
}

// ModifierSource returns the aggregator source a condition installs its deltas under.
func ModifierSource(id string) string {
	return "condition:" + id
}

// Apply adds or updates a condition on this entity.
// If the condition is already present, stacks are incremented (capped at MaxStacks).
// If MaxStacks == 0 (unstackable), stacks is always stored as 1.
// duration is rounds remaining; use -1 for permanent. Permanent definitions
// ignore duration.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true; the aggregator carries Deltas(def, Stacks(def.ID))
// under ModifierSource(def.ID); DurationRemaining is max(existing, duration) on re-apply.
func (s *ActiveSet) Apply(def *ConditionDef, stacks, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if def.DurationType == DurationPermanent {
		duration = -1
	}
	if stacks < 1 {
		stacks = 1
	}

	ac, ok := s.conditions[def.ID]
	if !ok {
		ac = &ActiveCondition{Def: def, DurationRemaining: duration}
		s.conditions[def.ID] = ac
	} else if duration > ac.DurationRemaining {
		ac.DurationRemaining = duration
	}
	switch {
	case def.MaxStacks == 0:
		ac.Stacks = 1
	default:
		ac.Stacks = min(ac.Stacks+stacks, def.MaxStacks)
	}
	s.agg.AddModifier(ModifierSource(def.ID), Deltas(def, ac.Stacks))
	return nil
}

// Remove deletes the condition with the given ID from the set and its
// modifier from the aggregator. Removing an absent condition is a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	if _, ok := s.conditions[id]; !ok {
		return
	}
	delete(s.conditions, id)
	s.agg.RemoveModifier(ModifierSource(id))
}

// Clear removes every condition.
func (s *ActiveSet) Clear() {
	for _, id := range s.IDs() {
		s.Remove(id)
	}
}

// Tick decrements the DurationRemaining of all "rounds"-type conditions by 1.
// Conditions that reach 0 are removed together with their modifier and their
// IDs returned, sorted. Permanent conditions are not affected.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for _, id := range s.IDs() {
		ac := s.conditions[id]
		if ac.Def.DurationType != DurationRounds || ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			s.Remove(id)
		}
	}
	return expired
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Stacks returns the current stack count for condition id, or 0 if not present.
func (s *ActiveSet) Stacks(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.Stacks
	}
	return 0
}

// IDs returns the active condition IDs, sorted.
func (s *ActiveSet) IDs() []string {
	out := make([]string, 0, len(s.conditions))
	for id := range s.conditions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// All returns a slice of pointers to the active conditions, sorted by ID.
// The pointed-to values are shared; callers must not modify them.
func (s *ActiveSet) All() []*ActiveCondition {
	out := make([]*ActiveCondition, 0, len(s.conditions))
	for _, id := range s.IDs() {
		out = append(out, s.conditions[id])
	}
	return out
}

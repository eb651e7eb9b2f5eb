package condition

import "github.com/cory-johannsen/battlecore/internal/game/attribute"

// Deltas returns def's per-stack modifiers multiplied by stacks.
//
// Postcondition: the result is a fresh Set; len(result) == len(def.Modifiers).
func Deltas(def *ConditionDef, stacks int) attribute.Set {
	out := make(attribute.Set, len(def.Modifiers))
	for k, v := range def.Modifiers {
		out[k] = v * float64(stacks)
	}
	return out
}

// IsActionRestricted reports whether the given action type string is blocked
// by any active condition's RestrictActions list.
func IsActionRestricted(s *ActiveSet, actionType string) bool {
	if s == nil {
		return false
	}
	for _, ac := range s.conditions {
		for _, r := range ac.Def.RestrictActions {
			if r == actionType {
				return true
			}
		}
	}
	return false
}

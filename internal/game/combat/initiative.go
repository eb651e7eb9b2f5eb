package combat

import (
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
)

// TurnOrder returns the living members of cs sorted by final initiative,
// highest first. Ties keep their input order.
//
// Postcondition: the input slice is not modified.
func TurnOrder[C character.Combatant](cs []C) []C {
	out := make([]C, 0, len(cs))
	for _, c := range cs {
		if !c.IsDefeated() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attributes().Get(attribute.Initiative) > out[j].Attributes().Get(attribute.Initiative)
	})
	return out
}

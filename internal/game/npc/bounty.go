package npc

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// GoldDrop defines the range of gold an enemy carries when spawned.
type GoldDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Validate checks that the range is non-negative and ordered.
//
// Postcondition: Returns nil iff 0 <= Min <= Max.
func (g *GoldDrop) Validate() error {
	if g.Min < 0 {
		return fmt.Errorf("gold: min must be >= 0, got %d", g.Min)
	}
	if g.Min > g.Max {
		return fmt.Errorf("gold: min (%d) must be <= max (%d)", g.Min, g.Max)
	}
	return nil
}

// Roll returns an amount in [Min, Max] drawn with engine. A nil drop yields 0.
//
// Precondition: g must have passed Validate; engine must be non-nil when g is.
func (g *GoldDrop) Roll(engine *dice.Engine) int {
	if g == nil || g.Max <= 0 {
		return 0
	}
	spread := g.Max - g.Min
	if spread == 0 {
		return g.Min
	}
	return g.Min + engine.Intn(spread+1)
}

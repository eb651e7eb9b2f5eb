// Package dice parses dice notation and produces randomized rolls.
//
// A dice formula is an optional count expression, a literal "d", a side
// count, and an optional trailing modifier expression, e.g.
// "(strengthMod+2)d6+strengthMod". Count and modifier are evaluated by the
// formula package. Formulas without a dice term are evaluated as plain
// arithmetic and report zero dice.
package dice

import (
	"fmt"
	"strings"
)

// Result holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total == sum(Dice) + Modifier, or 0 with Err set.
type Result struct {
	Formula  string // original formula string, e.g. "2d6+3"
	Total    int
	Dice     []int // individual die results before modifier
	Sides    int   // faces per die; 0 when no dice were rolled
	Modifier int   // evaluated trailing modifier (may be negative)
	Details  string
	Err      error
}

// DiceSum returns the sum of the individual dice.
func (r Result) DiceSum() int {
	sum := 0
	for _, d := range r.Dice {
		sum += d
	}
	return sum
}

// CriticalTotal returns the total with the dice portion doubled and the
// modifier added once: 2*sum(Dice) + Modifier.
//
// Postcondition: for a formula without dice, equals Total.
func (r Result) CriticalTotal() int {
	if r.Err != nil {
		return 0
	}
	return 2*r.DiceSum() + r.Modifier
}

// Natural returns the first die rolled, or 0 when no dice were rolled.
func (r Result) Natural() int {
	if len(r.Dice) == 0 {
		return 0
	}
	return r.Dice[0]
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s → error: %v", r.Formula, r.Err)
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", strings.TrimSpace(r.Formula), diceStr, modStr, r.Total)
}

// PairResult is the outcome of rolling a formula twice and keeping one.
type PairResult struct {
	Chosen Result
	First  Result
	Second Result
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

package dice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/formula"
)

const (
	// MaxDice bounds the number of dice a single term may roll.
	MaxDice = 100
	// MaxSides bounds the faces of a single die.
	MaxSides = 1000
)

// Engine rolls dice formulas using an injected Source and Evaluator.
// All rolls are logged at debug level with expression, dice values, modifier, and total.
type Engine struct {
	src    Source
	eval   *formula.Evaluator
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: src must be non-nil. A nil eval gets a fresh Evaluator; a nil logger discards output.
// Postcondition: Returns a non-nil Engine.
func NewEngine(src Source, eval *formula.Evaluator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eval == nil {
		eval = formula.NewEvaluator(logger)
	}
	return &Engine{src: src, eval: eval, logger: logger}
}

// Evaluator returns the evaluator used for non-dice sub-expressions.
func (e *Engine) Evaluator() *formula.Evaluator { return e.eval }

// Roll evaluates f against vars.
//
// Postcondition: never panics on malformed input; on error the Result has
// Total == 0 and Err set.
func (e *Engine) Roll(f string, vars formula.Vars) Result {
	res, err := e.roll(f, vars)
	if err != nil {
		e.logger.Warn("dice roll failed",
			zap.String("expression", f),
			zap.Error(err),
		)
		return Result{Formula: f, Details: err.Error(), Err: err}
	}
	res.Details = res.String()
	e.logger.Debug("dice roll",
		zap.String("expression", res.Formula),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total),
	)
	return res
}

// RollWithAdvantage rolls f twice and keeps the higher total.
func (e *Engine) RollWithAdvantage(f string, vars formula.Vars) PairResult {
	a, b := e.Roll(f, vars), e.Roll(f, vars)
	chosen := a
	if b.Total > a.Total {
		chosen = b
	}
	return PairResult{Chosen: chosen, First: a, Second: b}
}

// RollWithDisadvantage rolls f twice and keeps the lower total.
func (e *Engine) RollWithDisadvantage(f string, vars formula.Vars) PairResult {
	a, b := e.Roll(f, vars), e.Roll(f, vars)
	chosen := a
	if b.Total < a.Total {
		chosen = b
	}
	return PairResult{Chosen: chosen, First: a, Second: b}
}

// D20 rolls a single twenty-sided die.
//
// Postcondition: returns a value in [1, 20].
func (e *Engine) D20() int {
	return e.src.Intn(20) + 1
}

// Intn draws a uniform value in [0, n) straight from the source, for ranges
// wider than a single die allows.
//
// Precondition: n > 0.
func (e *Engine) Intn(n int) int {
	v := e.src.Intn(n)
	e.logger.Debug("dice draw", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Chance reports true with probability p, clamped to [0, 1].
func (e *Engine) Chance(p float64) bool {
	const resolution = 1_000_000
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return e.src.Intn(resolution) < int(p*resolution)
}

// HasDice reports whether f contains a dice term.
func HasDice(f string) bool {
	toks, err := formula.Tokenize(f)
	if err != nil {
		return false
	}
	_, _, ok := findDiceTerm(toks)
	return ok
}

func (e *Engine) roll(f string, vars formula.Vars) (Result, error) {
	toks, err := formula.Tokenize(f)
	if err != nil {
		return Result{}, err
	}
	idx, sides, ok := findDiceTerm(toks)
	if !ok {
		v, err := e.eval.EvaluateErr(f, vars)
		if err != nil {
			return Result{}, err
		}
		n := int(math.Floor(v))
		return Result{Formula: f, Total: n, Modifier: n}, nil
	}
	if sides < 1 || sides > MaxSides {
		return Result{}, fmt.Errorf("dice: invalid die sides %d in %q", sides, f)
	}
	if open, closing, grouped := enclosingGroup(toks, idx); grouped {
		if open != 0 || !leadsTerm(toks[closing+1].Kind) {
			return Result{}, fmt.Errorf("dice: grouped dice term in %q must lead the formula", f)
		}
		inner := f[:toks[open].Pos] + f[toks[open].Pos+1:toks[closing].Pos] + f[toks[closing].Pos+1:]
		res, err := e.roll(inner, vars)
		res.Formula = f
		return res, err
	}

	dieTok := toks[idx]
	countSrc := strings.TrimSpace(f[:dieTok.Pos])
	restSrc := strings.TrimSpace(f[dieTok.Pos+len(dieTok.Text):])

	count := 1
	if countSrc != "" {
		v, err := e.eval.EvaluateErr(countSrc, vars)
		if err != nil {
			return Result{}, fmt.Errorf("dice: count %q: %w", countSrc, err)
		}
		count = max(int(math.Floor(v)), 1)
	}
	if count > MaxDice {
		return Result{}, fmt.Errorf("dice: die count %d exceeds limit %d in %q", count, MaxDice, f)
	}

	rolled := make([]int, count)
	for i := range rolled {
		rolled[i] = e.src.Intn(sides) + 1
	}
	res := Result{Formula: f, Dice: rolled, Sides: sides}

	if restSrc != "" {
		mod, extra, err := e.modifier(restSrc, vars)
		if err != nil {
			return Result{}, err
		}
		res.Modifier = mod
		res.Dice = append(res.Dice, extra...)
	}
	res.Total = res.DiceSum() + res.Modifier
	return res, nil
}

// modifier evaluates the text after a dice term. Further additive dice terms
// ("+1d4") are rolled and their dice returned alongside the flat modifier.
func (e *Engine) modifier(src string, vars formula.Vars) (int, []int, error) {
	if !HasDice(src) {
		v, err := e.eval.EvaluateErr(src, vars)
		if err != nil {
			return 0, nil, fmt.Errorf("dice: modifier %q: %w", src, err)
		}
		return int(math.Floor(v)), nil, nil
	}
	rest, ok := strings.CutPrefix(src, "+")
	if !ok {
		return 0, nil, errors.New("dice: only added dice terms may follow the first term")
	}
	sub, err := e.roll(rest, vars)
	if err != nil {
		return 0, nil, err
	}
	return sub.Modifier, sub.Dice, nil
}

// enclosingGroup returns the outermost parenthesised group around toks[idx]
// as the indices of its '(' and matching ')'.
func enclosingGroup(toks []formula.Token, idx int) (int, int, bool) {
	var opens []int
	for i := 0; i < idx; i++ {
		switch toks[i].Kind {
		case formula.TokenLParen:
			opens = append(opens, i)
		case formula.TokenRParen:
			if len(opens) > 0 {
				opens = opens[:len(opens)-1]
			}
		}
	}
	if len(opens) == 0 {
		return 0, 0, false
	}
	open := opens[0]
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case formula.TokenLParen:
			depth++
		case formula.TokenRParen:
			depth--
			if depth == 0 {
				return open, i, true
			}
		}
	}
	return 0, 0, false
}

// leadsTerm reports whether a group followed by k can drop its parentheses
// without changing the value.
func leadsTerm(k formula.TokenKind) bool {
	return k == formula.TokenEOF || k == formula.TokenPlus || k == formula.TokenMinus
}

// findDiceTerm returns the index of the first "d<digits>" token and its side
// count.
func findDiceTerm(toks []formula.Token) (int, int, bool) {
	for i, t := range toks {
		if t.Kind != formula.TokenIdent || len(t.Text) < 2 {
			continue
		}
		if t.Text[0] != 'd' && t.Text[0] != 'D' {
			continue
		}
		digits := t.Text[1:]
		if strings.TrimLeft(digits, "0123456789") != "" {
			continue
		}
		sides, err := strconv.Atoi(digits)
		if err != nil {
			return i, 0, true
		}
		return i, sides, true
	}
	return 0, 0, false
}

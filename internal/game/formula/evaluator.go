package formula

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// Evaluator evaluates formulas against variables, caching parsed trees.
//
// Evaluation never fails from the caller's point of view: any lexical, syntax,
// or arithmetic error yields 0 and a Warn entry on the diagnostics logger.
// Evaluator is safe for concurrent use.
type Evaluator struct {
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cached
}

// maxCached bounds the parse cache; formulas past the bound are reparsed.
const maxCached = 4096

type cached struct {
	node Node
	err  error
}

// NewEvaluator creates an Evaluator that reports diagnostics to logger. A nil
// logger discards diagnostics.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger, cache: make(map[string]cached)}
}

// Evaluate computes src against vars.
//
// Postcondition: returns a finite value; returns 0 when src is malformed, uses
// a disallowed token or function, or evaluates to a non-finite number.
func (e *Evaluator) Evaluate(src string, vars Vars) float64 {
	v, err := e.EvaluateErr(src, vars)
	if err != nil {
		e.logger.Warn("formula rejected",
			zap.String("formula", src),
			zap.Error(err),
		)
		return 0
	}
	return v
}

// EvaluateErr is Evaluate without the diagnostic: the error is returned to the
// caller, which becomes responsible for reporting it. The value is 0 whenever
// err is non-nil.
func (e *Evaluator) EvaluateErr(src string, vars Vars) (float64, error) {
	n, err := e.compile(src)
	if err != nil {
		return 0, err
	}
	return EvalNode(n, vars)
}

// Check reports whether src compiles. Content loaders use it to reject bad
// formulas before a battle starts.
func (e *Evaluator) Check(src string) error {
	_, err := e.compile(src)
	return err
}

func (e *Evaluator) compile(src string) (Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.cache[src]; ok {
		return c.node, c.err
	}
	n, err := Parse(src)
	if len(e.cache) < maxCached {
		e.cache[src] = cached{node: n, err: err}
	}
	return n, err
}

// EvalNode walks a parsed tree.
//
// Postcondition: the value is finite whenever err is nil.
func EvalNode(n Node, vars Vars) (float64, error) {
	v, err := n.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}

type formulaError string

func (e formulaError) Error() string { return string(e) }

const errNonFinite = formulaError("formula: result is not a finite number")

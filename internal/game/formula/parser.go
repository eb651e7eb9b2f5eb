package formula

import (
	"fmt"
	"math"
	"strings"
)

// Node is one node of a parsed formula tree.
type Node interface {
	eval(vars Vars) (float64, error)
	String() string
}

type numberNode struct{ value float64 }

func (n numberNode) eval(Vars) (float64, error) { return n.value, nil }
func (n numberNode) String() string           { return fmt.Sprintf("%g", n.value) }

type varNode struct{ name string }

func (n varNode) eval(vars Vars) (float64, error) {
	if vars == nil {
		return 0, nil
	}
	v, ok := vars.Lookup(n.name)
	if !ok {
		return 0, nil
	}
	return v, nil
}

func (n varNode) String() string { return n.name }

type negNode struct{ operand Node }

func (n negNode) eval(vars Vars) (float64, error) {
	v, err := n.operand.eval(vars)
	return -v, err
}

func (n negNode) String() string { return "(-" + n.operand.String() + ")" }

type binaryNode struct {
	op          TokenKind
	left, right Node
}

func (n binaryNode) eval(vars Vars) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case TokenPlus:
		return l + r, nil
	case TokenMinus:
		return l - r, nil
	case TokenStar:
		return l * r, nil
	case TokenSlash:
		if r == 0 {
			return 0, fmt.Errorf("formula: division by zero in %s", n)
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("formula: unknown operator %s", n.op)
}

func (n binaryNode) String() string {
	return "(" + n.left.String() + " " + strings.Trim(n.op.String(), "'") + " " + n.right.String() + ")"
}

type callNode struct {
	fn   *function
	args []Node
}

func (n callNode) eval(vars Vars) (float64, error) {
	vals := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return n.fn.apply(vals)
}

func (n callNode) String() string {
	parts := make([]string, len(n.args))
	for i, a := range n.args {
		parts[i] = a.String()
	}
	return n.fn.name + "(" + strings.Join(parts, ", ") + ")"
}

// function is one entry of the fixed function whitelist.
type function struct {
	name    string
	minArgs int
	maxArgs int // 0 = unbounded
	apply   func(args []float64) (float64, error)
}

func unary(name string, f func(float64) float64) *function {
	return &function{name: name, minArgs: 1, maxArgs: 1, apply: func(a []float64) (float64, error) {
		return f(a[0]), nil
	}}
}

// functions is the complete set of callable functions. Nothing else is reachable
// from formula text.
var functions = map[string]*function{
	"floor": unary("floor", math.Floor),
	"ceil":  unary("ceil", math.Ceil),
	"round": unary("round", math.Round),
	"abs":   unary("abs", math.Abs),
	"sqrt": {name: "sqrt", minArgs: 1, maxArgs: 1, apply: func(a []float64) (float64, error) {
		if a[0] < 0 {
			return 0, fmt.Errorf("formula: sqrt of negative value %g", a[0])
		}
		return math.Sqrt(a[0]), nil
	}},
	"min": {name: "min", minArgs: 1, apply: func(a []float64) (float64, error) {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m, nil
	}},
	"max": {name: "max", minArgs: 1, apply: func(a []float64) (float64, error) {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m, nil
	}},
}

// maxDepth bounds parenthesis and unary nesting.
const maxDepth = 64

type parser struct {
	toks  []Token
	pos   int
	depth int
}

// Parse compiles src into an expression tree.
//
// Postcondition: returns a non-nil Node, or an error describing the first
// lexical or syntactic problem.
func Parse(src string) (Node, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens compiles an already tokenized formula. A missing trailing
// TokenEOF is tolerated.
func ParseTokens(toks []Token) (Node, error) {
	if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEOF {
		end := 0
		if len(toks) > 0 {
			last := toks[len(toks)-1]
			end = last.Pos + len(last.Text)
		}
		toks = append(append([]Token(nil), toks...), Token{Kind: TokenEOF, Pos: end})
	}
	p := &parser{toks: toks}
	if p.peek().Kind == TokenEOF {
		return nil, fmt.Errorf("formula: empty expression")
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != TokenEOF {
		return nil, fmt.Errorf("formula: unexpected %s %q at %d", t.Kind, t.Text, t.Pos)
	}
	return n, nil
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek().Kind
		if k != TokenPlus && k != TokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek().Kind
		if k != TokenStar && k != TokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: k, left: left, right: right}
	}
}

func (p *parser) unary() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, fmt.Errorf("formula: nesting deeper than %d", maxDepth)
	}
	switch p.peek().Kind {
	case TokenPlus:
		p.next()
		return p.unary()
	case TokenMinus:
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.Kind {
	case TokenNumber:
		return numberNode{value: t.Value}, nil
	case TokenIdent:
		if p.peek().Kind == TokenLParen {
			return p.call(t)
		}
		return varNode{name: CanonicalName(t.Text)}, nil
	case TokenLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.Kind != TokenRParen {
			return nil, fmt.Errorf("formula: expected ')' at %d, got %s", c.Pos, c.Kind)
		}
		return n, nil
	}
	return nil, fmt.Errorf("formula: unexpected %s %q at %d", t.Kind, t.Text, t.Pos)
}

func (p *parser) call(name Token) (Node, error) {
	fn, ok := functions[strings.ToLower(name.Text)]
	if !ok {
		return nil, fmt.Errorf("formula: unknown function %q at %d", name.Text, name.Pos)
	}
	p.next() // '('
	var args []Node
	if p.peek().Kind != TokenRParen {
		for {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().Kind != TokenComma {
				break
			}
			p.next()
		}
	}
	if c := p.next(); c.Kind != TokenRParen {
		return nil, fmt.Errorf("formula: expected ')' closing %s at %d, got %s", fn.name, c.Pos, c.Kind)
	}
	if len(args) < fn.minArgs || (fn.maxArgs > 0 && len(args) > fn.maxArgs) {
		return nil, fmt.Errorf("formula: %s takes %s, got %d", fn.name, arity(fn), len(args))
	}
	return callNode{fn: fn, args: args}, nil
}

func arity(fn *function) string {
	if fn.maxArgs == 0 {
		return fmt.Sprintf("at least %d argument(s)", fn.minArgs)
	}
	if fn.minArgs == fn.maxArgs {
		return fmt.Sprintf("%d argument(s)", fn.minArgs)
	}
	return fmt.Sprintf("%d-%d arguments", fn.minArgs, fn.maxArgs)
}

// Package formula parses and evaluates the arithmetic mini-language used by
// derived stats, damage formulas, and the non-dice parts of dice expressions.
//
// Formulas are compiled into a small expression tree and evaluated by walking
// it. Only numbers, variables, the four arithmetic operators, parentheses, and
// a fixed set of functions exist in the tree, so no formula text can reach
// anything outside the supplied variables.
package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenIdent
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLParen
	TokenRParen
	TokenComma
)

// String returns a human-readable token kind label.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of formula"
	case TokenNumber:
		return "number"
	case TokenIdent:
		return "identifier"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a formula.
type Token struct {
	Kind TokenKind
	// Text is the raw source text. Identifiers keep their original case.
	Text string
	// Value holds the parsed value of a TokenNumber.
	Value float64
	// Pos is the byte offset of the token in the source.
	Pos int
}

// maxFormulaLen bounds the work a single formula can cause.
const maxFormulaLen = 512

// Tokenize splits src into tokens, terminated by a TokenEOF token.
// Whitespace is skipped. Any character outside the grammar is an error.
//
// Postcondition: on success the last token has Kind == TokenEOF.
func Tokenize(src string) ([]Token, error) {
	if len(src) > maxFormulaLen {
		return nil, fmt.Errorf("formula: length %d exceeds limit %d", len(src), maxFormulaLen)
	}
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("formula: invalid number %q at %d", text, start)
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: text, Value: v, Pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokenIdent, Text: src[start:i], Pos: start})
		default:
			kind, ok := punctuation[c]
			if !ok {
				return nil, fmt.Errorf("formula: disallowed character %q at %d", c, i)
			}
			toks = append(toks, Token{Kind: kind, Text: string(c), Pos: i})
			i++
		}
	}
	toks = append(toks, Token{Kind: TokenEOF, Pos: len(src)})
	return toks, nil
}

var punctuation = map[byte]TokenKind{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// Join renders tokens back into source text, separated by nothing.
// It is used by the dice engine to evaluate token sub-ranges.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.Kind == TokenEOF {
			break
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

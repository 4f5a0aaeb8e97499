// Package parser turns calculator-notation strings into symbolic expressions.
//
// The grammar is deliberately forgiving: implicit multiplication (2x, 2(x+1),
// x sin(x)), caret exponentiation, and decimal literals parsed exactly into
// rationals. Anything that is not a known function name becomes a free
// symbol.
package parser

import (
	"math/big"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/solvekit/go-equation-api/symbolic"
)

// ErrSyntax marks malformed input.
var ErrSyntax = errors.New("invalid syntax")

// ErrDivisionByZero is returned for a literal zero divisor at parse time.
var ErrDivisionByZero = errors.New("division by zero")

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse parses a single calculator-notation expression and returns it in
// simplified form.
func Parse(input string) (symbolic.Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errors.Wrapf(ErrSyntax, "unexpected %q at offset %d", t.text, t.pos)
	}
	return e.Simplify(), nil
}

func lex(input string) ([]token, error) {
	runes := []rune(input)
	toks := make([]token, 0, len(runes))
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			text := string(runes[start:i])
			if dots > 1 || text == "." {
				return nil, errors.Wrapf(ErrSyntax, "malformed number %q at offset %d", text, start)
			}
			toks = append(toks, token{kind: tokNum, text: text, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			kind := tokEOF
			switch r {
			case '+':
				kind = tokPlus
			case '-':
				kind = tokMinus
			case '*':
				kind = tokStar
			case '/':
				kind = tokSlash
			case '^':
				kind = tokCaret
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			default:
				return nil, errors.Wrapf(ErrSyntax, "unexpected character %q at offset %d", string(r), i)
			}
			toks = append(toks, token{kind: kind, text: string(r), pos: i})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, errors.Wrapf(ErrSyntax, "expected %s at offset %d", what, t.pos)
	}
	return t, nil
}

// parseSum handles + and -.
func (p *parser) parseSum() (symbolic.Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			left = symbolic.AddOf(left, right)
		case tokMinus:
			p.next()
			right, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			left = symbolic.AddOf(left, symbolic.MulOf(symbolic.Int(-1), right))
		default:
			return left, nil
		}
	}
}

// parseProduct handles *, / and implicit multiplication: a number, identifier
// or parenthesis directly following a factor multiplies it.
func (p *parser) parseProduct() (symbolic.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		case tokSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if n, ok := right.(*symbolic.Num); ok && n.IsZero() {
				return nil, errors.WithStack(ErrDivisionByZero)
			}
			left = symbolic.MulOf(left, symbolic.PowOf(right, symbolic.Int(-1)))
		case tokNum, tokIdent, tokLParen:
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (symbolic.Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symbolic.MulOf(symbolic.Int(-1), e), nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower handles right-associative ^ with optionally signed exponents.
func (p *parser) parsePower() (symbolic.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return symbolic.PowOf(base, exp), nil
}

func (p *parser) parseAtom() (symbolic.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, errors.Wrapf(ErrSyntax, "malformed number %q at offset %d", t.text, t.pos)
		}
		return symbolic.FromRat(r), nil
	case tokIdent:
		name := t.text
		if name == "log" {
			// Calculator convention: log is the natural logarithm.
			name = "ln"
		}
		if symbolic.IsKnownFunc(name) && p.peek().kind == tokLParen {
			p.next()
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, "')'"); err != nil {
				return nil, err
			}
			return symbolic.Fn(name, arg), nil
		}
		return symbolic.S(t.text), nil
	case tokLParen:
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokEOF:
		return nil, errors.Wrapf(ErrSyntax, "unexpected end of input at offset %d", t.pos)
	}
	return nil, errors.Wrapf(ErrSyntax, "unexpected %q at offset %d", t.text, t.pos)
}

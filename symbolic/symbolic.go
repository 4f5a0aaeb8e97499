// Package symbolic is a small deterministic symbolic-math kernel: exact
// rational arithmetic on math/big.Rat, rule-based simplification with stable
// term ordering, and real-root solving for the equation service.
//
// The kernel is deliberately free of third-party dependencies apart from
// error wrapping; its output strings are part of the service contract and
// must be reproducible run to run.
package symbolic

import (
	"math/big"
	"strconv"
)

// Expr is a symbolic expression node. Implementations are immutable;
// Simplify returns a new (or the same) node and never mutates in place.
type Expr interface {
	// Simplify returns a simplified, canonically ordered form.
	Simplify() Expr

	// String renders the expression in calculator notation.
	String() string

	// Sub substitutes value for every occurrence of the named symbol.
	Sub(name string, value Expr) Expr

	// Eval evaluates the expression to a number when it contains no free
	// symbols and every operation is defined over the reals.
	Eval() (*Num, bool)

	// Equal reports structural equality.
	Equal(other Expr) bool
}

// ============================================================
// Num — exact rational, with an approximate mode for numeric roots
// ============================================================

// Num is a rational constant. Exact values print as integers or fractions;
// approximate values (produced by numeric root finding) print as decimals.
type Num struct {
	val    *big.Rat
	approx bool
}

// Int returns an exact integer constant.
func Int(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// Rat returns an exact fraction p/q. It panics when q is zero; constructing
// a rational with a zero denominator is a programming error, not an input
// error.
func Rat(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// FromRat wraps a big.Rat as an exact constant. The value is copied.
func FromRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

// Approx returns an approximate constant, rendered as a decimal.
func Approx(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		r = new(big.Rat)
	}
	return &Num{val: r, approx: true}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

func (n *Num) String() string {
	if n.approx {
		f, _ := n.val.Float64()
		return strconv.FormatFloat(f, 'g', 10, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) Sign() int      { return n.val.Sign() }
func (n *Num) IsZero() bool   { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool    { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInt() bool    { return n.val.IsInt() }
func (n *Num) IsApprox() bool { return n.approx }
func (n *Num) Rat() *big.Rat  { return new(big.Rat).Set(n.val) }

func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

// Int64 returns the integer value of an integral Num. Only meaningful when
// IsInt reports true.
func (n *Num) Int64() int64 { return n.val.Num().Int64() }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func numFrom(r *big.Rat, approx bool) *Num { return &Num{val: r, approx: approx} }

func numAdd(a, b *Num) *Num {
	return numFrom(new(big.Rat).Add(a.val, b.val), a.approx || b.approx)
}

func numSub(a, b *Num) *Num {
	return numFrom(new(big.Rat).Sub(a.val, b.val), a.approx || b.approx)
}

func numMul(a, b *Num) *Num {
	return numFrom(new(big.Rat).Mul(a.val, b.val), a.approx || b.approx)
}

func numNeg(a *Num) *Num { return numFrom(new(big.Rat).Neg(a.val), a.approx) }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return numFrom(new(big.Rat).Inv(a.val), a.approx)
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return numFrom(r, a.approx)
}

// ============================================================
// Sym — free symbolic variable
// ============================================================

type Sym struct{ name string }

// S returns the symbol with the given name.
func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) Name() string       { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}

func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

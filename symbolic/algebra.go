package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

// AddOf returns the simplified sum of the given terms.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Terms returns the summands of an already-simplified sum.
func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// Collect like terms: each non-numeric term is split into a rational
	// coefficient and a remainder, keyed by the remainder's rendering.
	constant := Int(0)
	coeffs := map[string]*Num{}
	parts := map[string]Expr{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			coeffs[key] = coeff
			parts[key] = rest
		} else {
			coeffs[key] = numAdd(coeffs[key], coeff)
		}
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessTerm(parts[keys[i]], parts[keys[j]])
	})

	result := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		c := coeffs[k]
		switch {
		case c.IsZero():
		case c.IsOne():
			result = append(result, parts[k])
		default:
			result = append(result, MulOf(c, parts[k]))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}

	switch len(result) {
	case 0:
		return Int(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if rendersNegative(t) {
			sb.WriteString(" - ")
			sb.WriteString(renderNegated(t))
		} else {
			sb.WriteString(" + ")
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

func (a *Add) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(name, value)
	}
	return AddOf(out...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := Int(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// splitCoeff separates the leading rational coefficient of a term from its
// symbolic remainder: 2*x*y becomes (2, x*y), x becomes (1, x).
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) == 0 {
		return Int(1), e
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return Int(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return n, rest[0]
	}
	return n, &Mul{factors: append([]Expr{}, rest...)}
}

// lessTerm orders summands for display: powers of the same base from highest
// to lowest, otherwise lexicographic by rendering.
func lessTerm(a, b Expr) bool {
	ka, ea := termSortKey(a)
	kb, eb := termSortKey(b)
	if ka != kb {
		return ka < kb
	}
	return ea > eb
}

func termSortKey(e Expr) (string, int64) {
	switch v := e.(type) {
	case *Sym:
		return v.name, 1
	case *Pow:
		if s, ok := v.base.(*Sym); ok {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInt() {
				return s.name, n.Int64()
			}
		}
	}
	return e.String(), 0
}

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

// MulOf returns the simplified product of the given factors.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Factors returns the factors of an already-simplified product.
func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := Int(1)
	// Group factors by base so x*x becomes x^2 and x*x^-1 cancels.
	order := []string{}
	bases := map[string]Expr{}
	exps := map[string]*Num{}
	loose := []Expr{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := splitPow(f)
		if exp == nil {
			loose = append(loose, f)
			continue
		}
		key := base.String()
		if _, seen := exps[key]; !seen {
			order = append(order, key)
			bases[key] = base
			exps[key] = exp
		} else {
			exps[key] = numAdd(exps[key], exp)
		}
	}
	if coeff.IsZero() {
		return Int(0)
	}

	others := loose
	for _, key := range order {
		exp := exps[key]
		if exp.IsZero() {
			continue
		}
		var rebuilt Expr
		if exp.IsOne() {
			rebuilt = bases[key]
		} else {
			rebuilt = PowOf(bases[key], exp)
		}
		if n, ok := rebuilt.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, rebuilt)
	}

	if len(others) == 0 {
		return coeff
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i].String() < others[j].String()
	})

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// splitPow views a factor as base^exponent with a rational exponent.
// Factors with symbolic exponents are not combinable and return nil.
func splitPow(f Expr) (Expr, *Num) {
	if p, ok := f.(*Pow); ok {
		if n, ok2 := p.exp.(*Num); ok2 {
			return p.base, n
		}
		return nil, nil
	}
	return f, Int(1)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}

	// Negative rational exponents render as a division.
	var num, den []Expr
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if n, ok2 := p.exp.(*Num); ok2 && n.Sign() < 0 {
				e := numNeg(n)
				if e.IsOne() {
					den = append(den, p.base)
				} else {
					den = append(den, &Pow{base: p.base, exp: e})
				}
				continue
			}
		}
		num = append(num, f)
	}

	numStr := renderFactors(num)
	if len(den) == 0 {
		return numStr
	}
	if len(den) == 1 && !compositeFactor(den[0]) {
		return numStr + "/" + den[0].String()
	}
	return numStr + "/(" + renderFactors(den) + ")"
}

func renderFactors(factors []Expr) string {
	if len(factors) == 0 {
		return "1"
	}
	// A leading -1 coefficient renders as a bare sign.
	if n, ok := factors[0].(*Num); ok && n.IsNegOne() && len(factors) > 1 {
		return "-" + renderFactors(factors[1:])
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if compositeFactor(f) {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func compositeFactor(f Expr) bool {
	switch v := f.(type) {
	case *Add, *Mul:
		return true
	case *Num:
		return v.Sign() < 0
	}
	return false
}

func (m *Mul) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(name, value)
	}
	return MulOf(out...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := Int(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func rendersNegative(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.Sign() < 0
	case *Mul:
		if len(v.factors) > 0 {
			if n, ok := v.factors[0].(*Num); ok {
				return n.Sign() < 0
			}
		}
	}
	return false
}

func renderNegated(e Expr) string {
	switch v := e.(type) {
	case *Num:
		return numNeg(v).String()
	case *Mul:
		if len(v.factors) > 0 {
			if n, ok := v.factors[0].(*Num); ok && n.Sign() < 0 {
				neg := numNeg(n)
				if neg.IsOne() {
					rest := v.factors[1:]
					if len(rest) == 1 {
						return rest[0].String()
					}
					return (&Mul{factors: rest}).String()
				}
				return (&Mul{factors: append([]Expr{neg}, v.factors[1:]...)}).String()
			}
		}
	}
	return e.String()
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			if bn, ok2 := base.(*Num); ok2 && bn.IsZero() {
				// 0^0 is indeterminate, keep it opaque.
				return &Pow{base: base, exp: exp}
			}
			return Int(1)
		}
		if en.IsOne() {
			return base
		}
	}

	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 && en.Sign() < 0 {
			// 0^negative is a division by zero, keep it opaque; Eval fails.
			return &Pow{base: base, exp: exp}
		}
		return Int(0)
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return Int(1)
	}

	// Fold small integer powers of rational bases exactly.
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInt() {
			e := en.Int64()
			if e >= -20 && e <= 20 && !(e < 0 && bn.IsZero()) {
				return numIntPow(bn, e)
			}
		}
	}

	// (b^m)^n folds to b^(m*n) only for integer n; with a fractional outer
	// exponent the fold is wrong for negative bases, e.g. (x^2)^(1/2) != x.
	if inner, ok := base.(*Pow); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInt() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func numIntPow(b *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	result := Int(1)
	for i := int64(0); i < e; i++ {
		result = numMul(result, b)
	}
	if neg {
		return numRecip(result)
	}
	return result
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	if compositePowBase(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	// A bare reciprocal reads better as a division.
	if n, ok := p.exp.(*Num); ok && n.IsNegOne() {
		return "1/" + baseStr
	}
	expStr := p.exp.String()
	if compositePowExp(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func compositePowBase(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.Sign() < 0 || !v.IsInt()
	}
	return false
}

func compositePowExp(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.Sign() < 0 || !v.IsInt()
	case *Sym:
		return false
	}
	return true
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return nil, false
	}
	if e.IsInt() && !e.IsApprox() && !b.IsApprox() {
		n := e.Int64()
		if n >= -64 && n <= 64 {
			if b.IsZero() && n <= 0 {
				return nil, false
			}
			return numIntPow(b, n), true
		}
	}
	return floatPow(b, e)
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

package symbolic

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// FreeVars returns the set of free symbol names appearing in e.
func FreeVars(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectVars(e, out)
	return out
}

// VarNames returns the free symbol names of e in sorted order.
func VarNames(e Expr) []string {
	set := FreeVars(e)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectVars(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectVars(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectVars(f, out)
		}
	case *Pow:
		collectVars(v.base, out)
		collectVars(v.exp, out)
	case *Call:
		collectVars(v.arg, out)
	}
}

func containsVar(e Expr, name string) bool {
	_, ok := FreeVars(e)[name]
	return ok
}

// ErrNotPolynomial marks expressions that are not polynomial in the
// requested variable (the variable occurs inside a function argument, an
// exponent, or under a negative power).
var ErrNotPolynomial = errors.New("not a polynomial")

// Coeffs extracts the coefficients of e viewed as a polynomial in name,
// keyed by degree. Coefficients may be symbolic in other variables.
func Coeffs(e Expr, name string) (map[int]Expr, error) {
	out := map[int]Expr{}
	if err := collectCoeffs(e.Simplify(), name, out); err != nil {
		return nil, err
	}
	for deg, c := range out {
		s := c.Simplify()
		if n, ok := s.(*Num); ok && n.IsZero() {
			delete(out, deg)
			continue
		}
		out[deg] = s
	}
	return out, nil
}

func collectCoeffs(e Expr, name string, out map[int]Expr) error {
	switch v := e.(type) {
	case *Num:
		addCoeff(out, 0, v)
	case *Sym:
		if v.name == name {
			addCoeff(out, 1, Int(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Add:
		for _, t := range v.terms {
			if err := collectCoeffs(t, name, out); err != nil {
				return err
			}
		}
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			d, err := monomialDegree(f, name)
			if err != nil {
				return err
			}
			if d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = Int(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = MulOf(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Pow:
		d, err := monomialDegree(v, name)
		if err != nil {
			return err
		}
		if d > 0 {
			addCoeff(out, d, Int(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Call:
		if containsVar(v.arg, name) {
			return errors.Wrapf(ErrNotPolynomial, "%s under %s", name, v.name)
		}
		addCoeff(out, 0, v)
	default:
		return errors.Wrapf(ErrNotPolynomial, "unsupported form %s", e.String())
	}
	return nil
}

// monomialDegree returns the degree of a single factor in name, or an error
// when the factor is not polynomial in name.
func monomialDegree(f Expr, name string) (int, error) {
	switch v := f.(type) {
	case *Sym:
		if v.name == name {
			return 1, nil
		}
		return 0, nil
	case *Pow:
		if containsVar(v.exp, name) {
			return 0, errors.Wrapf(ErrNotPolynomial, "%s in exponent", name)
		}
		if !containsVar(v.base, name) {
			return 0, nil
		}
		s, ok := v.base.(*Sym)
		if !ok || s.name != name {
			return 0, errors.Wrapf(ErrNotPolynomial, "composite base with %s", name)
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInt() || n.Sign() < 0 {
			return 0, errors.Wrapf(ErrNotPolynomial, "non-integer power of %s", name)
		}
		return int(n.Int64()), nil
	case *Call:
		if containsVar(v.arg, name) {
			return 0, errors.Wrapf(ErrNotPolynomial, "%s under %s", name, v.name)
		}
		return 0, nil
	default:
		if containsVar(f, name) {
			return 0, errors.Wrapf(ErrNotPolynomial, "unsupported factor %s", f.String())
		}
		return 0, nil
	}
}

func addCoeff(out map[int]Expr, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val
	}
}

// Expand distributes products over sums and unrolls small integer powers,
// turning (x+1)*(x-1) into x^2 - 1.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		result := Expr(Int(1))
		for _, f := range v.factors {
			result = mulExpand(result, expandExpr(f))
		}
		return result
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInt() {
			exp := n.Int64()
			if exp >= 2 && exp <= 10 {
				switch v.base.(type) {
				case *Add, *Mul:
					base := expandExpr(v.base)
					result := base
					for i := int64(1); i < exp; i++ {
						result = mulExpand(result, base)
					}
					return result
				}
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	}
	return e
}

// mulExpand multiplies two expanded expressions, distributing over sums so
// the product never regroups into a power of a sum.
func mulExpand(a, b Expr) Expr {
	if sum, ok := a.(*Add); ok {
		terms := make([]Expr, len(sum.terms))
		for i, t := range sum.terms {
			terms[i] = mulExpand(t, b)
		}
		return AddOf(terms...)
	}
	if sum, ok := b.(*Add); ok {
		terms := make([]Expr, len(sum.terms))
		for i, t := range sum.terms {
			terms[i] = mulExpand(a, t)
		}
		return AddOf(terms...)
	}
	return MulOf(a, b)
}

// Degree returns the polynomial degree of e in name, or an error when e is
// not polynomial in name.
func Degree(e Expr, name string) (int, error) {
	coeffs, err := Coeffs(e, name)
	if err != nil {
		return 0, err
	}
	max := 0
	for d := range coeffs {
		if d > max {
			max = d
		}
	}
	return max, nil
}

package symbolic

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrComplexRoots is returned when an equation has no real solutions, e.g. a
// quadratic with negative discriminant.
var ErrComplexRoots = errors.New("equation has no real solutions")

// ErrUnsolvable is returned when no strategy applies, e.g. a transcendental
// equation in several variables.
var ErrUnsolvable = errors.New("cannot solve equation")

// Solve returns the real roots of expr == 0 for the named variable.
//
// Polynomials up to degree 2 are solved exactly, keeping symbolic radicals
// and symbolic coefficients. Numeric cubics go through Cardano's method;
// higher degrees and non-polynomial single-variable equations fall back to a
// numeric scan over [-100, 100]. An empty result with a nil error means the
// equation has no solutions in that range.
func Solve(expr Expr, name string) ([]Expr, error) {
	e := Expand(expr.Simplify())

	if !containsVar(e, name) {
		return nil, nil
	}

	coeffs, err := Coeffs(e, name)
	if err != nil {
		if len(FreeVars(e)) == 1 {
			return scanRoots(e, name), nil
		}
		return nil, err
	}

	degree := 0
	for d := range coeffs {
		if d > degree {
			degree = d
		}
	}

	switch degree {
	case 0:
		// The variable cancelled out; a nonzero constant has no roots.
		return nil, nil
	case 1:
		return solveLinear(coeffs), nil
	case 2:
		return solveQuadratic(coeffs)
	case 3:
		if nums, ok := numericCoeffs(coeffs); ok {
			return solveCubic(e, name, nums), nil
		}
	}

	if _, ok := numericCoeffs(coeffs); ok {
		return scanRoots(e, name), nil
	}
	return nil, errors.Wrapf(ErrUnsolvable, "degree %d with symbolic coefficients", degree)
}

func coeffAt(coeffs map[int]Expr, deg int) Expr {
	if c, ok := coeffs[deg]; ok {
		return c
	}
	return Int(0)
}

// numericCoeffs reports whether every coefficient is a plain number.
func numericCoeffs(coeffs map[int]Expr) (map[int]*Num, bool) {
	out := make(map[int]*Num, len(coeffs))
	for d, c := range coeffs {
		n, ok := c.(*Num)
		if !ok {
			return nil, false
		}
		out[d] = n
	}
	return out, true
}

// solveLinear returns the single root of c1*x + c0 == 0. The root is expanded
// so numeric reciprocals distribute over symbolic sums: x + y - 5 solves to
// -y + 5 rather than -(y - 5).
func solveLinear(coeffs map[int]Expr) []Expr {
	c1 := coeffAt(coeffs, 1)
	c0 := coeffAt(coeffs, 0)
	root := Expand(MulOf(Int(-1), c0, PowOf(c1, Int(-1))))
	return []Expr{root}
}

// solveQuadratic returns both roots of c2*x^2 + c1*x + c0 == 0, the +sqrt
// branch first. Numeric coefficients produce exact roots with simplified
// radicals; symbolic coefficients produce quadratic-formula expressions.
func solveQuadratic(coeffs map[int]Expr) ([]Expr, error) {
	a := coeffAt(coeffs, 2)
	b := coeffAt(coeffs, 1)
	c := coeffAt(coeffs, 0)

	an, aok := a.(*Num)
	bn, bok := b.(*Num)
	cn, cok := c.(*Num)
	if !aok || !bok || !cok {
		disc := AddOf(PowOf(b, Int(2)), MulOf(Int(-4), a, c))
		den := PowOf(MulOf(Int(2), a), Int(-1))
		plus := MulOf(AddOf(MulOf(Int(-1), b), Sqrt(disc)), den)
		minus := MulOf(AddOf(MulOf(Int(-1), b), MulOf(Int(-1), Sqrt(disc))), den)
		return []Expr{plus, minus}, nil
	}

	disc := numSub(numMul(bn, bn), numMul(Int(4), numMul(an, cn)))
	if disc.Sign() < 0 {
		return nil, errors.Wrapf(ErrComplexRoots, "discriminant %s", disc.String())
	}

	twoA := numMul(Int(2), an)
	head := numDiv(numNeg(bn), twoA)
	if disc.IsZero() {
		return []Expr{head}, nil
	}

	if disc.IsApprox() {
		d := math.Sqrt(disc.Float64())
		return []Expr{
			Approx(head.Float64() + d/twoA.Float64()),
			Approx(head.Float64() - d/twoA.Float64()),
		}, nil
	}

	radical := Sqrt(disc)
	plus := AddOf(head, MulOf(numRecip(twoA), radical))
	minus := AddOf(head, MulOf(numNeg(numRecip(twoA)), radical))
	return []Expr{plus, minus}, nil
}

// solveCubic finds the real roots of a numeric cubic via Cardano's method,
// polished against the original expression and returned in ascending order.
func solveCubic(e Expr, name string, nums map[int]*Num) []Expr {
	coeff := func(d int) float64 {
		if n, ok := nums[d]; ok {
			return n.Float64()
		}
		return 0
	}
	a, b, c, d := coeff(3), coeff(2), coeff(1), coeff(0)

	// Depressed cubic t^3 + p*t + q via x = t - b/(3a).
	shift := b / (3 * a)
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)

	const eps = 1e-12
	var ts []float64
	disc := -(4*p*p*p + 27*q*q)
	switch {
	case disc > eps:
		// Three distinct real roots, trigonometric form.
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3 * q / (2 * p) * math.Sqrt(-3/p))
		for k := 0; k < 3; k++ {
			ts = append(ts, m*math.Cos(theta/3-2*math.Pi*float64(k)/3))
		}
	case disc < -eps:
		// One real root.
		s := math.Sqrt(q*q/4 + p*p*p/27)
		ts = append(ts, math.Cbrt(-q/2+s)+math.Cbrt(-q/2-s))
	default:
		// Repeated roots.
		if math.Abs(p) <= eps {
			ts = append(ts, 0)
		} else {
			ts = append(ts, 3*q/p, -3*q/(2*p))
		}
	}

	f := evalAt(e, name)
	roots := make([]float64, 0, len(ts))
	for _, t := range ts {
		roots = append(roots, polish(f, t-shift))
	}
	return approxExprs(dedupeSorted(roots))
}

// evalAt binds e to a single-variable float function.
func evalAt(e Expr, name string) func(float64) (float64, bool) {
	return func(x float64) (float64, bool) {
		n, ok := e.Sub(name, Approx(x)).Eval()
		if !ok {
			return 0, false
		}
		v := n.Float64()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
}

const (
	scanLo    = -100.0
	scanHi    = 100.0
	scanSteps = 400
	rootTol   = 1e-9
)

// scanRoots locates real roots of a single-variable equation numerically: a
// uniform grid over [scanLo, scanHi] catches sign changes, bisection narrows
// each bracket, and a Newton step with a central-difference derivative
// polishes the result. Roots come back ascending and deduplicated.
func scanRoots(e Expr, name string) []Expr {
	f := evalAt(e, name)

	var roots []float64
	step := (scanHi - scanLo) / scanSteps
	prevX, prevV := 0.0, 0.0
	prevOK := false
	for i := 0; i <= scanSteps; i++ {
		x := scanLo + float64(i)*step
		v, ok := f(x)
		if !ok {
			prevOK = false
			continue
		}
		// Only exact zeros and sign changes count; an absolute threshold
		// would invent roots for functions that flatten toward zero, like
		// exp(x) on the far negative axis.
		if v == 0 {
			roots = append(roots, x)
			prevX, prevV, prevOK = x, v, ok
			continue
		}
		if prevOK && prevV*v < 0 {
			roots = append(roots, polish(f, bisect(f, prevX, x)))
		}
		prevX, prevV, prevOK = x, v, ok
	}
	return approxExprs(dedupeSorted(roots))
}

func bisect(f func(float64) (float64, bool), lo, hi float64) float64 {
	flo, _ := f(lo)
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		v, ok := f(mid)
		if !ok || math.Abs(v) < rootTol {
			return mid
		}
		if flo*v < 0 {
			hi = mid
		} else {
			lo, flo = mid, v
		}
	}
	return (lo + hi) / 2
}

// polish runs a few Newton iterations using a central-difference derivative.
func polish(f func(float64) (float64, bool), x float64) float64 {
	const h = 1e-7
	best := x
	for i := 0; i < 30; i++ {
		v, ok := f(x)
		if !ok {
			return best
		}
		if math.Abs(v) < rootTol {
			best = x
			break
		}
		fp, ok1 := f(x + h)
		fm, ok2 := f(x - h)
		if !ok1 || !ok2 {
			return best
		}
		d := (fp - fm) / (2 * h)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return best
		}
		next := x - v/d
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return best
		}
		x = next
		best = x
	}
	return best
}

func dedupeSorted(roots []float64) []float64 {
	sort.Float64s(roots)
	out := roots[:0]
	for _, r := range roots {
		if len(out) > 0 && math.Abs(r-out[len(out)-1]) < 1e-6 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func approxExprs(roots []float64) []Expr {
	out := make([]Expr, len(roots))
	for i, r := range roots {
		out[i] = Approx(r)
	}
	return out
}

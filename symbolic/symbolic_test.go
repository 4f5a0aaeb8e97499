package symbolic_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvekit/go-equation-api/symbolic"
)

func TestNumString(t *testing.T) {
	assert.Equal(t, "3", symbolic.Int(3).String())
	assert.Equal(t, "-3", symbolic.Int(-3).String())
	assert.Equal(t, "1/2", symbolic.Rat(1, 2).String())
	assert.Equal(t, "-7/3", symbolic.Rat(7, -3).String())
	assert.Equal(t, "2.5", symbolic.Approx(2.5).String())
	assert.Equal(t, "2", symbolic.Approx(2.0).String())
	assert.Equal(t, "3.316624790", symbolic.Approx(3.3166247903554).String())
}

func TestAddSimplify(t *testing.T) {
	x := symbolic.S("x")

	cases := []struct {
		name string
		in   symbolic.Expr
		want string
	}{
		{"constants fold", symbolic.AddOf(symbolic.Int(2), symbolic.Int(3)), "5"},
		{"like terms collect", symbolic.AddOf(x, x, symbolic.Int(1)), "2*x + 1"},
		{"cancellation", symbolic.AddOf(x, symbolic.MulOf(symbolic.Int(-1), x)), "0"},
		{
			"powers order high to low",
			symbolic.AddOf(symbolic.Int(4), x, symbolic.PowOf(x, symbolic.Int(2))),
			"x^2 + x + 4",
		},
		{
			"negative terms render with minus",
			symbolic.AddOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.MulOf(symbolic.Int(-2), x)),
			"x^2 - 2*x",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.String())
		})
	}
}

func TestMulSimplify(t *testing.T) {
	x := symbolic.S("x")
	y := symbolic.S("y")

	cases := []struct {
		name string
		in   symbolic.Expr
		want string
	}{
		{"constants fold", symbolic.MulOf(symbolic.Int(2), symbolic.Int(3)), "6"},
		{"zero annihilates", symbolic.MulOf(symbolic.Int(0), x), "0"},
		{"repeat becomes power", symbolic.MulOf(x, x), "x^2"},
		{"reciprocal cancels", symbolic.MulOf(x, symbolic.PowOf(x, symbolic.Int(-1))), "1"},
		{"coefficient leads", symbolic.MulOf(y, symbolic.Int(3), x), "3*x*y"},
		{"negative one is a sign", symbolic.MulOf(symbolic.Int(-1), x), "-x"},
		{"negative exponent divides", symbolic.MulOf(x, symbolic.PowOf(y, symbolic.Int(-1))), "x/y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.String())
		})
	}
}

func TestPowSimplify(t *testing.T) {
	x := symbolic.S("x")

	assert.Equal(t, "1", symbolic.PowOf(x, symbolic.Int(0)).String())
	assert.Equal(t, "x", symbolic.PowOf(x, symbolic.Int(1)).String())
	assert.Equal(t, "8", symbolic.PowOf(symbolic.Int(2), symbolic.Int(3)).String())
	assert.Equal(t, "1/4", symbolic.PowOf(symbolic.Int(2), symbolic.Int(-2)).String())
	assert.Equal(t, "x^6", symbolic.PowOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.Int(3)).String())
	assert.Equal(t, "(x + 1)^2", symbolic.PowOf(symbolic.AddOf(x, symbolic.Int(1)), symbolic.Int(2)).String())

	// Fractional outer exponents do not collapse: (x^2)^(1/2) is |x|, not x.
	assert.Equal(t, "(x^2)^(1/2)", symbolic.PowOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.Rat(1, 2)).String())
	assert.Equal(t, "x", symbolic.PowOf(symbolic.PowOf(x, symbolic.Rat(1, 2)), symbolic.Int(2)).String())
}

func TestSqrtSimplify(t *testing.T) {
	assert.Equal(t, "3", symbolic.Sqrt(symbolic.Int(9)).String())
	assert.Equal(t, "2*sqrt(11)", symbolic.Sqrt(symbolic.Int(44)).String())
	assert.Equal(t, "sqrt(11)", symbolic.Sqrt(symbolic.Int(11)).String())
	assert.Equal(t, "0", symbolic.Sqrt(symbolic.Int(0)).String())
	assert.Equal(t, "1/2", symbolic.Sqrt(symbolic.Rat(1, 4)).String())
	// Negative radicands stay opaque rather than guessing a branch.
	assert.Equal(t, "sqrt(-1)", symbolic.Sqrt(symbolic.Int(-1)).String())
}

func TestCallIdentities(t *testing.T) {
	x := symbolic.S("x")

	assert.Equal(t, "0", symbolic.Fn("sin", symbolic.Int(0)).String())
	assert.Equal(t, "1", symbolic.Fn("cos", symbolic.Int(0)).String())
	assert.Equal(t, "0", symbolic.Fn("ln", symbolic.Int(1)).String())
	assert.Equal(t, "x", symbolic.Fn("ln", symbolic.Fn("exp", x)).String())
	assert.Equal(t, "sin(x)", symbolic.Fn("sin", x).String())
	assert.Equal(t, "3", symbolic.Fn("abs", symbolic.Int(-3)).String())
	assert.Equal(t, "-2", symbolic.Fn("floor", symbolic.Rat(-3, 2)).String())
	assert.Equal(t, "-1", symbolic.Fn("ceil", symbolic.Rat(-3, 2)).String())
}

func TestSubAndEval(t *testing.T) {
	x := symbolic.S("x")
	e := symbolic.AddOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.MulOf(symbolic.Int(2), x), symbolic.Int(-10))

	got := e.Sub("x", symbolic.Int(3))
	n, ok := got.Eval()
	require.True(t, ok)
	assert.Equal(t, "5", n.String())

	_, ok = e.Eval()
	assert.False(t, ok, "free variable must not evaluate")

	n, ok = symbolic.Fn("sin", symbolic.Approx(math.Pi/2)).Eval()
	require.True(t, ok)
	assert.InDelta(t, 1.0, n.Float64(), 1e-12)
}

func TestExpand(t *testing.T) {
	x := symbolic.S("x")

	prod := symbolic.MulOf(
		symbolic.AddOf(x, symbolic.Int(1)),
		symbolic.AddOf(x, symbolic.Int(-1)),
	)
	assert.Equal(t, "x^2 - 1", symbolic.Expand(prod).String())

	sq := symbolic.PowOf(symbolic.AddOf(x, symbolic.Int(2)), symbolic.Int(2))
	assert.Equal(t, "x^2 + 4*x + 4", symbolic.Expand(sq).String())
}

func TestCoeffsAndDegree(t *testing.T) {
	x := symbolic.S("x")
	y := symbolic.S("y")

	e := symbolic.AddOf(
		symbolic.MulOf(symbolic.Int(3), symbolic.PowOf(x, symbolic.Int(2))),
		symbolic.MulOf(y, x),
		symbolic.Int(-7),
	)

	coeffs, err := symbolic.Coeffs(e, "x")
	require.NoError(t, err)
	assert.Equal(t, "3", coeffs[2].String())
	assert.Equal(t, "y", coeffs[1].String())
	assert.Equal(t, "-7", coeffs[0].String())

	deg, err := symbolic.Degree(e, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, deg)

	_, err = symbolic.Coeffs(symbolic.Fn("sin", x), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, symbolic.ErrNotPolynomial)

	_, err = symbolic.Coeffs(symbolic.PowOf(symbolic.Int(2), x), "x")
	assert.ErrorIs(t, err, symbolic.ErrNotPolynomial)
}

func TestFreeVars(t *testing.T) {
	x := symbolic.S("x")
	y := symbolic.S("y")
	e := symbolic.AddOf(symbolic.MulOf(x, y), symbolic.Fn("sin", symbolic.S("z")))

	assert.Equal(t, []string{"x", "y", "z"}, symbolic.VarNames(e))
	assert.Empty(t, symbolic.VarNames(symbolic.Int(5)))
}

func solveStrings(t *testing.T, e symbolic.Expr, name string) []string {
	t.Helper()
	roots, err := symbolic.Solve(e, name)
	require.NoError(t, err)
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.String()
	}
	return out
}

func TestSolveLinear(t *testing.T) {
	x := symbolic.S("x")
	y := symbolic.S("y")

	// 2x + 3 = 0
	e := symbolic.AddOf(symbolic.MulOf(symbolic.Int(2), x), symbolic.Int(3))
	assert.Equal(t, []string{"-3/2"}, solveStrings(t, e, "x"))

	// x + y - 5 = 0, solved for x
	e = symbolic.AddOf(x, y, symbolic.Int(-5))
	assert.Equal(t, []string{"-y + 5"}, solveStrings(t, e, "x"))
}

func TestSolveQuadratic(t *testing.T) {
	x := symbolic.S("x")

	// x^2 + 2x - 10 = 0
	e := symbolic.AddOf(
		symbolic.PowOf(x, symbolic.Int(2)),
		symbolic.MulOf(symbolic.Int(2), x),
		symbolic.Int(-10),
	)
	assert.Equal(t, []string{"sqrt(11) - 1", "-sqrt(11) - 1"}, solveStrings(t, e, "x"))

	// x^2 - 4 = 0
	e = symbolic.AddOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.Int(-4))
	assert.Equal(t, []string{"2", "-2"}, solveStrings(t, e, "x"))

	// x^2 - 2x + 1 = 0, double root
	e = symbolic.AddOf(
		symbolic.PowOf(x, symbolic.Int(2)),
		symbolic.MulOf(symbolic.Int(-2), x),
		symbolic.Int(1),
	)
	assert.Equal(t, []string{"1"}, solveStrings(t, e, "x"))

	// x^2 + 1 = 0 has no real roots.
	e = symbolic.AddOf(symbolic.PowOf(x, symbolic.Int(2)), symbolic.Int(1))
	_, err := symbolic.Solve(e, "x")
	assert.ErrorIs(t, err, symbolic.ErrComplexRoots)
}

func TestSolveQuadraticSymbolicCoeffs(t *testing.T) {
	x := symbolic.S("x")
	a := symbolic.S("a")

	// a*x^2 - 1 = 0
	e := symbolic.AddOf(symbolic.MulOf(a, symbolic.PowOf(x, symbolic.Int(2))), symbolic.Int(-1))
	roots, err := symbolic.Solve(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 2)
	for _, r := range roots {
		// Both roots satisfy a*r^2 - 1 == 0 at a = 4.
		v, ok := e.Sub("x", r).Sub("a", symbolic.Int(4)).Eval()
		require.True(t, ok)
		assert.InDelta(t, 0, v.Float64(), 1e-9)
	}
}

func TestSolveCubic(t *testing.T) {
	x := symbolic.S("x")

	// x^3 - 6x^2 + 11x - 6 = 0 has roots 1, 2, 3.
	e := symbolic.AddOf(
		symbolic.PowOf(x, symbolic.Int(3)),
		symbolic.MulOf(symbolic.Int(-6), symbolic.PowOf(x, symbolic.Int(2))),
		symbolic.MulOf(symbolic.Int(11), x),
		symbolic.Int(-6),
	)
	assert.Equal(t, []string{"1", "2", "3"}, solveStrings(t, e, "x"))

	// x^3 - 8 = 0 has one real root.
	e = symbolic.AddOf(symbolic.PowOf(x, symbolic.Int(3)), symbolic.Int(-8))
	assert.Equal(t, []string{"2"}, solveStrings(t, e, "x"))
}

func TestSolveQuartic(t *testing.T) {
	x := symbolic.S("x")

	// x^4 - 5x^2 + 4 = 0 has roots -2, -1, 1, 2, found numerically.
	e := symbolic.AddOf(
		symbolic.PowOf(x, symbolic.Int(4)),
		symbolic.MulOf(symbolic.Int(-5), symbolic.PowOf(x, symbolic.Int(2))),
		symbolic.Int(4),
	)
	roots, err := symbolic.Solve(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 4)
	want := []float64{-2, -1, 1, 2}
	for i, r := range roots {
		n, ok := r.Eval()
		require.True(t, ok)
		assert.InDelta(t, want[i], n.Float64(), 1e-6)
	}
}

func TestSolveTranscendental(t *testing.T) {
	x := symbolic.S("x")

	// exp(x) - 2 = 0
	e := symbolic.AddOf(symbolic.Fn("exp", x), symbolic.Int(-2))
	roots, err := symbolic.Solve(e, "x")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	n, ok := roots[0].Eval()
	require.True(t, ok)
	assert.InDelta(t, math.Ln2, n.Float64(), 1e-6)

	// exp(x) = 0 has no roots anywhere.
	e = symbolic.Fn("exp", x)
	roots, err = symbolic.Solve(e, "x")
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestSolveAbsentVariable(t *testing.T) {
	x := symbolic.S("x")
	e := symbolic.AddOf(x, symbolic.Int(-5))

	roots, err := symbolic.Solve(e, "z")
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestSolveFactoredForm(t *testing.T) {
	x := symbolic.S("x")

	// (x+1)(x-1) = 0 expands before coefficient extraction.
	e := symbolic.MulOf(
		symbolic.AddOf(x, symbolic.Int(1)),
		symbolic.AddOf(x, symbolic.Int(-1)),
	)
	assert.Equal(t, []string{"1", "-1"}, solveStrings(t, e, "x"))
}

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvekit/go-equation-api/parser"
	"github.com/solvekit/go-equation-api/symbolic"
)

func TestParseRendering(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"2.5", "5/2"},
		{"x", "x"},
		{"x + 1", "x + 1"},
		{"x - 1", "x - 1"},
		{"2*x", "2*x"},
		{"2x", "2*x"},
		{"2x + 3x", "5*x"},
		{"x^2", "x^2"},
		{"x^2 + 2x - 10", "x^2 + 2*x - 10"},
		{"x^2+2x-10", "x^2 + 2*x - 10"},
		{"2(x+1)", "2*(x + 1)"},
		{"(x+1)(x-1)", "(x + 1)*(x - 1)"},
		{"x sin(x)", "sin(x)*x"},
		{"sqrt(44)", "2*sqrt(11)"},
		{"log(1)", "0"},
		{"log(x)", "ln(x)"},
		{"2^-1", "1/2"},
		{"2^3^2", "512"},
		{"-x", "-x"},
		{"-x^2", "-x^2"},
		{"-(x+1)", "-(x + 1)"},
		{"x/2", "1/2*x"},
		{"1/x", "1/x"},
		{"+x", "x"},
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := parser.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.String())
		})
	}
}

func TestParseExactDecimals(t *testing.T) {
	e, err := parser.Parse("0.1 + 0.2")
	require.NoError(t, err)
	assert.Equal(t, "3/10", e.String(), "decimals must be exact, not binary floats")
}

func TestParseFreeSymbols(t *testing.T) {
	e, err := parser.Parse("a*x^2 + b*x + c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "x"}, symbolic.VarNames(e))

	// A function name without parentheses is just a symbol.
	e, err = parser.Parse("sin + 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sin"}, symbolic.VarNames(e))
}

func TestParseDivisionByZero(t *testing.T) {
	for _, in := range []string{"x/0", "1/0", "x/(2-2)", "x/0.0"} {
		t.Run(in, func(t *testing.T) {
			_, err := parser.Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrDivisionByZero)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, in := range []string{"", "2 +", "(x", "x)", "1..2", "x + * y", "@", "sin(x", "."} {
		t.Run(in, func(t *testing.T) {
			_, err := parser.Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrSyntax)
		})
	}
}

package equationapi

import (
	"sort"
	"strings"

	"github.com/solvekit/go-equation-api/parser"
	"github.com/solvekit/go-equation-api/symbolic"
)

// ParsedForm is the parsed input: either a two-sided equation or a bare
// expression implicitly equated to zero. The two variants are handled
// explicitly rather than sniffed at runtime.
type ParsedForm interface {
	// Residual returns the expression whose roots solve the form,
	// i.e. lhs - rhs for an equation and the expression itself otherwise.
	Residual() symbolic.Expr

	// FreeVars returns the sorted free symbol names of the form.
	FreeVars() []string
}

// EquationForm is an input with a single '=' sign.
type EquationForm struct {
	LHS symbolic.Expr
	RHS symbolic.Expr
}

func (f *EquationForm) Residual() symbolic.Expr {
	return symbolic.AddOf(f.LHS, symbolic.MulOf(symbolic.Int(-1), f.RHS))
}

func (f *EquationForm) FreeVars() []string {
	set := symbolic.FreeVars(f.LHS)
	for name := range symbolic.FreeVars(f.RHS) {
		set[name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpressionForm is an input without an '=' sign, solved as expr = 0.
type ExpressionForm struct {
	Expr symbolic.Expr
}

func (f *ExpressionForm) Residual() symbolic.Expr { return f.Expr }
func (f *ExpressionForm) FreeVars() []string      { return symbolic.VarNames(f.Expr) }

// ParseForm splits the input on '=' and parses each side. More than one '='
// sign is a validation error; parse failures come back unwrapped for the
// caller to classify.
func ParseForm(input string) (ParsedForm, error) {
	parts := strings.Split(input, "=")
	switch len(parts) {
	case 1:
		e, err := parser.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		return &ExpressionForm{Expr: e}, nil
	case 2:
		lhs, err := parser.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		rhs, err := parser.Parse(parts[1])
		if err != nil {
			return nil, err
		}
		return &EquationForm{LHS: lhs, RHS: rhs}, nil
	default:
		return nil, ErrInvalidFormat
	}
}

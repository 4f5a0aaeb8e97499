package equationapi

import "time"

// EquationRequest is a single solve request.
type EquationRequest struct {
	// Equation is the input in calculator notation, either "lhs = rhs" or a
	// bare expression treated as "expression = 0".
	Equation string `json:"equation" validate:"required"`

	// Variable optionally names the symbol to solve for. Any string passes
	// through; a symbol absent from the equation yields no solutions.
	Variable string `json:"variable"`
}

// SolveResult is the outcome of one solve, carrying either a result string
// or a caller-facing error.
type SolveResult struct {
	Result   string
	Err      error
	Status   int
	Duration time.Duration
}

// OK reports whether the solve succeeded.
func (r *SolveResult) OK() bool { return r.Err == nil }

func (r *SolveResult) fail(err error) {
	r.Err = err
	r.Status = StatusBadRequest
}

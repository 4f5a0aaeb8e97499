package equationapi

import "github.com/cockroachdb/errors"

var (
	// ErrValidation marks malformed request input. The message is returned
	// to the caller verbatim with HTTP 400.
	ErrValidation = errors.New("validation error")

	// ErrSolve marks any failure surfaced while parsing or solving. The
	// message is "Failed to solve equation: " plus the underlying cause.
	ErrSolve = errors.New("solve error")
)

var (
	// ErrMissingEquation is returned when the equation parameter is empty.
	ErrMissingEquation = NewValidationError("Missing 'equation' query parameter")

	// ErrInvalidFormat is returned when the input contains more than one '='.
	ErrInvalidFormat = NewValidationError("Invalid equation format. Use single '=' sign.")
)

// NewValidationError builds a validation failure whose message goes to the
// caller unchanged.
func NewValidationError(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

// NewSolveError wraps a parse or solve failure in the caller-facing message
// format.
func NewSolveError(cause error) error {
	return errors.Mark(errors.Wrap(cause, "Failed to solve equation"), ErrSolve)
}

// IsValidationError reports whether err originates from request validation.
func IsValidationError(err error) bool { return errors.Is(err, ErrValidation) }

// IsSolveError reports whether err originates from parsing or solving.
func IsSolveError(err error) bool { return errors.Is(err, ErrSolve) }

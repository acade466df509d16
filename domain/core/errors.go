package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrRunNotFound   = fmt.Errorf("%w: analysis run", ErrNotFound)
	ErrTableNotFound = fmt.Errorf("%w: report table", ErrNotFound)
	ErrStateNotFound = fmt.Errorf("%w: state", ErrNotFound)

	// Numeric precondition violations (n <= 0, p0 outside (0,1), degenerate tables)
	ErrDomain = errors.New("domain error")

	// A raw cell that is neither a non-negative count nor the suppression sentinel.
	// "Exactly 0" and "unreported" must be distinguished upstream; this error is how
	// the pipeline refuses to collapse them silently.
	ErrAmbiguousCell = errors.New("ambiguous cell value")

	// Stratum validation errors
	ErrStratumInvalid   = errors.New("invalid stratum")
	ErrCountExceedsN    = fmt.Errorf("%w: count exceeds denominator", ErrStratumInvalid)
	ErrZeroDenominator  = fmt.Errorf("%w: denominator must be positive", ErrStratumInvalid)
	ErrUnknownState     = fmt.Errorf("%w: state not in census map", ErrStratumInvalid)
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewDomainError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}

func NewAmbiguousCellError(raw string) error {
	return fmt.Errorf("%w: %q is neither a count nor the suppression sentinel", ErrAmbiguousCell, raw)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsAmbiguousCellError(err error) bool {
	return errors.Is(err, ErrAmbiguousCell)
}

func IsStratumError(err error) bool {
	return errors.Is(err, ErrStratumInvalid)
}

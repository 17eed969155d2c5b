package container

import (
	"errors"
	"fmt"

	"github.com/plasmalab/dhyb/internal/dataset"
)

// Domain errors for container lookups and insertions.
var (
	// ErrNotFound indicates a qualifier bucket or name miss during lookup.
	ErrNotFound = errors.New("container: entry not found")

	// ErrUsage indicates a malformed accessor call, independent of data state.
	ErrUsage = errors.New("container: invalid accessor usage")

	// ErrValidation indicates an insertion or registration that violates the
	// container's declared structure.
	ErrValidation = errors.New("container: validation failed")
)

// NotFoundError carries enough context to reconstruct a useful message:
// container kind, timestep, qualifier, and name.
type NotFoundError struct {
	Kind      dataset.Kind
	Timestep  int
	Qualifier string
	Name      string
	bucket    bool // true when the qualifier bucket itself was missing
}

func (e *NotFoundError) Error() string {
	if e.bucket {
		return fmt.Sprintf("%s %q: no %s %q at timestep %d", e.Kind, e.Name, keywordFor(e.Kind), e.Qualifier, e.Timestep)
	}
	return fmt.Sprintf("%s %q not found for %s %q at timestep %d", e.Kind, e.Name, keywordFor(e.Kind), e.Qualifier, e.Timestep)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UsageError reports a bad accessor call: too many qualifier arguments, or a
// qualifier keyword that does not match the container's.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

func (e *UsageError) Unwrap() error { return ErrUsage }

func usagef(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports an insertion outside the declared qualifier set or
// a duplicate derived-name registration.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func keywordFor(k dataset.Kind) string {
	if k == dataset.FieldKind {
		return "origin"
	}
	return "species"
}

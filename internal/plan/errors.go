package plan

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrSelfMapping    = errors.New("identifier maps to itself")
	ErrDuplicateOld   = errors.New("duplicate old identifier")
	ErrNewCollidesOld = errors.New("mapping is not idempotent")
)

// ValidationError describes a single structural problem in a plan.
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error { return e.Err }

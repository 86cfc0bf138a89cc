package audit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the live entity (or its creation record) does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrUnreconstructable means no state exists at the requested instant:
	// either the target time precedes creation or no create entry was logged.
	ErrUnreconstructable = errors.New("no reconstructable state at the requested time")
)

// CoercionError reports a historical serialized value that can no longer be
// parsed back into its field's native type during a revert.
type CoercionError struct {
	Field string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce field %q value %q: %v", e.Field, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

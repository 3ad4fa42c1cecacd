package inspection

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrInvalidCategory        = fmt.Errorf("%w: invalid vehicle category", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("inspection record not found")
	ErrNoOp                   = errors.New("nothing to update")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

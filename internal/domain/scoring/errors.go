package scoring

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidPolicy = errors.New("invalid scoring policy")
)

// MissingFieldError reports a field that was absent from a submission.
func MissingFieldError(f Field) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidInput, f)
}

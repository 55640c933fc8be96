package utils

import "errors"

// Error kinds surfaced by the reconciliation core. All are recoverable;
// callers match with errors.Is and map them to transport-level responses.
var (
	ErrNotFound                = errors.New("record not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrReferentialIntegrity    = errors.New("referential integrity violation")
	ErrConcurrentModification  = errors.New("concurrent modification detected")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}

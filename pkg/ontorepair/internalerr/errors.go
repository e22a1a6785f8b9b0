package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNilStore         = errors.New("nil fact store")
	ErrMalformedAxiom   = errors.New("malformed axiom")
	ErrActionFailed     = errors.New("repair action failed")
)

package store

import "errors"

// Sentinel errors shared by every store implementation. Handlers translate
// these into HTTP status codes (ErrNotFound → 404, ErrValidation and
// ErrDuplicate → 400); anything else is a persistence failure → 500.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

package core

import "errors"

// Error categories. Package-level errors wrap one of these, so callers
// can branch with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrPersistence  = errors.New("persistence failure")
	ErrCreditLimit  = errors.New("credit limit exceeded")
)

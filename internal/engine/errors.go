package engine

import "errors"

// Error kinds surfaced by engine operations. Callers match with
// errors.Is; the wrapped message carries the detail.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("transport failure")
	ErrCancelled    = errors.New("cancelled")
	ErrInternal     = errors.New("internal error")
)

package engine

import (
	"errors"

	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

// Sentinel error kinds surfaced by the engine. Callers match with errors.Is.
var (
	// ErrNotFound is store.ErrNotFound so either can be matched.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidState means the comparison is no longer open, or the caller
	// tried to set the open outcome.
	ErrInvalidState = errors.New("invalid comparison state")
	// ErrValidation rejects malformed input before any store access.
	ErrValidation = errors.New("validation failed")
)

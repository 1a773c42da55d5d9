package store

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("comparison already exists")
	ErrConflict  = errors.New("comparison outcome changed concurrently")
	// ErrSelfComparison is returned when an evaluator would be paired with
	// themselves.
	ErrSelfComparison = errors.New("evaluator cannot be compared against themselves")
)

package store

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict : doublon, ou liste modifiée en parallèle trop de fois de suite.
	ErrConflict = errors.New("concurrent update conflict")
)

package repository

import "errors"

// Storage-level outcomes the service layer reacts to. Duplicate errors are
// also produced when a unique constraint trips at write time, so concurrent
// signups racing past the existence check still resolve to a clean conflict.
var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

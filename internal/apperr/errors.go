package apperr

import "errors"

// Sentinel errors shared by the repository and token layers. Handlers
// translate them into HTTP status codes at the boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInvalid      = errors.New("invalid input")
)

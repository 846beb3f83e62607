package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrForbidden             = errors.New("access forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

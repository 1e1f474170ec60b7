package usecase

import "errors"

var (
	// ErrNotFound covers both a missing record and a record outside the
	// actor's visible set; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden means the actor's role does not allow the operation.
	ErrForbidden = errors.New("operation not allowed for this role")

	// ErrValidation means the request payload failed a business check.
	ErrValidation = errors.New("invalid input")
)

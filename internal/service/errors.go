package service

import "errors"

var (
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// ConflictError rejects an operation that clashes with existing state,
// such as checking in while a session is already open.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports that the state an operation needs does not exist.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError rejects malformed or out-of-range input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Reason returns the user-facing message of a domain error, or "" for other errors.
func Reason(err error) string {
	var conflict *ConflictError
	var notFound *NotFoundError
	var validation *ValidationError
	switch {
	case errors.As(err, &conflict):
		return conflict.Reason
	case errors.As(err, &notFound):
		return notFound.Reason
	case errors.As(err, &validation):
		return validation.Reason
	}
	return ""
}

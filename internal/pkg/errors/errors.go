package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	ErrExtraction   = errors.New("text extraction failed")
	ErrProvider     = errors.New("provider failed")
	ErrUnavailable  = errors.New("provider unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}

func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider) || errors.Is(err, ErrUnavailable)
}

package errors

import "errors"

// Application-wide errors. Services wrap them with fmt.Errorf("%w: ...")
// and handlers map them to HTTP status codes.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized means the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is used for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken is returned for an expired JWT.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict is used when the record already exists.
	ErrConflict = errors.New("resource state conflict")
)

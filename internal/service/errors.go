package service

import "errors"

// Failure kinds the transport layer maps onto HTTP statuses. Everything not
// matching one of these is a server-side fault.
var (
	// ErrValidation: the caller supplied nothing usable; no side effects
	// have occurred.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized: missing, malformed, expired or superseded credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the caller is authenticated but does not own the record.
	ErrForbidden = errors.New("forbidden")

	// ErrUpload: the remote storage write failed. Local staging cleanup has
	// already run by the time this surfaces.
	ErrUpload = errors.New("upload failed")

	// ErrPersistence: the store write failed after a remote upload
	// succeeded, leaving the uploaded asset orphaned. No compensating
	// remote delete is attempted.
	ErrPersistence = errors.New("persistence failed")
)

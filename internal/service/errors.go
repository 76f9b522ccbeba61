package service

import "errors"

var (
	// ErrInvalidRequest covers malformed trigger/retry requests: bad document
	// sets, jobs not in a retryable state, exhausted retries.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied means the record exists but belongs to another user.
	ErrAccessDenied = errors.New("access denied")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

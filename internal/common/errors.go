// Package common defines shared constants and sentinel errors used across
// the SecondMind server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrorUpstream marks a failure of a third-party collaborator
	// (email delivery, summarization, object storage).
	ErrorUpstream = errors.New("upstream service error")

	// Auth errors.
	ErrInvalidToken          = errors.New("invalid token")
	ErrMissingAuthHeader     = errors.New("missing authorization header")
	ErrMalformedAuthHeader   = errors.New("malformed authorization header")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrNotVerified           = errors.New("email not verified")
	ErrInvalidAssertion      = errors.New("invalid identity assertion")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")

	ErrTooManyRequests = errors.New("too many requests")
)

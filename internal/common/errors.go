// Package common defines shared constants and sentinel errors used across
// the client and server halves of Roamsync. Callers should use errors.Is to
// match these values.
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

	// Client session lifecycle errors.
	//
	// ErrAuthRequired means no session is stored at all: the user has to log
	// in. ErrSessionExpired means a refresh was attempted and rejected; the
	// local session has been cleared by the time it is returned.
	ErrAuthRequired   = errors.New("authentication required")
	ErrSessionExpired = errors.New("session expired")

	// Server-side refresh rotation rejections. Each of these deletes the
	// presented ledger record before being returned.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshExpired      = errors.New("refresh token expired")
	ErrTokenMismatch       = errors.New("refresh token does not match its record")

	// Transport errors. ErrNetwork is recoverable: the outbox stays intact
	// and the operation may be retried on the next drain.
	ErrNetwork = errors.New("network unavailable")
)

package main

import "errors"

// Domain errors. Handlers map these onto HTTP status codes; nothing below
// this layer knows about HTTP.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("account locked, try again later")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDailyLimitExceeded = errors.New("daily withdrawal limit exceeded")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrTransferNotFound   = errors.New("pending transfer not found")
	ErrTransferExpired    = errors.New("pending transfer expired")

	// ErrPersistence wraps storage failures. In-memory state is NOT rolled
	// back when this is returned: memory and disk may have diverged, which
	// is why it is logged loudly at the point of failure.
	ErrPersistence = errors.New("persistence failed")
)

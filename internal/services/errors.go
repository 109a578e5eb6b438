package services

import "errors"

// Typed error kinds surfaced to callers. Validation and state-conflict
// errors are rejected before any mutation and are safe to report
// verbatim; none of them is retryable with the same request.
var (
	ErrInvalidBetAmount        = errors.New("invalid bet amount")
	ErrInvalidGameType         = errors.New("invalid game type")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrSessionExpired          = errors.New("session expired")

	// ErrSessionStateConflict is the store-level CAS failure; the
	// engine refines it into AlreadyCompleted or Expired.
	ErrSessionStateConflict = errors.New("session state conflict")
)

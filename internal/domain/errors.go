package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Lookup errors
	ErrMsgProfileNotFound = "profile not found"
	ErrMsgContestNotFound = "contest not found"
	ErrMsgNotFound        = "not found"

	// Contest rule errors
	ErrMsgInsufficientFunds  = "insufficient funds"
	ErrMsgSellCapExceeded    = "sell cap exceeded"
	ErrMsgRoundsExhausted    = "no rounds remaining"
	ErrMsgRoundNotOpen       = "round not open for betting"
	ErrMsgAlreadyJoined      = "already joined"
	ErrMsgAlreadyExists      = "already exists"

	// Concurrency errors
	ErrMsgConflict = "concurrent update conflict"

	// Market data errors
	ErrMsgExternalData = "external price source unavailable"
)

// Common domain errors
// These errors should be used consistently across all layers.
// Wrap with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Lookup errors
	ErrProfileNotFound = errors.New(ErrMsgProfileNotFound)
	ErrContestNotFound = errors.New(ErrMsgContestNotFound)
	ErrNotFound        = errors.New(ErrMsgNotFound)

	// Contest rule errors
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrSellCapExceeded   = errors.New(ErrMsgSellCapExceeded)
	ErrRoundsExhausted   = errors.New(ErrMsgRoundsExhausted)
	ErrRoundNotOpen      = errors.New(ErrMsgRoundNotOpen)
	ErrAlreadyJoined     = errors.New(ErrMsgAlreadyJoined)
	ErrAlreadyExists     = errors.New(ErrMsgAlreadyExists)

	// Concurrency errors
	// ErrConflict means the optimistic commit lost its retry budget; the
	// operation left no partial state and is safe for the caller to retry.
	ErrConflict = errors.New(ErrMsgConflict)

	// Market data errors
	// ErrExternalData never crosses the HTTP boundary; the market source
	// recovers from it with a synthetic series.
	ErrExternalData = errors.New(ErrMsgExternalData)
)

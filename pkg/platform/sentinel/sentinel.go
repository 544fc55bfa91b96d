package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key or entity does not exist in the store
// - ErrConflict: entity already exists
// - ErrExpired: token has expired
// - ErrAlreadyUsed: one-time resource (identity assertion) already consumed
// - ErrUnavailable: backing store or provider could not be reached
//
// ErrUnavailable must never be collapsed into ErrNotFound: callers answer the
// first with a retryable failure and the second with a re-login.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)

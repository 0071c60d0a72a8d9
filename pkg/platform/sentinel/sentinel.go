package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores (company, document, plan,
// subscription, verification token) return these, optionally wrapped, so
// services can translate them into coded domain errors at the boundary.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in store
//   - ErrConflict: unique constraint would be violated
//   - ErrExpired: verification token past its deadline
//   - ErrAlreadyUsed: one-shot resource (verification token) already consumed
//   - ErrInvalidState: entity in wrong state for the requested operation
//   - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

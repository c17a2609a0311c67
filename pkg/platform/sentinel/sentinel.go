package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row does not exist, or is archived and the read excludes archived rows
// - ErrConflict: unique constraint hit (duplicate assignment, duplicate subscription)
// - ErrVersionMismatch: optimistic-concurrency stamp did not match on write
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrVersionMismatch = errors.New("version mismatch")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnavailable     = errors.New("unavailable")
)

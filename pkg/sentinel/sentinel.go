package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrNotInitialized: the singleton aggregate has not been written yet
// - ErrConflict: write lost to a concurrent or conflicting write
// - ErrUnavailable: backing store temporarily unavailable
//
// For validation and authorization errors use pkg/domain-errors directly.
var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("not initialized")
	ErrConflict       = errors.New("conflict")
	ErrUnavailable    = errors.New("unavailable")
)

// Package lifecycle is the generic engine shared by the three asset
// instances: keyed collections of immutable-once-created event records, a
// singleton aggregate per instance, cursor pagination, and the checked
// arithmetic that keeps aggregate capacity fields consistent.
package lifecycle

import "context"

// MaxPageLimit caps every range scan regardless of the caller-requested
// limit.
const MaxPageLimit = 30

// ClampLimit normalizes a requested page size. Zero or negative requests get
// the full page.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// Keyed pairs a record with the caller-chosen id it is stored under.
type Keyed[R any] struct {
	ID     string `json:"id"`
	Record R      `json:"record"`
}

// RecordStore persists one kind of lifecycle record, keyed by a
// caller-supplied unique id.
//
// Save is an upsert: re-submitting an existing id replaces the stored
// record. Status-update transitions depend on this; create transitions
// inherit it as overwrite-on-resubmit (a documented compatibility choice).
// Find returns sentinel.ErrNotFound on miss. List returns records in
// ascending lexicographic id order, resuming strictly after startAfter
// (empty string starts from the beginning); each page request is
// independent; no live cursor is held between calls.
type RecordStore[R any] interface {
	Save(ctx context.Context, id string, record R) error
	Find(ctx context.Context, id string) (R, error)
	List(ctx context.Context, startAfter string, limit int) ([]Keyed[R], error)
}

// AggregateStore persists the singleton summary aggregate for one deployed
// asset instance. Load returns sentinel.ErrNotInitialized before the first
// Save; Save is an idempotent overwrite. The aggregate is created once at
// instantiation and never deleted.
type AggregateStore[A any] interface {
	Load(ctx context.Context) (A, error)
	Save(ctx context.Context, aggregate A) error
}

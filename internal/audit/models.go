package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is the structured summary every committed transition emits: the
// action name plus the identifiers and amounts a reviewer needs to replay
// what happened. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Asset     string    `json:"asset"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	RecordID  string    `json:"record_id,omitempty"`
	// Details is a flat [key1, value1, key2, value2, ...] slice of
	// action-specific amounts and references.
	Details []any `json:"details,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(asset, action, actor, recordID string, details ...any) Event {
	return Event{
		ID:       uuid.NewString(),
		Asset:    asset,
		Action:   action,
		Actor:    actor,
		RecordID: recordID,
		Details:  details,
	}
}

package models

import "time"

// Journal entry types.
const (
	EventTypeModeChanged = "MODE_CHANGED"
	EventTypeFault       = "FAULT"
)

// KettleEvent is a single run journal entry.
type KettleEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGED | FAULT
	Cause       string    `json:"cause"`       // heat_started, no_liquid, ...
	Description string    `json:"description"` // status text at the time
	Metadata    any       `json:"metadata,omitempty"`
}

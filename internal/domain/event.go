package domain

import "time"

// EventStatus represents the processing status of an inbound event.
// Every event starts in EventStatusProcessing and ends in exactly one of the
// three terminal statuses.
type EventStatus string

const (
	EventStatusProcessing     EventStatus = "processing"
	EventStatusSuccess        EventStatus = "success"
	EventStatusPartialSuccess EventStatus = "partial_success"
	EventStatusFailed         EventStatus = "failed"
)

// IsTerminal reports whether the status is one of the three final statuses.
func (s EventStatus) IsTerminal() bool {
	switch s {
	case EventStatusSuccess, EventStatusPartialSuccess, EventStatusFailed:
		return true
	}
	return false
}

// EventTypeWebhook tags events created by the webhook intake endpoint.
const EventTypeWebhook = "webhook"

// Event is the append-only audit record for one inbound request.
// IdempotencyKey is unique so that replaying the same logical request cannot
// create a second event.
type Event struct {
	ID             string      `gorm:"type:text;primaryKey" json:"id"`
	EventType      string      `gorm:"type:text;not null;index:idx_events_type" json:"event_type"`
	IdempotencyKey string      `gorm:"type:text;not null;uniqueIndex:idx_events_idempotency_key" json:"idempotency_key"`
	OwnerID        string      `gorm:"type:text;not null;index:idx_events_owner" json:"owner_id"`
	Payload        string      `gorm:"type:text" json:"payload"`
	Status         EventStatus `gorm:"type:text;not null;default:processing;index:idx_events_status" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string {
	return "events"
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the status of a calendar event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCancelled EventStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPending, EventStatusConfirmed, EventStatusCancelled:
		return true
	}
	return false
}

// CalendarEvent is a derived record created when analysis detects a meeting.
// Deleting the source email cascades to its events.
type CalendarEvent struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Status    EventStatus `json:"status"`
	Attendees []string    `json:"attendees,omitempty"`

	EmailID int64 `json:"email_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventFilter narrows event list queries.
type EventFilter struct {
	UserID    uuid.UUID
	Status    *EventStatus
	StartFrom *time.Time
	StartTo   *time.Time
	EmailID   *int64
	Limit     int
	Offset    int
}

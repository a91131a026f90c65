package in

import (
	"context"

	"mailmaestro/core/domain"

	"github.com/google/uuid"
)

// EventService defines the interface for calendar event operations.
type EventService interface {
	GetEvent(ctx context.Context, userID uuid.UUID, eventID int64) (*domain.CalendarEvent, error)
	ListEvents(ctx context.Context, filter *domain.EventFilter) (*EventListResponse, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, eventID int64, status domain.EventStatus) error
	DeleteEvent(ctx context.Context, userID uuid.UUID, eventID int64) error
}

// EventListResponse is the paginated event listing.
type EventListResponse struct {
	Events []*domain.CalendarEvent `json:"events"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

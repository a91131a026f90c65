// Package calendar implements calendar event queries and status changes.
// Events are created by the analysis pipeline, never through this service.
package calendar

import (
	"context"

	"github.com/google/uuid"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/in"
	"mailmaestro/core/port/out"
	"mailmaestro/pkg/apperr"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service implements in.EventService.
type Service struct {
	events out.EventRepository
}

func NewService(events out.EventRepository) *Service {
	return &Service{events: events}
}

func (s *Service) GetEvent(ctx context.Context, userID uuid.UUID, eventID int64) (*domain.CalendarEvent, error) {
	return s.owned(ctx, userID, eventID)
}

func (s *Service) ListEvents(ctx context.Context, filter *domain.EventFilter) (*in.EventListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if events == nil {
		events = []*domain.CalendarEvent{}
	}
	return &in.EventListResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, eventID int64, status domain.EventStatus) error {
	if !status.IsValid() {
		return apperr.BadRequest("invalid status: " + string(status))
	}
	if _, err := s.owned(ctx, userID, eventID); err != nil {
		return err
	}
	if err := s.events.UpdateStatus(ctx, eventID, status); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, userID uuid.UUID, eventID int64) error {
	if _, err := s.owned(ctx, userID, eventID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID uuid.UUID, eventID int64) (*domain.CalendarEvent, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if event == nil || event.UserID != userID {
		return nil, apperr.NotFound("event")
	}
	return event, nil
}

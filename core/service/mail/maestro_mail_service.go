// Package mail implements email CRUD and read/star state on top of the
// email repository.
package mail

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/in"
	"mailmaestro/core/port/out"
	"mailmaestro/pkg/apperr"
	"mailmaestro/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service implements in.MailService.
type Service struct {
	emails   out.EmailRepository
	analyzer in.AnalysisService
	log      *logger.Logger
}

// NewService creates the mail service. analyzer may be nil; composed mail is
// then stored without analysis.
func NewService(emails out.EmailRepository, analyzer in.AnalysisService) *Service {
	return &Service{
		emails:   emails,
		analyzer: analyzer,
		log:      logger.WithField("component", "mail"),
	}
}

func (s *Service) GetEmail(ctx context.Context, userID uuid.UUID, emailID int64) (*domain.Email, error) {
	return s.owned(ctx, userID, emailID)
}

func (s *Service) ListEmails(ctx context.Context, filter *domain.EmailFilter) (*in.EmailListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	emails, total, err := s.emails.List(ctx, filter)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if emails == nil {
		emails = []*domain.Email{}
	}
	return &in.EmailListResponse{
		Emails: emails,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// ComposeEmail stores an outgoing email and analyzes it synchronously, so a
// fetch right after compose already shows its category. Analysis failure is
// logged, never surfaced; the email is stored either way.
func (s *Service) ComposeEmail(ctx context.Context, userID uuid.UUID, req *in.ComposeEmailRequest) (*domain.Email, error) {
	if strings.TrimSpace(req.ToEmail) == "" {
		return nil, apperr.BadRequest("to_email is required")
	}
	if strings.TrimSpace(req.Subject) == "" && strings.TrimSpace(req.Body) == "" {
		return nil, apperr.BadRequest("subject or body is required")
	}

	now := time.Now()
	email := &domain.Email{
		UserID:     userID,
		FromEmail:  req.FromEmail,
		ToEmail:    strings.TrimSpace(req.ToEmail),
		Subject:    req.Subject,
		Body:       req.Body,
		Type:       domain.EmailTypeSent,
		ReceivedAt: now,
	}
	if err := s.emails.Create(ctx, email); err != nil {
		return nil, apperr.Database(err)
	}

	if s.analyzer != nil {
		if _, err := s.analyzer.AnalyzeEmail(ctx, userID, email.ID); err != nil {
			s.log.WithField("email_id", email.ID).WithError(err).
				Warn("compose-time analysis failed")
		} else if updated, err := s.emails.GetByID(ctx, email.ID); err == nil && updated != nil {
			return updated, nil
		}
	}
	return email, nil
}

// IngestEmail stores an inbound email without analyzing it; the batch
// endpoint picks it up later.
func (s *Service) IngestEmail(ctx context.Context, userID uuid.UUID, req *in.IngestEmailRequest) (*domain.Email, error) {
	if strings.TrimSpace(req.FromEmail) == "" {
		return nil, apperr.BadRequest("from_email is required")
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	email := &domain.Email{
		UserID:     userID,
		FromEmail:  strings.TrimSpace(req.FromEmail),
		ToEmail:    strings.TrimSpace(req.ToEmail),
		Subject:    req.Subject,
		Body:       req.Body,
		Type:       domain.EmailTypeInbox,
		ReceivedAt: receivedAt,
	}
	if err := s.emails.Create(ctx, email); err != nil {
		return nil, apperr.Database(err)
	}
	return email, nil
}

// DeleteEmail removes the email; linked tasks survive with their reference
// nulled and linked events are removed, inside the repository transaction.
func (s *Service) DeleteEmail(ctx context.Context, userID uuid.UUID, emailID int64) error {
	if _, err := s.owned(ctx, userID, emailID); err != nil {
		return err
	}
	if err := s.emails.Delete(ctx, emailID); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, emailID int64, read bool) error {
	if _, err := s.owned(ctx, userID, emailID); err != nil {
		return err
	}
	if err := s.emails.SetRead(ctx, emailID, read); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) MarkStarred(ctx context.Context, userID uuid.UUID, emailID int64, starred bool) error {
	if _, err := s.owned(ctx, userID, emailID); err != nil {
		return err
	}
	if err := s.emails.SetStarred(ctx, emailID, starred); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID uuid.UUID, emailID int64) (*domain.Email, error) {
	email, err := s.emails.GetByID(ctx, emailID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if email == nil || email.UserID != userID {
		return nil, apperr.NotFound("email")
	}
	return email, nil
}

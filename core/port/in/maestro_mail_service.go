package in

import (
	"context"
	"time"

	"mailmaestro/core/domain"

	"github.com/google/uuid"
)

// MailService defines the interface for email operations.
type MailService interface {
	GetEmail(ctx context.Context, userID uuid.UUID, emailID int64) (*domain.Email, error)
	ListEmails(ctx context.Context, filter *domain.EmailFilter) (*EmailListResponse, error)
	ComposeEmail(ctx context.Context, userID uuid.UUID, req *ComposeEmailRequest) (*domain.Email, error)
	IngestEmail(ctx context.Context, userID uuid.UUID, req *IngestEmailRequest) (*domain.Email, error)
	DeleteEmail(ctx context.Context, userID uuid.UUID, emailID int64) error

	MarkRead(ctx context.Context, userID uuid.UUID, emailID int64, read bool) error
	MarkStarred(ctx context.Context, userID uuid.UUID, emailID int64, starred bool) error
}

// ComposeEmailRequest is the body of POST /api/emails. The stored copy is
// analyzed synchronously so the immediate fetch reflects its category.
type ComposeEmailRequest struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`

	// FromEmail is filled by the handler from the authenticated identity,
	// never from the request body.
	FromEmail string `json:"-"`
}

// IngestEmailRequest is the body of POST /api/emails/ingest, used to store
// an inbound message from an external source.
type IngestEmailRequest struct {
	FromEmail  string     `json:"from_email"`
	ToEmail    string     `json:"to_email"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

// EmailListResponse is the paginated email listing.
type EmailListResponse struct {
	Emails []*domain.Email `json:"emails"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

package out

import (
	"context"

	"mailmaestro/core/domain"

	"github.com/google/uuid"
)

// EmailRepository is the outbound port for email rows.
type EmailRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Email, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []int64) ([]*domain.Email, error)
	List(ctx context.Context, filter *domain.EmailFilter) ([]*domain.Email, int, error)
	Create(ctx context.Context, email *domain.Email) error
	Update(ctx context.Context, email *domain.Email) error
	// UpdateAnalysis writes only the AI-derived columns.
	UpdateAnalysis(ctx context.Context, id int64, res *domain.AnalysisResult) error
	SetRead(ctx context.Context, id int64, read bool) error
	SetStarred(ctx context.Context, id int64, starred bool) error
	// Delete removes the email, nulls task back-references and cascades
	// event deletion in one transaction.
	Delete(ctx context.Context, id int64) error
}

// TaskRepository is the outbound port for task rows and their correction
// audit trail.
type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter *domain.TaskFilter) ([]*domain.Task, int, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	Delete(ctx context.Context, id int64) error

	// Corrections
	CreateCorrection(ctx context.Context, corr *domain.TaskCorrection) error
	ListCorrections(ctx context.Context, taskID int64) ([]*domain.TaskCorrection, error)
}

// EventRepository is the outbound port for calendar event rows.
type EventRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error)
	List(ctx context.Context, filter *domain.EventFilter) ([]*domain.CalendarEvent, int, error)
	Create(ctx context.Context, event *domain.CalendarEvent) error
	UpdateStatus(ctx context.Context, id int64, status domain.EventStatus) error
	Delete(ctx context.Context, id int64) error
}

package in

import (
	"context"
	"time"

	"mailmaestro/core/domain"

	"github.com/google/uuid"
)

// TaskService defines the interface for task operations, including the
// correction trail used to audit AI-extracted fields.
type TaskService interface {
	GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)
	ListTasks(ctx context.Context, filter *domain.TaskFilter) (*TaskListResponse, error)
	CreateTask(ctx context.Context, userID uuid.UUID, req *CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, req *UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error

	UpdateStatus(ctx context.Context, userID uuid.UUID, taskID int64, status domain.TaskStatus) error
	SnoozeTask(ctx context.Context, userID uuid.UUID, taskID int64, until time.Time) error

	CorrectTask(ctx context.Context, userID uuid.UUID, taskID int64, req *CorrectTaskRequest) (*domain.Task, error)
	ListCorrections(ctx context.Context, userID uuid.UUID, taskID int64) ([]*domain.TaskCorrection, error)
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Urgency     string     `json:"urgency,omitempty"`
	EmailID     *int64     `json:"email_id,omitempty"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Urgency     *string    `json:"urgency,omitempty"`
}

// CorrectTaskRequest records a user correction to one AI-extracted field.
type CorrectTaskRequest struct {
	Field     string `json:"field"`
	Corrected string `json:"corrected"`
}

// TaskListResponse is the paginated task listing.
type TaskListResponse struct {
	Tasks  []*domain.Task `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

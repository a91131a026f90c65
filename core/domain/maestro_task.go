package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusSnoozed    TaskStatus = "snoozed"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusSnoozed:
		return true
	}
	return false
}

// TaskUrgency represents task urgency levels.
type TaskUrgency string

const (
	TaskUrgencyLow    TaskUrgency = "low"
	TaskUrgencyMedium TaskUrgency = "medium"
	TaskUrgencyHigh   TaskUrgency = "high"
	TaskUrgencyUrgent TaskUrgency = "urgent"
)

// IsValid reports whether u is a known urgency.
func (u TaskUrgency) IsValid() bool {
	switch u {
	case TaskUrgencyLow, TaskUrgencyMedium, TaskUrgencyHigh, TaskUrgencyUrgent:
		return true
	}
	return false
}

// Task is a derived record created by analysis or manual edit. EmailID is
// nullable: it is set to NULL when the source email is deleted so the task
// survives.
type Task struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	DueDate  *time.Time  `json:"due_date,omitempty"`
	Assignee *string     `json:"assignee,omitempty"`
	Urgency  TaskUrgency `json:"urgency"`
	Status   TaskStatus  `json:"status"`

	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	Confidence   float64    `json:"confidence"`

	EmailID *int64 `json:"email_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete marks the task as completed.
func (t *Task) Complete() {
	t.Status = TaskStatusCompleted
	t.UpdatedAt = time.Now()
}

// Snooze sets the task to snoozed until the given time.
func (t *Task) Snooze(until time.Time) {
	t.Status = TaskStatusSnoozed
	t.SnoozedUntil = &until
	t.UpdatedAt = time.Now()
}

// TaskCorrection is an immutable audit record of a user fixing an AI-derived
// task field. It is written on every correction and never read back by the
// analysis pipeline.
type TaskCorrection struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	Field     string    `json:"field"`
	Original  string    `json:"original"`
	Corrected string    `json:"corrected"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskFilter narrows task list queries.
type TaskFilter struct {
	UserID  uuid.UUID
	Status  *TaskStatus
	Urgency *TaskUrgency
	EmailID *int64
	Limit   int
	Offset  int
}

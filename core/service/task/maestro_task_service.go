// Package task implements task CRUD, status transitions and the correction
// audit trail for AI-extracted fields.
package task

import (
	"context"
	"fmt"
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

	// manualConfidence marks user-created tasks, which are not guesses.
	manualConfidence = 1.0
)

// correctableFields are the task fields a correction may target.
var correctableFields = map[string]bool{
	"title":       true,
	"description": true,
	"due_date":    true,
	"assignee":    true,
	"urgency":     true,
}

// Service implements in.TaskService.
type Service struct {
	tasks out.TaskRepository
	log   *logger.Logger
}

func NewService(tasks out.TaskRepository) *Service {
	return &Service{
		tasks: tasks,
		log:   logger.WithField("component", "task"),
	}
}

func (s *Service) GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	return s.owned(ctx, userID, taskID)
}

func (s *Service) ListTasks(ctx context.Context, filter *domain.TaskFilter) (*in.TaskListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &in.TaskListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *Service) CreateTask(ctx context.Context, userID uuid.UUID, req *in.CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.BadRequest("title is required")
	}

	urgency := domain.TaskUrgencyMedium
	if req.Urgency != "" {
		urgency = domain.TaskUrgency(strings.ToLower(req.Urgency))
		if !urgency.IsValid() {
			return nil, apperr.BadRequest("invalid urgency: " + req.Urgency)
		}
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Urgency:     urgency,
		Status:      domain.TaskStatusPending,
		Confidence:  manualConfidence,
		EmailID:     req.EmailID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperr.Database(err)
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, req *in.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.BadRequest("title must not be empty")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Urgency != nil {
		urgency := domain.TaskUrgency(strings.ToLower(*req.Urgency))
		if !urgency.IsValid() {
			return nil, apperr.BadRequest("invalid urgency: " + *req.Urgency)
		}
		task.Urgency = urgency
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperr.Database(err)
	}
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, taskID int64, status domain.TaskStatus) error {
	if !status.IsValid() {
		return apperr.BadRequest("invalid status: " + string(status))
	}
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.tasks.UpdateStatus(ctx, taskID, status); err != nil {
		return apperr.Database(err)
	}
	return nil
}

// SnoozeTask sets the task to snoozed until the given time.
func (s *Service) SnoozeTask(ctx context.Context, userID uuid.UUID, taskID int64, until time.Time) error {
	if !until.After(time.Now()) {
		return apperr.BadRequest("snooze time must be in the future")
	}
	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	task.Snooze(until)
	if err := s.tasks.Update(ctx, task); err != nil {
		return apperr.Database(err)
	}
	return nil
}

// CorrectTask applies a user correction to one AI-extracted field and
// appends an immutable correction record carrying the original value.
func (s *Service) CorrectTask(ctx context.Context, userID uuid.UUID, taskID int64, req *in.CorrectTaskRequest) (*domain.Task, error) {
	field := strings.ToLower(strings.TrimSpace(req.Field))
	if !correctableFields[field] {
		return nil, apperr.BadRequest("field is not correctable: " + req.Field)
	}

	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	original, err := applyCorrection(task, field, req.Corrected)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperr.Database(err)
	}

	corr := &domain.TaskCorrection{
		TaskID:    taskID,
		UserID:    userID,
		Field:     field,
		Original:  original,
		Corrected: req.Corrected,
	}
	if err := s.tasks.CreateCorrection(ctx, corr); err != nil {
		// The field change stands; only the audit record is missing.
		s.log.WithField("task_id", taskID).WithError(err).
			Error("failed to record task correction")
	}
	return task, nil
}

func (s *Service) ListCorrections(ctx context.Context, userID uuid.UUID, taskID int64) ([]*domain.TaskCorrection, error) {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return nil, err
	}
	corrections, err := s.tasks.ListCorrections(ctx, taskID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if corrections == nil {
		corrections = []*domain.TaskCorrection{}
	}
	return corrections, nil
}

// applyCorrection mutates one field and returns its previous value rendered
// as text for the audit record.
func applyCorrection(task *domain.Task, field, corrected string) (string, error) {
	switch field {
	case "title":
		if strings.TrimSpace(corrected) == "" {
			return "", apperr.BadRequest("corrected title must not be empty")
		}
		original := task.Title
		task.Title = strings.TrimSpace(corrected)
		return original, nil
	case "description":
		original := task.Description
		task.Description = corrected
		return original, nil
	case "due_date":
		original := ""
		if task.DueDate != nil {
			original = task.DueDate.Format(time.RFC3339)
		}
		if strings.TrimSpace(corrected) == "" {
			task.DueDate = nil
			return original, nil
		}
		due, err := parseDate(corrected)
		if err != nil {
			return "", apperr.BadRequest("corrected due_date must be RFC3339 or YYYY-MM-DD")
		}
		task.DueDate = &due
		return original, nil
	case "assignee":
		original := ""
		if task.Assignee != nil {
			original = *task.Assignee
		}
		if strings.TrimSpace(corrected) == "" {
			task.Assignee = nil
		} else {
			assignee := strings.TrimSpace(corrected)
			task.Assignee = &assignee
		}
		return original, nil
	case "urgency":
		urgency := domain.TaskUrgency(strings.ToLower(strings.TrimSpace(corrected)))
		if !urgency.IsValid() {
			return "", apperr.BadRequest("invalid urgency: " + corrected)
		}
		original := string(task.Urgency)
		task.Urgency = urgency
		return original, nil
	}
	return "", apperr.BadRequest(fmt.Sprintf("field is not correctable: %s", field))
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (s *Service) owned(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if task == nil || task.UserID != userID {
		return nil, apperr.NotFound("task")
	}
	return task, nil
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/out"
	"mailmaestro/pkg/snowflake"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, user_id, title, description, due_date, assignee,
	urgency, status, snoozed_until, confidence, email_id,
	created_at, updated_at`

// TaskRepository implements out.TaskRepository
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sqlx.DB) out.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, filter *domain.TaskFilter) ([]*domain.Task, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, filter.UserID)
	argIdx++

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Urgency != nil {
		conditions = append(conditions, fmt.Sprintf("urgency = $%d", argIdx))
		args = append(args, *filter.Urgency)
		argIdx++
	}

	if filter.EmailID != nil {
		conditions = append(conditions, fmt.Sprintf("email_id = $%d", argIdx))
		args = append(args, *filter.EmailID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY due_date NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, argIdx, argIdx+1)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toDomain()
	}
	return tasks, total, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == 0 {
		task.ID = snowflake.ID()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()

	query := `
		INSERT INTO tasks (
			id, user_id, title, description, due_date, assignee,
			urgency, status, snoozed_until, confidence, email_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description,
		task.DueDate, task.Assignee, task.Urgency, task.Status,
		task.SnoozedUntil, task.Confidence, task.EmailID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE tasks SET
			title = $2, description = $3, due_date = $4, assignee = $5,
			urgency = $6, status = $7, snoozed_until = $8, updated_at = $9
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.DueDate, task.Assignee,
		task.Urgency, task.Status, task.SnoozedUntil, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1",
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// =============================================================================
// Corrections
// =============================================================================

func (r *TaskRepository) CreateCorrection(ctx context.Context, corr *domain.TaskCorrection) error {
	if corr.ID == 0 {
		corr.ID = snowflake.ID()
	}
	if corr.CreatedAt.IsZero() {
		corr.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO task_corrections (
			id, task_id, user_id, field, original, corrected, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		corr.ID, corr.TaskID, corr.UserID,
		corr.Field, corr.Original, corr.Corrected, corr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task correction: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListCorrections(ctx context.Context, taskID int64) ([]*domain.TaskCorrection, error) {
	query := `
		SELECT id, task_id, user_id, field, original, corrected, created_at
		FROM task_corrections
		WHERE task_id = $1
		ORDER BY created_at ASC`

	var rows []correctionRow
	if err := r.db.SelectContext(ctx, &rows, query, taskID); err != nil {
		return nil, fmt.Errorf("list task corrections: %w", err)
	}

	corrections := make([]*domain.TaskCorrection, len(rows))
	for i, row := range rows {
		corrections[i] = row.toDomain()
	}
	return corrections, nil
}

// =============================================================================
// Row mapping
// =============================================================================

type taskRow struct {
	ID           int64          `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	DueDate      sql.NullTime   `db:"due_date"`
	Assignee     sql.NullString `db:"assignee"`
	Urgency      string         `db:"urgency"`
	Status       string         `db:"status"`
	SnoozedUntil sql.NullTime   `db:"snoozed_until"`
	Confidence   float64        `db:"confidence"`
	EmailID      sql.NullInt64  `db:"email_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *taskRow) toDomain() *domain.Task {
	task := &domain.Task{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		Urgency:    domain.TaskUrgency(r.Urgency),
		Status:     domain.TaskStatus(r.Status),
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.Description.Valid {
		task.Description = r.Description.String
	}
	if r.DueDate.Valid {
		task.DueDate = &r.DueDate.Time
	}
	if r.Assignee.Valid {
		task.Assignee = &r.Assignee.String
	}
	if r.SnoozedUntil.Valid {
		task.SnoozedUntil = &r.SnoozedUntil.Time
	}
	if r.EmailID.Valid {
		task.EmailID = &r.EmailID.Int64
	}
	return task
}

type correctionRow struct {
	ID        int64     `db:"id"`
	TaskID    int64     `db:"task_id"`
	UserID    uuid.UUID `db:"user_id"`
	Field     string    `db:"field"`
	Original  string    `db:"original"`
	Corrected string    `db:"corrected"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *correctionRow) toDomain() *domain.TaskCorrection {
	return &domain.TaskCorrection{
		ID:        r.ID,
		TaskID:    r.TaskID,
		UserID:    r.UserID,
		Field:     r.Field,
		Original:  r.Original,
		Corrected: r.Corrected,
		CreatedAt: r.CreatedAt,
	}
}

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
	"github.com/lib/pq"
)

const eventColumns = `id, user_id, title, description, location,
	start_time, end_time, status, attendees, email_id,
	created_at, updated_at`

// EventRepository implements out.EventRepository
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sqlx.DB) out.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE id = $1`, eventColumns)

	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return row.toDomain(), nil
}

func (r *EventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.CalendarEvent, int, error) {
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

	if filter.StartFrom != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argIdx))
		args = append(args, *filter.StartFrom)
		argIdx++
	}

	if filter.StartTo != nil {
		conditions = append(conditions, fmt.Sprintf("start_time <= $%d", argIdx))
		args = append(args, *filter.StartTo)
		argIdx++
	}

	if filter.EmailID != nil {
		conditions = append(conditions, fmt.Sprintf("email_id = $%d", argIdx))
		args = append(args, *filter.EmailID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM calendar_events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM calendar_events
		WHERE %s
		ORDER BY start_time NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d`,
		eventColumns, whereClause, argIdx, argIdx+1)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	events := make([]*domain.CalendarEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toDomain()
	}
	return events, total, nil
}

func (r *EventRepository) Create(ctx context.Context, event *domain.CalendarEvent) error {
	if event.ID == 0 {
		event.ID = snowflake.ID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = time.Now()

	query := `
		INSERT INTO calendar_events (
			id, user_id, title, description, location,
			start_time, end_time, status, attendees, email_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, event.Status, pq.Array(event.Attendees),
		event.EmailID, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status domain.EventStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE calendar_events SET status = $2, updated_at = $3 WHERE id = $1",
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// =============================================================================
// Row mapping
// =============================================================================

type eventRow struct {
	ID          int64          `db:"id"`
	UserID      uuid.UUID      `db:"user_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Location    sql.NullString `db:"location"`
	StartTime   sql.NullTime   `db:"start_time"`
	EndTime     sql.NullTime   `db:"end_time"`
	Status      string         `db:"status"`
	Attendees   pq.StringArray `db:"attendees"`
	EmailID     int64          `db:"email_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *eventRow) toDomain() *domain.CalendarEvent {
	event := &domain.CalendarEvent{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Status:    domain.EventStatus(r.Status),
		EmailID:   r.EmailID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if r.Description.Valid {
		event.Description = &r.Description.String
	}
	if r.Location.Valid {
		event.Location = &r.Location.String
	}
	if r.StartTime.Valid {
		event.StartTime = &r.StartTime.Time
	}
	if r.EndTime.Valid {
		event.EndTime = &r.EndTime.Time
	}
	if r.Attendees != nil {
		event.Attendees = []string(r.Attendees)
	}
	return event
}

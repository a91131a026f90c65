// Package persistence implements the outbound repository ports on Postgres.
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

const emailColumns = `id, user_id, from_email, to_email, subject, body, type,
	is_read, is_starred,
	ai_summary, ai_category, ai_priority, ai_sentiment, ai_action_required,
	ai_confidence, ai_key_points,
	received_at, created_at, updated_at`

// EmailRepository implements out.EmailRepository
type EmailRepository struct {
	db *sqlx.DB
}

// NewEmailRepository creates a new EmailRepository
func NewEmailRepository(db *sqlx.DB) out.EmailRepository {
	return &EmailRepository{db: db}
}

func (r *EmailRepository) GetByID(ctx context.Context, id int64) (*domain.Email, error) {
	query := fmt.Sprintf(`SELECT %s FROM emails WHERE id = $1`, emailColumns)

	var row emailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get email: %w", err)
	}
	return row.toDomain(), nil
}

// GetByIDs returns the user's emails among ids, preserving request order.
func (r *EmailRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []int64) ([]*domain.Email, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM emails WHERE user_id = $1 AND id = ANY($2)`, emailColumns)

	var rows []emailRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get emails by ids: %w", err)
	}

	byID := make(map[int64]*domain.Email, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toDomain()
	}
	emails := make([]*domain.Email, 0, len(rows))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			emails = append(emails, e)
		}
	}
	return emails, nil
}

func (r *EmailRepository) List(ctx context.Context, filter *domain.EmailFilter) ([]*domain.Email, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, filter.UserID)
	argIdx++

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("ai_category = $%d", argIdx))
		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("ai_priority = $%d", argIdx))
		args = append(args, *filter.Priority)
		argIdx++
	}

	if filter.IsRead != nil {
		conditions = append(conditions, fmt.Sprintf("is_read = $%d", argIdx))
		args = append(args, *filter.IsRead)
		argIdx++
	}

	if filter.IsStarred != nil {
		conditions = append(conditions, fmt.Sprintf("is_starred = $%d", argIdx))
		args = append(args, *filter.IsStarred)
		argIdx++
	}

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(subject ILIKE $%d OR body ILIKE $%d OR from_email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM emails WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count emails: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM emails
		WHERE %s
		ORDER BY received_at DESC
		LIMIT $%d OFFSET $%d`,
		emailColumns, whereClause, argIdx, argIdx+1)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	var rows []emailRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list emails: %w", err)
	}

	emails := make([]*domain.Email, len(rows))
	for i, row := range rows {
		emails[i] = row.toDomain()
	}
	return emails, total, nil
}

func (r *EmailRepository) Create(ctx context.Context, email *domain.Email) error {
	if email.ID == 0 {
		email.ID = snowflake.ID()
	}
	now := time.Now()
	if email.CreatedAt.IsZero() {
		email.CreatedAt = now
	}
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = now
	}
	email.UpdatedAt = now

	query := `
		INSERT INTO emails (
			id, user_id, from_email, to_email, subject, body, type,
			is_read, is_starred,
			ai_summary, ai_category, ai_priority, ai_sentiment,
			ai_action_required, ai_confidence, ai_key_points,
			received_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)`

	_, err := r.db.ExecContext(ctx, query,
		email.ID, email.UserID, email.FromEmail, email.ToEmail,
		email.Subject, email.Body, email.Type,
		email.IsRead, email.IsStarred,
		email.AISummary, email.AICategory, email.AIPriority, email.AISentiment,
		email.AIActionRequired, email.AIConfidence, pq.Array(email.AIKeyPoints),
		email.ReceivedAt, email.CreatedAt, email.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create email: %w", err)
	}
	return nil
}

func (r *EmailRepository) Update(ctx context.Context, email *domain.Email) error {
	email.UpdatedAt = time.Now()

	query := `
		UPDATE emails SET
			from_email = $2, to_email = $3, subject = $4, body = $5,
			type = $6, is_read = $7, is_starred = $8, updated_at = $9
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		email.ID, email.FromEmail, email.ToEmail, email.Subject, email.Body,
		email.Type, email.IsRead, email.IsStarred, email.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

// UpdateAnalysis overwrites only the AI-derived columns; re-analysis replaces
// the previous values in place.
func (r *EmailRepository) UpdateAnalysis(ctx context.Context, id int64, res *domain.AnalysisResult) error {
	query := `
		UPDATE emails SET
			ai_summary = $2, ai_category = $3, ai_priority = $4,
			ai_sentiment = $5, ai_action_required = $6, ai_confidence = $7,
			ai_key_points = $8, updated_at = $9
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		id, res.Summary, res.Category, res.Priority,
		res.Sentiment, res.ActionRequired, res.Confidence,
		pq.Array(res.KeyPoints), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update email analysis: %w", err)
	}
	return nil
}

func (r *EmailRepository) SetRead(ctx context.Context, id int64, read bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE emails SET is_read = $2, updated_at = $3 WHERE id = $1",
		id, read, time.Now())
	if err != nil {
		return fmt.Errorf("set email read: %w", err)
	}
	return nil
}

func (r *EmailRepository) SetStarred(ctx context.Context, id int64, starred bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE emails SET is_starred = $2, updated_at = $3 WHERE id = $1",
		id, starred, time.Now())
	if err != nil {
		return fmt.Errorf("set email starred: %w", err)
	}
	return nil
}

// Delete removes the email together with its derived records: linked tasks
// keep their row with the email reference nulled, linked events go with the
// email. All three statements share one transaction.
func (r *EmailRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET email_id = NULL, updated_at = $2 WHERE email_id = $1",
		id, time.Now()); err != nil {
		return fmt.Errorf("unlink tasks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM calendar_events WHERE email_id = $1", id); err != nil {
		return fmt.Errorf("delete linked events: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM emails WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete email: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// =============================================================================
// Row mapping
// =============================================================================

type emailRow struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	FromEmail string    `db:"from_email"`
	ToEmail   string    `db:"to_email"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	Type      string    `db:"type"`
	IsRead    bool      `db:"is_read"`
	IsStarred bool      `db:"is_starred"`

	AISummary        sql.NullString  `db:"ai_summary"`
	AICategory       sql.NullString  `db:"ai_category"`
	AIPriority       sql.NullString  `db:"ai_priority"`
	AISentiment      sql.NullString  `db:"ai_sentiment"`
	AIActionRequired sql.NullBool    `db:"ai_action_required"`
	AIConfidence     sql.NullFloat64 `db:"ai_confidence"`
	AIKeyPoints      pq.StringArray  `db:"ai_key_points"`

	ReceivedAt time.Time `db:"received_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *emailRow) toDomain() *domain.Email {
	email := &domain.Email{
		ID:         r.ID,
		UserID:     r.UserID,
		FromEmail:  r.FromEmail,
		ToEmail:    r.ToEmail,
		Subject:    r.Subject,
		Body:       r.Body,
		Type:       domain.EmailType(r.Type),
		IsRead:     r.IsRead,
		IsStarred:  r.IsStarred,
		ReceivedAt: r.ReceivedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.AISummary.Valid {
		email.AISummary = &r.AISummary.String
	}
	if r.AICategory.Valid {
		category := domain.EmailCategory(r.AICategory.String)
		email.AICategory = &category
	}
	if r.AIPriority.Valid {
		priority := domain.EmailPriority(r.AIPriority.String)
		email.AIPriority = &priority
	}
	if r.AISentiment.Valid {
		sentiment := domain.Sentiment(r.AISentiment.String)
		email.AISentiment = &sentiment
	}
	if r.AIActionRequired.Valid {
		email.AIActionRequired = &r.AIActionRequired.Bool
	}
	if r.AIConfidence.Valid {
		email.AIConfidence = &r.AIConfidence.Float64
	}
	if r.AIKeyPoints != nil {
		email.AIKeyPoints = []string(r.AIKeyPoints)
	}
	return email
}

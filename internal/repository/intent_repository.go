package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

const pgUniqueViolation = "23505"

const intentColumns = `id, message_id, community_id, intent_type, confidence, details, detected_by, is_processed, processed_at, processed_by, created_at, updated_at`

// IntentRepository persists message intents. The message_id column
// carries a unique constraint; it is the backstop for at-most-once
// classification under concurrent first views.
type IntentRepository struct {
	db *sqlx.DB
}

// NewIntentRepository constructs the repository.
func NewIntentRepository(db *sqlx.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

// GetByMessageID returns the intent stored for a message, if any.
func (r *IntentRepository) GetByMessageID(ctx context.Context, messageID string) (*models.MessageIntent, error) {
	query := fmt.Sprintf("SELECT %s FROM message_intents WHERE message_id = $1 LIMIT 1", intentColumns)
	var intent models.MessageIntent
	if err := r.db.GetContext(ctx, &intent, query, messageID); err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetByID fetches an intent by primary key.
func (r *IntentRepository) GetByID(ctx context.Context, id string) (*models.MessageIntent, error) {
	query := fmt.Sprintf("SELECT %s FROM message_intents WHERE id = $1", intentColumns)
	var intent models.MessageIntent
	if err := r.db.GetContext(ctx, &intent, query, id); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Create inserts a new intent row. A unique violation on message_id is
// reported as ErrConflict so the caller can fall back to a re-read of the
// winning row.
func (r *IntentRepository) Create(ctx context.Context, intent *models.MessageIntent) error {
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now
	}
	intent.UpdatedAt = now

	query := `INSERT INTO message_intents (id, message_id, community_id, intent_type, confidence, details, detected_by, is_processed, processed_at, processed_by, created_at, updated_at)
VALUES (:id, :message_id, :community_id, :intent_type, :confidence, :details, :detected_by, :is_processed, :processed_at, :processed_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, intent); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "intent already exists for message")
		}
		return fmt.Errorf("create intent: %w", err)
	}
	return nil
}

// UpdateDetails stores admin field corrections made prior to confirmation.
func (r *IntentRepository) UpdateDetails(ctx context.Context, id string, details models.IntentDetails) error {
	query := `UPDATE message_intents SET details = $1, updated_at = $2 WHERE id = $3 AND is_processed = FALSE`
	res, err := r.db.ExecContext(ctx, query, details, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update intent details: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update intent details: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkProcessed flips the processed flag, stamping processed_at and
// processed_by together. A second call is a conflict, not a no-op.
func (r *IntentRepository) MarkProcessed(ctx context.Context, id, processedBy string) error {
	query := `UPDATE message_intents SET is_processed = TRUE, processed_at = $1, processed_by = $2, updated_at = $1 WHERE id = $3 AND is_processed = FALSE`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), processedBy, id)
	if err != nil {
		return fmt.Errorf("mark intent processed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark intent processed: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrIntentProcessed, "intent already processed or missing")
	}
	return nil
}

// List returns intents for a community with pagination.
func (r *IntentRepository) List(ctx context.Context, filter models.IntentFilter) ([]models.MessageIntent, int, error) {
	base := "FROM message_intents"
	where := []string{"community_id = $1"}
	args := []interface{}{filter.CommunityID}
	if filter.Unprocessed {
		where = append(where, "is_processed = FALSE")
	}
	if filter.IntentType != nil {
		where = append(where, fmt.Sprintf("intent_type = $%d", len(args)+1))
		args = append(args, string(*filter.IntentType))
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		intentColumns, base, whereClause, size, offset)
	var intents []models.MessageIntent
	if err := r.db.SelectContext(ctx, &intents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list intents: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count intents: %w", err)
	}
	return intents, total, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/commune-chat/intent-api/internal/models"
)

const notificationColumns = `id, community_id, message_id, recipient_id, intent_type, intent_details, created_by, created_at, is_read, read_at`

// NotificationRepository persists per-admin notification rows.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a single recipient's notification row. Fan-out callers
// invoke this once per admin so a failure for one recipient never blocks
// the rest.
func (r *NotificationRepository) Create(ctx context.Context, n *models.AdminNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO admin_notifications (id, community_id, message_id, recipient_id, intent_type, intent_details, created_by, created_at, is_read, read_at)
VALUES (:id, :community_id, :message_id, :recipient_id, :intent_type, :intent_details, :created_by, :created_at, :is_read, :read_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForRecipient returns one admin's notifications, newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, filter models.NotificationFilter) ([]models.AdminNotification, int, error) {
	base := "FROM admin_notifications"
	where := []string{"recipient_id = $1"}
	args := []interface{}{filter.RecipientID}
	if filter.CommunityID != "" {
		where = append(where, fmt.Sprintf("community_id = $%d", len(args)+1))
		args = append(args, filter.CommunityID)
	}
	if filter.UnreadOnly {
		where = append(where, "is_read = FALSE")
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
		notificationColumns, base, whereClause, size, offset)
	var notifications []models.AdminNotification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags one recipient's row as read. Read state is independent
// per admin; marking is scoped to the recipient to stop cross-admin
// acknowledgement.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	query := `UPDATE admin_notifications SET is_read = TRUE, read_at = $1 WHERE id = $2 AND recipient_id = $3 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountForMessage reports how many fan-out rows exist for a message.
func (r *NotificationRepository) CountForMessage(ctx context.Context, messageID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM admin_notifications WHERE message_id = $1", messageID); err != nil {
		return 0, fmt.Errorf("count notifications for message: %w", err)
	}
	return total, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/commune-chat/intent-api/internal/models"
)

// CalendarRepository persists events materialized from confirmed intents.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create inserts a calendar event. Tags are stored as a text array.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	query := `INSERT INTO calendar_events (id, community_id, title, description, start_time, end_time, location, is_online, meeting_url, capacity, tags, source_intent_id, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.CommunityID, event.Title, event.Description,
		event.StartTime, event.EndTime, event.Location, event.IsOnline,
		event.MeetingURL, event.Capacity, pq.Array(event.Tags),
		event.SourceIntentID, event.CreatedBy, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// GetByID fetches a calendar event.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	const query = `SELECT id, community_id, title, description, start_time, end_time, location, is_online, meeting_url, capacity, tags, source_intent_id, created_by, created_at, updated_at
FROM calendar_events WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	return scanCalendarEvent(row)
}

// List returns events for a community within an optional window.
func (r *CalendarRepository) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	base := "FROM calendar_events"
	where := []string{"community_id = $1"}
	args := []interface{}{filter.CommunityID}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, community_id, title, description, start_time, end_time, location, is_online, meeting_url, capacity, tags, source_intent_id, created_by, created_at, updated_at
%s WHERE %s ORDER BY start_time ASC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		event, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCalendarEvent(row rowScanner) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	var tags pq.StringArray
	err := row.Scan(
		&event.ID, &event.CommunityID, &event.Title, &event.Description,
		&event.StartTime, &event.EndTime, &event.Location, &event.IsOnline,
		&event.MeetingURL, &event.Capacity, &tags,
		&event.SourceIntentID, &event.CreatedBy, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Tags = []string(tags)
	return &event, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type materializeIntentRepository interface {
	GetByID(ctx context.Context, id string) (*models.MessageIntent, error)
	UpdateDetails(ctx context.Context, id string, details models.IntentDetails) error
	MarkProcessed(ctx context.Context, id, processedBy string) error
}

type calendarRepository interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
}

type postRepository interface {
	Create(ctx context.Context, post *models.CommunityPost) error
}

type roleResolver interface {
	Role(ctx context.Context, communityID, userID string) (models.UserRole, error)
}

// MaterializeService turns a confirmed event intent into a calendar
// event plus an announcement post, then retires the intent.
type MaterializeService struct {
	intents         materializeIntentRepository
	calendar        calendarRepository
	posts           postRepository
	membership      roleResolver
	metrics         *MetricsService
	logger          *zap.Logger
	defaultDuration time.Duration
}

// NewMaterializeService constructs the service.
func NewMaterializeService(intents materializeIntentRepository, calendar calendarRepository, posts postRepository, membership roleResolver, metrics *MetricsService, logger *zap.Logger, defaultDuration time.Duration) *MaterializeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDuration <= 0 {
		defaultDuration = 60 * time.Minute
	}
	return &MaterializeService{
		intents:         intents,
		calendar:        calendar,
		posts:           posts,
		membership:      membership,
		metrics:         metrics,
		logger:          logger,
		defaultDuration: defaultDuration,
	}
}

// Confirm materializes an event intent on behalf of an admin. The edited
// details, when supplied, replace the stored event details before
// validation. The writes are sequential and never rolled back: a created
// calendar event stands even if the announcement post or the processed
// flag fails afterwards.
func (s *MaterializeService) Confirm(ctx context.Context, intentID, adminID string, edited *models.EventDetails) (*models.CalendarEvent, error) {
	record, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intent")
	}
	if record.IsProcessed {
		return nil, appErrors.Clone(appErrors.ErrIntentProcessed, "intent already processed")
	}
	if record.IntentType != models.IntentTypeEvent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only event intents can be confirmed into calendar events")
	}

	role, err := s.membership.Role(ctx, record.CommunityID, adminID)
	if err != nil {
		return nil, err
	}
	if !role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can confirm intents")
	}

	if edited != nil {
		details := models.IntentDetails{Type: models.IntentTypeEvent, Event: edited}
		if err := s.intents.UpdateDetails(ctx, intentID, details); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrIntentProcessed, "intent already processed")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store edited details")
		}
		record.Details = details
	}

	details := record.Details.Event
	if details == nil || details.Date == nil || *details.Date == "" || details.Time == nil || *details.Time == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event date and time are required before confirmation")
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", *details.Date+" "+*details.Time, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event date or time is malformed")
	}

	duration := s.defaultDuration
	if details.SuggestedDuration != nil && *details.SuggestedDuration > 0 {
		duration = time.Duration(*details.SuggestedDuration) * time.Minute
	}
	end := start.Add(duration)
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event must end after it starts")
	}

	title := details.Title
	if title == "" {
		title = "Community Event"
	}

	event := &models.CalendarEvent{
		CommunityID:    record.CommunityID,
		Title:          title,
		Description:    details.Description,
		StartTime:      start,
		EndTime:        end,
		Location:       details.Location,
		IsOnline:       details.IsOnline,
		MeetingURL:     details.MeetingURL,
		Capacity:       details.SuggestedCapacity,
		Tags:           details.Tags,
		SourceIntentID: record.ID,
		CreatedBy:      adminID,
	}
	if err := s.calendar.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar event")
	}

	post := &models.CommunityPost{
		CommunityID: record.CommunityID,
		AuthorID:    adminID,
		Content:     announcementContent(event),
		PostType:    models.PostTypeEventAnnouncement,
		EventID:     &event.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Warn("announcement post failed, event stands",
			zap.String("event_id", event.ID), zap.Error(err))
	}

	if err := s.intents.MarkProcessed(ctx, intentID, adminID); err != nil {
		s.logger.Warn("processed flag update failed after event creation",
			zap.String("intent_id", intentID), zap.String("event_id", event.ID), zap.Error(err))
		return event, err
	}

	s.metrics.RecordMaterialization()
	s.logger.Info("intent materialized",
		zap.String("intent_id", intentID),
		zap.String("event_id", event.ID),
		zap.String("confirmed_by", adminID),
	)
	return event, nil
}

// EditDetails stores admin corrections on an unprocessed event intent
// without confirming it.
func (s *MaterializeService) EditDetails(ctx context.Context, intentID, adminID string, edited *models.EventDetails) (*models.MessageIntent, error) {
	if edited == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "details are required")
	}

	record, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intent")
	}
	if record.IntentType != models.IntentTypeEvent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only event intents carry editable details")
	}

	role, err := s.membership.Role(ctx, record.CommunityID, adminID)
	if err != nil {
		return nil, err
	}
	if !role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can edit intent details")
	}

	details := models.IntentDetails{Type: models.IntentTypeEvent, Event: edited}
	if err := s.intents.UpdateDetails(ctx, intentID, details); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrIntentProcessed, "intent already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store edited details")
	}
	record.Details = details
	return record, nil
}

// Dismiss acknowledges an admin discarding an intent from their review
// view. Dismissal is view-side only: the row keeps its unprocessed state
// and stays confirmable by any admin, so nothing is written beyond the
// access checks.
func (s *MaterializeService) Dismiss(ctx context.Context, intentID, adminID string) error {
	record, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intent not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intent")
	}

	role, err := s.membership.Role(ctx, record.CommunityID, adminID)
	if err != nil {
		return err
	}
	if !role.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can dismiss intents")
	}

	s.logger.Info("intent dismissed from view",
		zap.String("intent_id", intentID),
		zap.String("dismissed_by", adminID),
	)
	return nil
}

// GetEvent fetches one calendar event.
func (s *MaterializeService) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	event, err := s.calendar.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// ListEvents returns a community's calendar events.
func (s *MaterializeService) ListEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	events, total, err := s.calendar.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

func announcementContent(event *models.CalendarEvent) string {
	when := event.StartTime.Format("Monday, Jan 2 at 15:04")
	where := "online"
	if !event.IsOnline {
		where = "in person"
		if event.Location != nil && *event.Location != "" {
			where = *event.Location
		}
	}
	return fmt.Sprintf("New event: %s on %s (%s)", event.Title, when, where)
}

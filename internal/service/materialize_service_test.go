package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type stubMaterializeIntents struct {
	record         *models.MessageIntent
	getErr         error
	updateErr      error
	markErr        error
	updatedDetails *models.IntentDetails
	processedBy    string
}

func (s *stubMaterializeIntents) GetByID(_ context.Context, _ string) (*models.MessageIntent, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

func (s *stubMaterializeIntents) UpdateDetails(_ context.Context, _ string, details models.IntentDetails) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedDetails = &details
	return nil
}

func (s *stubMaterializeIntents) MarkProcessed(_ context.Context, _, processedBy string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.processedBy = processedBy
	return nil
}

type stubCalendarRepo struct {
	created   *models.CalendarEvent
	createErr error
}

func (s *stubCalendarRepo) Create(_ context.Context, event *models.CalendarEvent) error {
	if s.createErr != nil {
		return s.createErr
	}
	event.ID = "event-1"
	s.created = event
	return nil
}

func (s *stubCalendarRepo) GetByID(_ context.Context, _ string) (*models.CalendarEvent, error) {
	if s.created == nil {
		return nil, sql.ErrNoRows
	}
	return s.created, nil
}

func (s *stubCalendarRepo) List(_ context.Context, _ models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	if s.created == nil {
		return nil, 0, nil
	}
	return []models.CalendarEvent{*s.created}, 1, nil
}

type stubPostRepo struct {
	created   *models.CommunityPost
	createErr error
}

func (s *stubPostRepo) Create(_ context.Context, post *models.CommunityPost) error {
	if s.createErr != nil {
		return s.createErr
	}
	post.ID = "post-1"
	s.created = post
	return nil
}

type stubRoleResolver struct {
	role models.UserRole
	err  error
}

func (s *stubRoleResolver) Role(_ context.Context, _, _ string) (models.UserRole, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.role, nil
}

func confirmableIntent() *models.MessageIntent {
	date := "2026-04-21"
	startTime := "09:00"
	duration := 90
	location := "community center"
	return &models.MessageIntent{
		ID:          "intent-1",
		MessageID:   "msg-1",
		CommunityID: "comm-1",
		IntentType:  models.IntentTypeEvent,
		Confidence:  0.75,
		Details: models.IntentDetails{
			Type: models.IntentTypeEvent,
			Event: &models.EventDetails{
				Title:             "Spring Picnic",
				Description:       "picnic next Tuesday",
				Date:              &date,
				Time:              &startTime,
				Location:          &location,
				SuggestedDuration: &duration,
				Tags:              []string{"outdoors"},
			},
		},
	}
}

func newMaterializeFixture(record *models.MessageIntent, role models.UserRole) (*MaterializeService, *stubMaterializeIntents, *stubCalendarRepo, *stubPostRepo) {
	intents := &stubMaterializeIntents{record: record}
	calendar := &stubCalendarRepo{}
	posts := &stubPostRepo{}
	svc := NewMaterializeService(intents, calendar, posts, &stubRoleResolver{role: role}, nil, nil, time.Hour)
	return svc, intents, calendar, posts
}

func TestConfirmCreatesEventAndPost(t *testing.T) {
	svc, intents, calendar, posts := newMaterializeFixture(confirmableIntent(), models.RoleAdmin)

	event, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "Spring Picnic", event.Title)
	assert.Equal(t, time.Date(2026, 4, 21, 9, 0, 0, 0, time.UTC), event.StartTime)
	assert.Equal(t, time.Date(2026, 4, 21, 10, 30, 0, 0, time.UTC), event.EndTime)
	assert.Equal(t, "intent-1", event.SourceIntentID)
	assert.Equal(t, "admin-1", event.CreatedBy)
	require.NotNil(t, event.Location)
	assert.Equal(t, "community center", *event.Location)

	require.NotNil(t, calendar.created)
	require.NotNil(t, posts.created)
	assert.Equal(t, models.PostTypeEventAnnouncement, posts.created.PostType)
	require.NotNil(t, posts.created.EventID)
	assert.Equal(t, "event-1", *posts.created.EventID)
	assert.Equal(t, "admin-1", intents.processedBy)
}

func TestConfirmDefaultsDurationWhenMissing(t *testing.T) {
	record := confirmableIntent()
	record.Details.Event.SuggestedDuration = nil
	svc, _, _, _ := newMaterializeFixture(record, models.RoleCoAdmin)

	event, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, event.EndTime.Sub(event.StartTime))
}

func TestConfirmRequiresDateAndTime(t *testing.T) {
	record := confirmableIntent()
	record.Details.Event.Time = nil
	svc, _, calendar, _ := newMaterializeFixture(record, models.RoleAdmin)

	_, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, calendar.created)
}

func TestConfirmRejectsNonEventIntent(t *testing.T) {
	record := confirmableIntent()
	record.IntentType = models.IntentTypeQuestion
	svc, _, calendar, _ := newMaterializeFixture(record, models.RoleAdmin)

	_, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, calendar.created)
}

func TestConfirmRejectsProcessedIntent(t *testing.T) {
	record := confirmableIntent()
	record.IsProcessed = true
	svc, _, calendar, _ := newMaterializeFixture(record, models.RoleAdmin)

	_, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrIntentProcessed.Code, appErrors.FromError(err).Code)
	assert.Nil(t, calendar.created)
}

func TestConfirmRejectsNonAdmin(t *testing.T) {
	svc, _, calendar, _ := newMaterializeFixture(confirmableIntent(), models.RoleMember)

	_, err := svc.Confirm(context.Background(), "intent-1", "member-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, calendar.created)
}

func TestConfirmAppliesEditedDetails(t *testing.T) {
	svc, intents, _, _ := newMaterializeFixture(confirmableIntent(), models.RoleAdmin)

	date := "2026-05-01"
	startTime := "18:30"
	edited := &models.EventDetails{Title: "Evening Picnic", Date: &date, Time: &startTime}

	event, err := svc.Confirm(context.Background(), "intent-1", "admin-1", edited)
	require.NoError(t, err)

	assert.Equal(t, "Evening Picnic", event.Title)
	assert.Equal(t, time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC), event.StartTime)
	require.NotNil(t, intents.updatedDetails)
	assert.Equal(t, "Evening Picnic", intents.updatedDetails.Event.Title)
}

func TestConfirmPostFailureLeavesEventStanding(t *testing.T) {
	svc, intents, calendar, posts := newMaterializeFixture(confirmableIntent(), models.RoleAdmin)
	posts.createErr = errors.New("feed unavailable")

	event, err := svc.Confirm(context.Background(), "intent-1", "admin-1", nil)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.NotNil(t, calendar.created)
	assert.Equal(t, "admin-1", intents.processedBy)
}

func TestConfirmMissingIntent(t *testing.T) {
	intents := &stubMaterializeIntents{getErr: sql.ErrNoRows}
	svc := NewMaterializeService(intents, &stubCalendarRepo{}, &stubPostRepo{}, &stubRoleResolver{role: models.RoleAdmin}, nil, nil, time.Hour)

	_, err := svc.Confirm(context.Background(), "missing", "admin-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEditDetailsStoresCorrections(t *testing.T) {
	svc, intents, calendar, _ := newMaterializeFixture(confirmableIntent(), models.RoleAdmin)

	date := "2026-05-02"
	startTime := "10:00"
	edited := &models.EventDetails{Title: "Morning Hike", Date: &date, Time: &startTime}

	record, err := svc.EditDetails(context.Background(), "intent-1", "admin-1", edited)
	require.NoError(t, err)

	assert.Equal(t, "Morning Hike", record.Details.Event.Title)
	require.NotNil(t, intents.updatedDetails)
	assert.Equal(t, "Morning Hike", intents.updatedDetails.Event.Title)
	assert.Nil(t, calendar.created)
	assert.Empty(t, intents.processedBy)
}

func TestEditDetailsRejectsNonAdmin(t *testing.T) {
	svc, intents, _, _ := newMaterializeFixture(confirmableIntent(), models.RoleMember)

	_, err := svc.EditDetails(context.Background(), "intent-1", "member-1", &models.EventDetails{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, intents.updatedDetails)
}

func TestDismissLeavesIntentUntouched(t *testing.T) {
	svc, intents, calendar, _ := newMaterializeFixture(confirmableIntent(), models.RoleAdmin)

	require.NoError(t, svc.Dismiss(context.Background(), "intent-1", "admin-1"))
	assert.Empty(t, intents.processedBy)
	assert.Nil(t, intents.updatedDetails)
	assert.Nil(t, calendar.created)

	// Dismissal is per-view; the intent stays confirmable afterwards.
	event, err := svc.Confirm(context.Background(), "intent-1", "admin-2", nil)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "admin-2", intents.processedBy)
}

func TestDismissRejectsNonAdmin(t *testing.T) {
	svc, _, _, _ := newMaterializeFixture(confirmableIntent(), models.RoleMember)

	err := svc.Dismiss(context.Background(), "intent-1", "member-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

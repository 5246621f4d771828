package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/middleware"
	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/internal/service"
	"github.com/commune-chat/intent-api/pkg/jobs"
)

type fakeWorkflowDetector struct {
	record  *models.MessageIntent
	created bool
}

func (f *fakeWorkflowDetector) Detect(_ context.Context, _ models.ChatMessage) (*models.MessageIntent, bool, error) {
	return f.record, f.created, nil
}

type fakeWorkflowNotifier struct {
	calls int
}

func (f *fakeWorkflowNotifier) NotifyAdmins(_ context.Context, _ *models.MessageIntent, _, _ string) (int, error) {
	f.calls++
	return 1, nil
}

type fakeWorkflowLister struct{}

func (f *fakeWorkflowLister) List(_ context.Context, _ models.IntentFilter) ([]models.MessageIntent, int, error) {
	return nil, 0, nil
}

func detectedIntent() *models.MessageIntent {
	return &models.MessageIntent{
		ID:          "intent-1",
		MessageID:   "msg-1",
		CommunityID: "comm-1",
		IntentType:  models.IntentTypeEvent,
		Confidence:  0.75,
		DetectedBy:  models.DetectedByRegex,
		Details:     models.IntentDetails{Type: models.IntentTypeEvent, Event: &models.EventDetails{Title: "Picnic"}},
	}
}

func newWorkflowForTest(record *models.MessageIntent, created bool, notifier *fakeWorkflowNotifier) *service.WorkflowService {
	return service.NewWorkflowService(
		&fakeWorkflowDetector{record: record, created: created},
		notifier,
		&fakeWorkflowLister{},
		jobs.QueueConfig{},
		nil,
	)
}

func ingestRequest(t *testing.T, body string, claims *models.JWTClaims) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return rec, c
}

const validIngestBody = `{"message_id":"msg-1","content":"picnic next Tuesday at 9am","user_id":"user-1","community_id":"comm-1"}`

func TestIngestRejectsInvalidPayload(t *testing.T) {
	h := NewMessageHandler(newWorkflowForTest(detectedIntent(), true, &fakeWorkflowNotifier{}))

	rec, c := ingestRequest(t, `{"content":"hi"}`, &models.JWTClaims{UserID: "user-1", CommunityID: "comm-1", Role: models.RoleMember})
	h.Ingest(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestRejectsCrossCommunityToken(t *testing.T) {
	h := NewMessageHandler(newWorkflowForTest(detectedIntent(), true, &fakeWorkflowNotifier{}))

	rec, c := ingestRequest(t, validIngestBody, &models.JWTClaims{UserID: "user-1", CommunityID: "other", Role: models.RoleMember})
	h.Ingest(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIngestMemberViewTriggersFanout(t *testing.T) {
	notifier := &fakeWorkflowNotifier{}
	h := NewMessageHandler(newWorkflowForTest(detectedIntent(), true, notifier))

	rec, c := ingestRequest(t, validIngestBody, &models.JWTClaims{UserID: "user-1", CommunityID: "comm-1", Role: models.RoleMember})
	h.Ingest(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, notifier.calls)

	var envelope struct {
		Data service.WorkflowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, service.StateNotifiedPending, envelope.Data.State)
	assert.True(t, envelope.Data.Notified)
}

func TestIngestAdminViewSkipsFanout(t *testing.T) {
	notifier := &fakeWorkflowNotifier{}
	h := NewMessageHandler(newWorkflowForTest(detectedIntent(), true, notifier))

	rec, c := ingestRequest(t, validIngestBody, &models.JWTClaims{UserID: "admin-1", CommunityID: "comm-1", Role: models.RoleAdmin})
	h.Ingest(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, notifier.calls)

	var envelope struct {
		Data service.WorkflowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, service.StateAdminReview, envelope.Data.State)
}

func TestIngestRepeatViewReturnsOK(t *testing.T) {
	notifier := &fakeWorkflowNotifier{}
	h := NewMessageHandler(newWorkflowForTest(detectedIntent(), false, notifier))

	rec, c := ingestRequest(t, validIngestBody, &models.JWTClaims{UserID: "user-2", CommunityID: "comm-1", Role: models.RoleMember})
	h.Ingest(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, notifier.calls)
}

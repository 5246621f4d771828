package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/pkg/jobs"
)

type fakeDetector struct {
	record  *models.MessageIntent
	created bool
	err     error
}

func (f *fakeDetector) Detect(_ context.Context, _ models.ChatMessage) (*models.MessageIntent, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.record, f.created, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	excludes []string
	notified chan struct{}
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan struct{}, 4)}
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, _ *models.MessageIntent, _ string, excludeUserID string) (int, error) {
	f.mu.Lock()
	f.excludes = append(f.excludes, excludeUserID)
	f.mu.Unlock()
	f.notified <- struct{}{}
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.excludes)
}

type fakeIntentLister struct {
	filter  models.IntentFilter
	intents []models.MessageIntent
}

func (f *fakeIntentLister) List(_ context.Context, filter models.IntentFilter) ([]models.MessageIntent, int, error) {
	f.filter = filter
	return f.intents, len(f.intents), nil
}

func detectedEventIntent(created bool) *fakeDetector {
	return &fakeDetector{record: eventIntent(0.75), created: created}
}

func workflowMessage() models.ChatMessage {
	return models.ChatMessage{ID: "msg-1", Content: "picnic next Tuesday at 9am", UserID: "user-1", CommunityID: "comm-1"}
}

func TestHandleMessageAdminViewerReviewsInline(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewWorkflowService(detectedEventIntent(true), notifier, &fakeIntentLister{}, jobs.QueueConfig{}, nil)

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, StateAdminReview, result.State)
	assert.True(t, result.Created)
	assert.False(t, result.Notified)
	assert.Zero(t, notifier.calls())
}

func TestHandleMessageNonAdminEnqueuesFanout(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewWorkflowService(detectedEventIntent(true), notifier, &fakeIntentLister{}, jobs.QueueConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, StateNotifiedPending, result.State)
	assert.True(t, result.Notified)

	select {
	case <-notifier.notified:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out never ran")
	}
	assert.Equal(t, []string{"user-1"}, notifier.excludes)
}

func TestHandleMessageExistingIntentNotifiesNobody(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewWorkflowService(detectedEventIntent(false), notifier, &fakeIntentLister{}, jobs.QueueConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, StateDetected, result.State)
	assert.False(t, result.Notified)
	assert.Zero(t, notifier.calls())
}

func TestHandleMessageOtherIntentNotifiesNobody(t *testing.T) {
	notifier := newFakeNotifier()
	record := &models.MessageIntent{ID: "intent-2", MessageID: "msg-1", IntentType: models.IntentTypeOther}
	svc := NewWorkflowService(&fakeDetector{record: record, created: true}, notifier, &fakeIntentLister{}, jobs.QueueConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, StateDetected, result.State)
	assert.Zero(t, notifier.calls())
}

func TestHandleMessageProcessedIntent(t *testing.T) {
	record := eventIntent(0.75)
	record.IsProcessed = true
	svc := NewWorkflowService(&fakeDetector{record: record, created: false}, newFakeNotifier(), &fakeIntentLister{}, jobs.QueueConfig{}, nil)

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, StateProcessed, result.State)
}

func TestHandleMessageQueueDownNotifiesInline(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewWorkflowService(detectedEventIntent(true), notifier, &fakeIntentLister{}, jobs.QueueConfig{}, nil)
	// Queue never started; the fan-out must still happen.

	result, err := svc.HandleMessage(context.Background(), workflowMessage(), models.RoleMember)
	require.NoError(t, err)

	assert.Equal(t, StateNotifiedPending, result.State)
	assert.True(t, result.Notified)
	assert.Equal(t, 1, notifier.calls())
}

func TestListPendingForcesUnprocessedFilter(t *testing.T) {
	lister := &fakeIntentLister{intents: []models.MessageIntent{*eventIntent(0.75)}}
	svc := NewWorkflowService(detectedEventIntent(true), newFakeNotifier(), lister, jobs.QueueConfig{}, nil)

	intents, pagination, err := svc.ListPending(context.Background(), models.IntentFilter{CommunityID: "comm-1"})
	require.NoError(t, err)

	assert.True(t, lister.filter.Unprocessed)
	assert.Equal(t, 1, lister.filter.Page)
	assert.Equal(t, 20, lister.filter.PageSize)
	assert.Len(t, intents, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateDetecting, StateOf(nil, false))

	record := eventIntent(0.75)
	assert.Equal(t, StateDetected, StateOf(record, false))
	assert.Equal(t, StateNotifiedPending, StateOf(record, true))

	record.IsProcessed = true
	assert.Equal(t, StateProcessed, StateOf(record, false))
}

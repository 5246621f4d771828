package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/jobs"
)

// IntentState is the position of an intent in the confirmation workflow.
type IntentState string

const (
	StateDetecting       IntentState = "detecting"
	StateDetected        IntentState = "detected"
	StateAdminReview     IntentState = "admin_review"
	StateNotifiedPending IntentState = "notified_pending"
	StateProcessed       IntentState = "processed"
)

type messageDetector interface {
	Detect(ctx context.Context, msg models.ChatMessage) (*models.MessageIntent, bool, error)
}

type adminNotifier interface {
	NotifyAdmins(ctx context.Context, record *models.MessageIntent, originalMessage, excludeUserID string) (int, error)
}

type workflowIntentRepository interface {
	List(ctx context.Context, filter models.IntentFilter) ([]models.MessageIntent, int, error)
}

// WorkflowResult reports what happened to one handled message.
type WorkflowResult struct {
	Intent   *models.MessageIntent `json:"intent"`
	State    IntentState           `json:"state"`
	Created  bool                  `json:"created"`
	Notified bool                  `json:"notified"`
}

type fanoutJob struct {
	record          *models.MessageIntent
	originalMessage string
	excludeUserID   string
}

// WorkflowService drives a message from detection to either inline admin
// review or an asynchronous admin fan-out, depending on who saw it first.
type WorkflowService struct {
	detector messageDetector
	notifier adminNotifier
	intents  workflowIntentRepository
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewWorkflowService constructs the service. Queue settings come from the
// notifications config; the fan-out retries on insert failures.
func NewWorkflowService(detector messageDetector, notifier adminNotifier, intents workflowIntentRepository, queueCfg jobs.QueueConfig, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WorkflowService{
		detector: detector,
		notifier: notifier,
		intents:  intents,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("admin-fanout", s.handleFanout, queueCfg)
	return s
}

// Start launches the fan-out workers.
func (s *WorkflowService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the fan-out workers.
func (s *WorkflowService) Stop() {
	s.queue.Stop()
}

// HandleMessage runs detection for one message and routes the result.
// Admin viewers get the intent inline for review and no one is notified.
// For non-admin viewers the fan-out is enqueued exactly once, on the call
// that created the row, and only for intents worth reviewing.
func (s *WorkflowService) HandleMessage(ctx context.Context, msg models.ChatMessage, viewerRole models.UserRole) (*WorkflowResult, error) {
	record, created, err := s.detector.Detect(ctx, msg)
	if err != nil {
		return nil, err
	}

	result := &WorkflowResult{Intent: record, Created: created}

	if record.IsProcessed {
		result.State = StateProcessed
		return result, nil
	}

	if viewerRole.IsAdmin() {
		result.State = StateAdminReview
		return result, nil
	}

	if !created || record.IntentType == models.IntentTypeOther {
		result.State = StateDetected
		return result, nil
	}

	job := jobs.Job{
		ID:   fmt.Sprintf("fanout:%s", record.MessageID),
		Type: "admin_fanout",
		Payload: fanoutJob{
			record:          record,
			originalMessage: msg.Content,
			excludeUserID:   msg.UserID,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		// Queue not running (startup or shutdown window): notify inline
		// rather than dropping the fan-out.
		s.logger.Warn("fan-out queue unavailable, notifying inline",
			zap.String("message_id", record.MessageID), zap.Error(err))
		if _, nerr := s.notifier.NotifyAdmins(ctx, record, msg.Content, msg.UserID); nerr != nil {
			s.logger.Error("inline admin fan-out failed",
				zap.String("message_id", record.MessageID), zap.Error(nerr))
			result.State = StateDetected
			return result, nil
		}
	}

	result.State = StateNotifiedPending
	result.Notified = true
	return result, nil
}

func (s *WorkflowService) handleFanout(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(fanoutJob)
	if !ok {
		s.logger.Error("unexpected fan-out payload", zap.String("job_id", job.ID))
		return nil
	}
	_, err := s.notifier.NotifyAdmins(ctx, payload.record, payload.originalMessage, payload.excludeUserID)
	return err
}

// ListPending returns a community's unprocessed intents for admin review.
func (s *WorkflowService) ListPending(ctx context.Context, filter models.IntentFilter) ([]models.MessageIntent, *models.Pagination, error) {
	filter.Unprocessed = true
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	intents, total, err := s.intents.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending intents")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return intents, pagination, nil
}

// StateOf derives the workflow position of a stored intent.
func StateOf(record *models.MessageIntent, notified bool) IntentState {
	switch {
	case record == nil:
		return StateDetecting
	case record.IsProcessed:
		return StateProcessed
	case notified:
		return StateNotifiedPending
	default:
		return StateDetected
	}
}

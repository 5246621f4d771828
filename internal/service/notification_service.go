package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.AdminNotification) error
	ListForRecipient(ctx context.Context, filter models.NotificationFilter) ([]models.AdminNotification, int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	CountForMessage(ctx context.Context, messageID string) (int, error)
}

type adminRosterResolver interface {
	AdminRoster(ctx context.Context, communityID string) ([]string, error)
}

// NotificationService fans a detected intent out to community admins,
// one row per recipient.
type NotificationService struct {
	repo       notificationRepository
	membership adminRosterResolver
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, membership adminRosterResolver, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, membership: membership, metrics: metrics, logger: logger}
}

// NotifyAdmins writes one notification row per admin of the community,
// excluding excludeUserID, the author of the detected message. The
// writes are independent: a failed insert for one admin never blocks the
// rest, and nothing here touches the stored intent. Returns the number
// of rows written; a partial failure surfaces as ErrNotificationPartial.
func (s *NotificationService) NotifyAdmins(ctx context.Context, record *models.MessageIntent, originalMessage, excludeUserID string) (int, error) {
	// A retried fan-out whose first attempt landed any rows counts as
	// delivered; rerunning it would duplicate notifications for the
	// admins that already succeeded.
	existing, err := s.repo.CountForMessage(ctx, record.MessageID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing notifications")
	}
	if existing > 0 {
		s.logger.Debug("fan-out already delivered",
			zap.String("message_id", record.MessageID),
			zap.Int("existing", existing))
		return 0, nil
	}

	admins, err := s.membership.AdminRoster(ctx, record.CommunityID)
	if err != nil {
		return 0, err
	}

	envelope := BuildEnvelope(record, originalMessage)

	written := 0
	failed := 0
	for _, adminID := range admins {
		if adminID == "" || adminID == excludeUserID {
			continue
		}
		n := &models.AdminNotification{
			CommunityID:   record.CommunityID,
			MessageID:     record.MessageID,
			RecipientID:   adminID,
			IntentType:    record.IntentType,
			IntentDetails: envelope,
			CreatedBy:     excludeUserID,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			failed++
			s.logger.Warn("admin notification insert failed",
				zap.String("message_id", record.MessageID),
				zap.String("recipient_id", adminID),
				zap.Error(err))
			continue
		}
		written++
	}

	s.metrics.RecordFanout(written, failed)

	if failed > 0 {
		return written, appErrors.Clone(appErrors.ErrNotificationPartial,
			fmt.Sprintf("%d of %d admin notifications failed", failed, failed+written))
	}
	return written, nil
}

// ListForAdmin returns one admin's notifications.
func (s *NotificationService) ListForAdmin(ctx context.Context, filter models.NotificationFilter) ([]models.AdminNotification, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.ListForRecipient(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// MarkRead flags one notification as read for its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrInternal.Code {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found or already read")
		}
		return err
	}
	return nil
}

// BuildEnvelope assembles the review payload delivered to each admin.
func BuildEnvelope(record *models.MessageIntent, originalMessage string) models.IntentEnvelope {
	envelope := models.IntentEnvelope{
		Type:     record.IntentType,
		Priority: priorityFor(record.IntentType, record.Confidence),
		Summary:  summaryFor(record),
		Category: categoryFor(record.IntentType),
		Details: models.EnvelopeDetails{
			OriginalMessage:  originalMessage,
			SuggestedActions: suggestedActionsFor(record.IntentType),
		},
	}
	if record.Details.Event != nil {
		envelope.Details.ExtractedDetails = record.Details.Event
		envelope.Details.AIGenerated = record.Details.Event.AIGenerated
	}
	return envelope
}

// priorityFor is the single deterministic priority mapping: high for
// confident event intents, medium for other event intents, low for
// everything else. Urgent is reserved and never auto-assigned.
func priorityFor(intentType models.IntentType, confidence float64) models.NotificationPriority {
	if intentType == models.IntentTypeEvent {
		if confidence >= 0.85 {
			return models.NotificationPriorityHigh
		}
		return models.NotificationPriorityMedium
	}
	return models.NotificationPriorityLow
}

func categoryFor(intentType models.IntentType) string {
	switch intentType {
	case models.IntentTypeEvent:
		return "event_scheduling"
	case models.IntentTypeQuestion:
		return "member_question"
	case models.IntentTypeFeedback:
		return "member_feedback"
	case models.IntentTypeAnnouncement:
		return "community_announcement"
	default:
		return "general"
	}
}

func suggestedActionsFor(intentType models.IntentType) []string {
	if intentType == models.IntentTypeEvent {
		return []string{"review_event_details", "create_event", "dismiss"}
	}
	return []string{"review_message", "dismiss"}
}

func summaryFor(record *models.MessageIntent) string {
	if record.Details.Event != nil && record.Details.Event.Title != "" {
		return fmt.Sprintf("Possible event: %s", record.Details.Event.Title)
	}
	return fmt.Sprintf("Detected %s intent", record.IntentType)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/detector"
	"github.com/commune-chat/intent-api/internal/intent"
	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type detectionIntentRepository interface {
	GetByMessageID(ctx context.Context, messageID string) (*models.MessageIntent, error)
	Create(ctx context.Context, intent *models.MessageIntent) error
}

type dedupLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string)
}

type intentDetector interface {
	Enabled() bool
	EnrichmentEnabled() bool
	DetectIntent(ctx context.Context, text, communityID, userID string) (*detector.DetectResult, error)
	Enhance(ctx context.Context, details *models.EventDetails, originalText string) (*models.AIGeneratedDetails, error)
}

// DetectionService runs the classification pipeline for one message:
// idempotency check, external detection with deterministic fallback,
// optional enrichment, then a single persisted intent.
type DetectionService struct {
	repo      detectionIntentRepository
	locker    dedupLocker
	detector  intentDetector
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	lockTTL   time.Duration
	now       func() time.Time
}

// NewDetectionService constructs the service. A nil locker skips the
// best-effort dedup lock; the store's unique constraint still holds.
func NewDetectionService(repo detectionIntentRepository, locker dedupLocker, det intentDetector, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, lockTTL time.Duration) *DetectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &DetectionService{
		repo:      repo,
		locker:    locker,
		detector:  det,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		lockTTL:   lockTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Detect classifies a message and persists the result at most once. The
// second return value reports whether this call created the row; repeat
// invocations for the same message are no-op reads of the stored intent.
func (s *DetectionService) Detect(ctx context.Context, msg models.ChatMessage) (*models.MessageIntent, bool, error) {
	if err := s.validator.Struct(msg); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	if existing, err := s.lookup(ctx, msg.ID); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	if s.locker != nil {
		lockKey := fmt.Sprintf("intent:detect:%s", msg.ID)
		acquired, err := s.locker.AcquireLock(ctx, lockKey, s.lockTTL)
		if err != nil {
			s.logger.Warn("dedup lock unavailable, relying on unique constraint", zap.String("message_id", msg.ID), zap.Error(err))
		} else if !acquired {
			// Another worker is mid-flight. Re-read; if it has not
			// landed yet the caller can simply retry.
			if existing, err := s.lookup(ctx, msg.ID); err != nil {
				return nil, false, err
			} else if existing != nil {
				return existing, false, nil
			}
			return nil, false, appErrors.Clone(appErrors.ErrConflict, "detection already in progress for message")
		} else {
			defer s.locker.ReleaseLock(ctx, lockKey)
		}
	}

	verdict, detectedBy := s.classify(ctx, msg)

	if verdict.Type == models.IntentTypeEvent && verdict.Details.Event != nil {
		s.enrich(ctx, verdict.Details.Event, msg.Content)
	}

	record := &models.MessageIntent{
		MessageID:   msg.ID,
		CommunityID: msg.CommunityID,
		IntentType:  verdict.Type,
		Confidence:  verdict.Confidence,
		Details:     verdict.Details,
		DetectedBy:  detectedBy,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrConflict.Code {
			// Lost the insert race; the winner's row is authoritative.
			if existing, lookupErr := s.lookup(ctx, msg.ID); lookupErr == nil && existing != nil {
				return existing, false, nil
			}
			return nil, false, err
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist intent")
	}

	s.metrics.RecordDetection(record.IntentType, record.DetectedBy)
	s.logger.Info("intent stored",
		zap.String("message_id", msg.ID),
		zap.String("intent_type", string(record.IntentType)),
		zap.String("detected_by", string(record.DetectedBy)),
		zap.Float64("confidence", record.Confidence),
	)

	return record, true, nil
}

func (s *DetectionService) lookup(ctx context.Context, messageID string) (*models.MessageIntent, error) {
	existing, err := s.repo.GetByMessageID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing intent")
	}
	return existing, nil
}

// classify prefers the external detector wholesale; any failure selects
// the deterministic path instead. The two are never blended.
func (s *DetectionService) classify(ctx context.Context, msg models.ChatMessage) (intent.Verdict, models.DetectedBy) {
	var aiVerdict *intent.Verdict

	if s.detector != nil && s.detector.Enabled() {
		start := s.now()
		result, err := s.detector.DetectIntent(ctx, msg.Content, msg.CommunityID, msg.UserID)
		s.metrics.ObserveDetectorCall(time.Since(start))
		if err != nil {
			s.metrics.RecordDetectorFailure()
			s.logger.Warn("detector unavailable, falling back to regex",
				zap.String("message_id", msg.ID), zap.Error(err))
		} else {
			aiVerdict = &intent.Verdict{
				Type:       result.Intent,
				Confidence: result.Confidence,
				Details:    result.Details,
			}
		}
	}

	fallback := intent.Classify(msg.Content, s.now())
	return intent.Merge(aiVerdict, fallback)
}

// enrich runs the optional enhancement pass. Failure is absorbed: the
// pre-enrichment details stay intact.
func (s *DetectionService) enrich(ctx context.Context, details *models.EventDetails, originalText string) {
	if s.detector == nil || !s.detector.EnrichmentEnabled() {
		return
	}
	enriched, err := s.detector.Enhance(ctx, details, originalText)
	if err != nil {
		s.metrics.RecordEnrichmentFailure()
		s.logger.Warn("enrichment failed, keeping extracted details", zap.Error(err))
		return
	}
	intent.ApplyEnrichment(details, enriched)
}

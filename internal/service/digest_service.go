package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/export"
)

type digestIntentRepository interface {
	List(ctx context.Context, filter models.IntentFilter) ([]models.MessageIntent, int, error)
}

// DigestService renders the pending-intent review digest admins download
// before community meetings.
type DigestService struct {
	intents    digestIntentRepository
	exporter   *export.PDFExporter
	maxIntents int
	logger     *zap.Logger
}

// NewDigestService constructs the service.
func NewDigestService(intents digestIntentRepository, exporter *export.PDFExporter, maxIntents int, logger *zap.Logger) *DigestService {
	if exporter == nil {
		exporter = export.NewPDFExporter()
	}
	if maxIntents <= 0 {
		maxIntents = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestService{intents: intents, exporter: exporter, maxIntents: maxIntents, logger: logger}
}

// PendingEventsPDF renders the community's unprocessed event intents as a
// tabular PDF, newest first.
func (s *DigestService) PendingEventsPDF(ctx context.Context, communityID string) ([]byte, string, error) {
	eventType := models.IntentTypeEvent
	filter := models.IntentFilter{
		CommunityID: communityID,
		IntentType:  &eventType,
		Unprocessed: true,
		Page:        1,
		PageSize:    s.maxIntents,
	}
	intents, total, err := s.intents.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending intents")
	}

	data := export.Dataset{
		Headers: []string{"Detected", "Title", "Date", "Time", "Location", "Confidence", "Source"},
	}
	for _, record := range intents {
		row := map[string]string{
			"Detected":   record.CreatedAt.Format("2006-01-02 15:04"),
			"Title":      "",
			"Date":       "-",
			"Time":       "-",
			"Location":   "-",
			"Confidence": fmt.Sprintf("%.2f", record.Confidence),
			"Source":     string(record.DetectedBy),
		}
		if ev := record.Details.Event; ev != nil {
			row["Title"] = ev.Title
			if ev.Date != nil && *ev.Date != "" {
				row["Date"] = *ev.Date
			}
			if ev.Time != nil && *ev.Time != "" {
				row["Time"] = *ev.Time
			}
			if ev.Location != nil && *ev.Location != "" {
				row["Location"] = *ev.Location
			} else if ev.IsOnline {
				row["Location"] = "online"
			}
		}
		data.Rows = append(data.Rows, row)
	}

	title := fmt.Sprintf("Pending event intents (%d)", total)
	pdf, err := s.exporter.Render(data, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render digest")
	}

	filename := fmt.Sprintf("pending-events-%s.pdf", time.Now().UTC().Format("20060102"))
	s.logger.Info("digest rendered", zap.String("community_id", communityID), zap.Int("intents", len(intents)))
	return pdf, filename, nil
}

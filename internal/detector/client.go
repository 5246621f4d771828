// Package detector wraps the external probabilistic intent service and
// the optional detail-enrichment service. Both are remote AI calls: they
// may time out or answer garbage, and callers treat either outcome as
// "unavailable" rather than as a hard failure.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/pkg/config"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

// DetectResult is the external detector's verdict for one message.
type DetectResult struct {
	Intent     models.IntentType    `json:"intent"`
	Confidence float64              `json:"confidence"`
	Details    models.IntentDetails `json:"details"`
}

// Client talks to the detection and enrichment endpoints.
type Client struct {
	cfg    config.DetectorConfig
	enrich config.EnrichmentConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a detector client. The configured timeouts double as
// the per-call context deadlines: a slow detector is an unavailable
// detector. Missing timeouts default to five seconds.
func NewClient(cfg config.DetectorConfig, enrich config.EnrichmentConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if enrich.Timeout <= 0 {
		enrich.Timeout = cfg.Timeout
	}
	return &Client{
		cfg:    cfg,
		enrich: enrich,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enabled reports whether the external detector is configured at all.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.cfg.BaseURL != ""
}

// EnrichmentEnabled reports whether the enhancement pass is configured.
func (c *Client) EnrichmentEnabled() bool {
	return c != nil && c.enrich.Enabled && c.enrich.BaseURL != ""
}

type detectRequest struct {
	Text        string `json:"text"`
	CommunityID string `json:"community_id"`
	UserID      string `json:"user_id"`
}

// DetectIntent asks the external service to classify a message. Any
// transport error, non-2xx status, timeout or malformed body comes back
// as ErrDetectorUnavailable so the caller can fall through to the
// deterministic path.
func (c *Client) DetectIntent(ctx context.Context, text, communityID, userID string) (*DetectResult, error) {
	if !c.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrDetectorUnavailable, "detector disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result DetectResult
	err := c.postJSON(ctx, c.cfg.BaseURL+"/v1/detect", c.cfg.APIKey, detectRequest{
		Text:        text,
		CommunityID: communityID,
		UserID:      userID,
	}, &result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDetectorUnavailable.Code, appErrors.ErrDetectorUnavailable.Status, "intent detection call failed")
	}

	if !validIntentType(result.Intent) || result.Confidence < 0 || result.Confidence > 1 {
		return nil, appErrors.Clone(appErrors.ErrDetectorUnavailable, "detector returned malformed verdict")
	}

	return &result, nil
}

type enhanceRequest struct {
	Details      *models.EventDetails `json:"details"`
	OriginalText string               `json:"original_text"`
}

// Enhance asks the enrichment service for improved event details. Failure
// is non-fatal by contract; callers keep the pre-enrichment details.
func (c *Client) Enhance(ctx context.Context, details *models.EventDetails, originalText string) (*models.AIGeneratedDetails, error) {
	if !c.EnrichmentEnabled() {
		return nil, appErrors.Clone(appErrors.ErrEnrichmentFailed, "enrichment disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, c.enrich.Timeout)
	defer cancel()

	var result models.AIGeneratedDetails
	err := c.postJSON(ctx, c.enrich.BaseURL+"/v1/enhance", c.enrich.APIKey, enhanceRequest{
		Details:      details,
		OriginalText: originalText,
	}, &result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrEnrichmentFailed.Code, appErrors.ErrEnrichmentFailed.Status, "enrichment call failed")
	}

	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, url, apiKey string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("detector call failed", zap.String("url", url), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func validIntentType(t models.IntentType) bool {
	switch t {
	case models.IntentTypeEvent, models.IntentTypeFeedback, models.IntentTypeQuestion,
		models.IntentTypeAnnouncement, models.IntentTypeOther:
		return true
	}
	return false
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationPriority orders admin notifications.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// IntentEnvelope is the payload delivered to each admin when an
// unconfirmed intent is detected.
type IntentEnvelope struct {
	Type     IntentType           `json:"type"`
	Priority NotificationPriority `json:"priority"`
	Summary  string               `json:"summary"`
	Category string               `json:"category"`
	Details  EnvelopeDetails      `json:"details"`
}

// EnvelopeDetails carries the extraction context for admin review.
type EnvelopeDetails struct {
	OriginalMessage  string              `json:"original_message"`
	ExtractedDetails *EventDetails       `json:"extracted_details,omitempty"`
	AIGenerated      *AIGeneratedDetails `json:"ai_generated_details,omitempty"`
	SuggestedActions []string            `json:"suggested_actions"`
}

// Value implements driver.Valuer so envelopes persist as JSONB.
func (e IntentEnvelope) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *IntentEnvelope) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	case nil:
		*e = IntentEnvelope{}
		return nil
	default:
		return fmt.Errorf("unsupported envelope type %T", src)
	}
}

// AdminNotification is one fan-out row per admin recipient. Read state is
// tracked per recipient, not shared.
type AdminNotification struct {
	ID            string         `db:"id" json:"id"`
	CommunityID   string         `db:"community_id" json:"community_id"`
	MessageID     string         `db:"message_id" json:"message_id"`
	RecipientID   string         `db:"recipient_id" json:"recipient_id"`
	IntentType    IntentType     `db:"intent_type" json:"intent_type"`
	IntentDetails IntentEnvelope `db:"intent_details" json:"intent_details"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	IsRead        bool           `db:"is_read" json:"is_read"`
	ReadAt        *time.Time     `db:"read_at" json:"read_at,omitempty"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	RecipientID string
	CommunityID string
	UnreadOnly  bool
	Page        int
	PageSize    int
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// IntentType classifies what a chat message is trying to accomplish.
type IntentType string

const (
	IntentTypeEvent        IntentType = "event"
	IntentTypeFeedback     IntentType = "feedback"
	IntentTypeQuestion     IntentType = "question"
	IntentTypeAnnouncement IntentType = "announcement"
	IntentTypeOther        IntentType = "other"
)

// DetectedBy records the provenance of a classification.
type DetectedBy string

const (
	DetectedByAI    DetectedBy = "ai"
	DetectedByRegex DetectedBy = "regex"
)

// AIGeneratedDetails is the optional enrichment block attached to event
// details. When present its fields overwrite the corresponding top-level
// fields, last writer wins.
type AIGeneratedDetails struct {
	Title               string   `json:"title,omitempty"`
	Description         string   `json:"description,omitempty"`
	SuggestedTags       []string `json:"suggested_tags,omitempty"`
	RecommendedDuration int      `json:"recommended_duration,omitempty"`
	RecommendedCapacity int      `json:"recommended_capacity,omitempty"`
	LocationSuggestions []string `json:"location_suggestions,omitempty"`
}

// EventDetails is the structured payload for event intents. Date and Time
// are nil when extraction found nothing; callers must treat that as
// "needs manual input", never as midnight or today.
type EventDetails struct {
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Date              *string             `json:"date"` // YYYY-MM-DD
	Time              *string             `json:"time"` // HH:mm
	Location          *string             `json:"location"`
	SuggestedDuration *int                `json:"suggested_duration"` // minutes
	SuggestedCapacity *int                `json:"suggested_capacity"`
	Tags              []string            `json:"tags"`
	IsOnline          bool                `json:"is_online"`
	MeetingURL        *string             `json:"meeting_url"`
	AIGenerated       *AIGeneratedDetails `json:"ai_generated_details,omitempty"`
}

// IntentDetails is the tagged union stored in the details column. Event
// carries the structured record; every other intent type carries only a
// free-form note.
type IntentDetails struct {
	Type  IntentType    `json:"type"`
	Event *EventDetails `json:"event,omitempty"`
	Note  string        `json:"note,omitempty"`
}

// Value implements driver.Valuer so details persist as JSONB.
func (d IntentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *IntentDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = IntentDetails{}
		return nil
	default:
		return fmt.Errorf("unsupported details type %T", src)
	}
}

// MessageIntent is the persisted classification of a single chat message.
// At most one row exists per message.
type MessageIntent struct {
	ID          string        `db:"id" json:"id"`
	MessageID   string        `db:"message_id" json:"message_id"`
	CommunityID string        `db:"community_id" json:"community_id"`
	IntentType  IntentType    `db:"intent_type" json:"intent_type"`
	Confidence  float64       `db:"confidence" json:"confidence"`
	Details     IntentDetails `db:"details" json:"details"`
	DetectedBy  DetectedBy    `db:"detected_by" json:"detected_by"`
	IsProcessed bool          `db:"is_processed" json:"is_processed"`
	ProcessedAt *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy *string       `db:"processed_by" json:"processed_by,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// IntentFilter narrows pending-intent listings.
type IntentFilter struct {
	CommunityID string
	IntentType  *IntentType
	Unprocessed bool
	Page        int
	PageSize    int
}

// ChatMessage is the inbound shape supplied by the chat transport. The
// pipeline never fetches messages itself; it receives one at a time.
type ChatMessage struct {
	ID          string    `json:"id" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	CommunityID string    `json:"community_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

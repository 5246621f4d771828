package dto

import (
	"time"

	"github.com/commune-chat/intent-api/internal/models"
)

// IngestMessageRequest is the payload posted by the chat transport when a
// member's client renders a new message.
type IngestMessageRequest struct {
	MessageID   string    `json:"message_id" binding:"required"`
	Content     string    `json:"content" binding:"required"`
	UserID      string    `json:"user_id" binding:"required"`
	CommunityID string    `json:"community_id" binding:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToMessage converts the request into the pipeline's message shape.
func (r IngestMessageRequest) ToMessage() models.ChatMessage {
	return models.ChatMessage{
		ID:          r.MessageID,
		Content:     r.Content,
		UserID:      r.UserID,
		CommunityID: r.CommunityID,
		CreatedAt:   r.CreatedAt,
	}
}

// ConfirmIntentRequest carries optional admin edits applied before an
// intent is materialized.
type ConfirmIntentRequest struct {
	Details *models.EventDetails `json:"details"`
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-chat/intent-api/internal/dto"
	"github.com/commune-chat/intent-api/internal/service"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/response"
)

// MessageHandler receives chat messages from the transport and runs them
// through the detection workflow.
type MessageHandler struct {
	workflow *service.WorkflowService
}

// NewMessageHandler constructs handler.
func NewMessageHandler(workflow *service.WorkflowService) *MessageHandler {
	return &MessageHandler{workflow: workflow}
}

// Ingest godoc
// @Summary Run intent detection for a chat message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.IngestMessageRequest true "Message payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Ingest(c *gin.Context) {
	var req dto.IngestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if req.CommunityID != claims.CommunityID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is scoped to a different community"))
		return
	}

	result, err := h.workflow.HandleMessage(c.Request.Context(), req.ToMessage(), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

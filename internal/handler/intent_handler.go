package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-chat/intent-api/internal/dto"
	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/internal/service"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/response"
)

// IntentHandler exposes the admin review surface for detected intents.
type IntentHandler struct {
	workflow    *service.WorkflowService
	materialize *service.MaterializeService
}

// NewIntentHandler constructs handler.
func NewIntentHandler(workflow *service.WorkflowService, materialize *service.MaterializeService) *IntentHandler {
	return &IntentHandler{workflow: workflow, materialize: materialize}
}

// ListPending godoc
// @Summary List unprocessed intents for a community
// @Tags Intents
// @Produce json
// @Param communityId path string true "Community ID"
// @Param type query string false "Filter by intent type"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /communities/{communityId}/intents [get]
func (h *IntentHandler) ListPending(c *gin.Context) {
	filter := models.IntentFilter{
		CommunityID: c.Param("communityId"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 20),
	}
	if raw := c.Query("type"); raw != "" {
		intentType := models.IntentType(raw)
		filter.IntentType = &intentType
	}

	intents, pagination, err := h.workflow.ListPending(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intents, pagination)
}

// Confirm godoc
// @Summary Confirm an event intent into a calendar event
// @Tags Intents
// @Accept json
// @Produce json
// @Param id path string true "Intent ID"
// @Param payload body dto.ConfirmIntentRequest false "Optional edited details"
// @Success 201 {object} response.Envelope
// @Router /intents/{id}/confirm [post]
func (h *IntentHandler) Confirm(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ConfirmIntentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	event, err := h.materialize.Confirm(c.Request.Context(), c.Param("id"), claims.UserID, req.Details)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Edit godoc
// @Summary Store edited details on an unprocessed event intent
// @Tags Intents
// @Accept json
// @Produce json
// @Param id path string true "Intent ID"
// @Param payload body dto.ConfirmIntentRequest true "Edited details"
// @Success 200 {object} response.Envelope
// @Router /intents/{id} [patch]
func (h *IntentHandler) Edit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ConfirmIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.materialize.EditDetails(c.Request.Context(), c.Param("id"), claims.UserID, req.Details)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Dismiss godoc
// @Summary Dismiss an intent from the caller's review view; the stored intent is untouched
// @Tags Intents
// @Produce json
// @Param id path string true "Intent ID"
// @Success 204
// @Router /intents/{id}/dismiss [post]
func (h *IntentHandler) Dismiss(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.materialize.Dismiss(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

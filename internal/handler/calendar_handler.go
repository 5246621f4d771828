package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/internal/service"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/response"
)

// CalendarHandler exposes materialized calendar events.
type CalendarHandler struct {
	materialize *service.MaterializeService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(materialize *service.MaterializeService) *CalendarHandler {
	return &CalendarHandler{materialize: materialize}
}

// List godoc
// @Summary List a community's calendar events
// @Tags Calendar
// @Produce json
// @Param communityId path string true "Community ID"
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /communities/{communityId}/events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	filter := models.CalendarFilter{
		CommunityID: c.Param("communityId"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 50),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be RFC 3339"))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be RFC 3339"))
			return
		}
		filter.To = &to
	}

	events, pagination, err := h.materialize.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Fetch one calendar event
// @Tags Calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	event, err := h.materialize.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

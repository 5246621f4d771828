package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/internal/service"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
	"github.com/commune-chat/intent-api/pkg/response"
)

// NotificationHandler exposes each admin's notification inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @Summary List the caller's intent notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Unread only"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.NotificationFilter{
		RecipientID: claims.UserID,
		CommunityID: claims.CommunityID,
		UnreadOnly:  c.Query("unread") == "true",
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 20),
	}

	notifications, pagination, err := h.notifications.ListForAdmin(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

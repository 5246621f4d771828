package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-chat/intent-api/internal/service"
	"github.com/commune-chat/intent-api/pkg/response"
)

// DigestHandler serves the downloadable pending-intent digest.
type DigestHandler struct {
	digest *service.DigestService
}

// NewDigestHandler constructs handler.
func NewDigestHandler(digest *service.DigestService) *DigestHandler {
	return &DigestHandler{digest: digest}
}

// PendingEvents godoc
// @Summary Download the pending event intents digest as PDF
// @Tags Digest
// @Produce application/pdf
// @Param communityId path string true "Community ID"
// @Success 200 {file} binary
// @Router /communities/{communityId}/digest/pending-events [get]
func (h *DigestHandler) PendingEvents(c *gin.Context) {
	pdf, filename, err := h.digest.PendingEventsPDF(c.Request.Context(), c.Param("communityId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

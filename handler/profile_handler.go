package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/controller"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/linkfolio/linkfolio-backend/util"
)

// GetPublicProfile serves the visitor-facing page data: selected user
// fields plus active links in display order. Unknown usernames 404 with
// no partial data.
func (h *Handler) GetPublicProfile(c *gin.Context) {
	username := c.Param("username")

	profile, err := h.profile.ResolveProfile(c.Request.Context(), username)
	if err != nil {
		if !handleControllerError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RecordClick ingests a visitor click. The caller fires this without
// awaiting it before navigating, so the response matters only to logs and
// tests; failures are still mapped to proper statuses.
func (h *Handler) RecordClick(c *gin.Context) {
	username := c.Param("username")

	var req models.RecordClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	linkID, err := uuid.Parse(req.LinkID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	info := util.ParseUserAgent(c.GetHeader("User-Agent"))
	meta := controller.ClickMeta{
		IPAddress: util.ClientIP(c.Request),
		Device:    info.Device,
		Browser:   info.Browser,
		OS:        info.OS,
		Referrer:  util.Referrer(c.Request),
	}

	if err := h.clicks.RecordClick(c.Request.Context(), username, linkID, meta); err != nil {
		if !handleControllerError(c, err) {
			// A dropped click is accepted data loss; log and answer generically.
			h.logger.Sugar().Errorf("failed to record click for %s/%s: %s", username, linkID, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record click"})
		}
		return
	}

	setNoCacheHeaders(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/cache"
	"github.com/linkfolio/linkfolio-backend/controller"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/linkfolio/linkfolio-backend/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	links   *controller.LinkController
	clicks  *controller.ClickController
	profile *controller.ProfileController
	auth    *service.AuthService
	og      *service.OGMetaService
	logger  *zap.Logger
}

func NewHandler(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Handler {
	profileCache := cache.New(rdb, time.Duration(viper.GetInt("cache.profile_ttl_seconds"))*time.Second)
	ogRefresh := time.Duration(viper.GetInt("og.refresh_hours")) * time.Hour

	return &Handler{
		links:   controller.NewLinkController(db, logger),
		clicks:  controller.NewClickController(db, logger),
		profile: controller.NewProfileController(db, profileCache, logger),
		auth:    service.NewAuthService(db, logger),
		og:      service.NewOGMetaService(db, logger, ogRefresh),
		logger:  logger,
	}
}

func (h *Handler) CreateLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), userID, req)
	if err != nil {
		if !handleControllerError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link"})
		}
		return
	}

	h.profile.InvalidateProfile(c.Request.Context(), currentUsername(c))

	// Detached fetch: the response never waits on the target site.
	go h.og.Refresh(link.ID)

	c.JSON(http.StatusCreated, link)
}

func (h *Handler) ListLinks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	links, err := h.links.ListLinks(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list links"})
		return
	}

	c.JSON(http.StatusOK, links)
}

// PatchLink serves both body shapes of PATCH /api/links/:id. The wire body
// is converted to a tagged patch once, here, and dispatched on its kind.
func (h *Handler) PatchLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	var body models.LinkPatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch, err := body.Patch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "linkIds must contain valid link ids"})
		return
	}

	switch patch.Kind {
	case models.PatchReorder:
		if err := h.links.ReorderLinks(c.Request.Context(), userID, patch.LinkIDs); err != nil {
			if !handleControllerError(c, err) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder links"})
			}
			return
		}
		h.profile.InvalidateProfile(c.Request.Context(), currentUsername(c))
		c.JSON(http.StatusOK, gin.H{"success": true})

	case models.PatchFields:
		link, err := h.links.UpdateLink(c.Request.Context(), userID, linkID, patch.Fields)
		if err != nil {
			if !handleControllerError(c, err) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link"})
			}
			return
		}
		h.profile.InvalidateProfile(c.Request.Context(), currentUsername(c))
		if patch.Fields.URL != nil {
			go h.og.Refresh(link.ID)
		}
		c.JSON(http.StatusOK, link)
	}
}

func (h *Handler) DeleteLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	if err := h.links.DeleteLink(c.Request.Context(), userID, linkID); err != nil {
		if !handleControllerError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		}
		return
	}

	h.profile.InvalidateProfile(c.Request.Context(), currentUsername(c))
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

func (h *Handler) GetUserAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	setNoCacheHeaders(c)

	analytics, err := h.clicks.UserAnalytics(c.Request.Context(), userID, lookbackDays(c))
	if err != nil {
		h.logger.Sugar().Errorf("user analytics query failed: %s", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) GetLinkAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	setNoCacheHeaders(c)

	analytics, err := h.clicks.LinkAnalytics(c.Request.Context(), userID, linkID, lookbackDays(c))
	if err != nil {
		if !handleControllerError(c, err) {
			h.logger.Sugar().Errorf("link analytics query failed: %s", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profile.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if !handleControllerError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateDesign(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.UpdateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.profile.UpdateDesign(c.Request.Context(), userID, req)
	if err != nil {
		if !handleControllerError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update design"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

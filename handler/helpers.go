package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/controller"
	"github.com/linkfolio/linkfolio-backend/util"
)

// setNoCacheHeaders sets cache-control headers to prevent caching
// Used for click and analytics responses that need to be fresh
func setNoCacheHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

// handleControllerError handles controller errors and returns appropriate HTTP responses
// Returns true if the error was handled, false otherwise
func handleControllerError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	// Missing and unowned entities map to the same not-found: the error
	// body never reveals whether the id exists under another user.
	if errors.Is(err, controller.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return true
	}

	if errors.Is(err, controller.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return true
	}

	if errors.Is(err, controller.ErrNoFieldsProvided) ||
		errors.Is(err, controller.ErrInvalidURL) ||
		errors.Is(err, controller.ErrReorderMismatch) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return true
	}

	if errors.Is(err, controller.ErrEmailInUse) || errors.Is(err, controller.ErrUsernameInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return true
	}

	if errors.Is(err, controller.ErrInvalidLogin) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return true
	}

	// Error not handled by this function
	return false
}

// currentUserID reads the authenticated identity set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func currentUsername(c *gin.Context) string {
	return c.GetString("username")
}

// lookbackDays parses the days query parameter with the default window.
func lookbackDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(util.DefaultAnalyticsWindowDays)))
	if err != nil || days <= 0 {
		return util.DefaultAnalyticsWindowDays
	}
	return days
}

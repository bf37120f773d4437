package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkfolio/linkfolio-backend/handler"
	"github.com/linkfolio/linkfolio-backend/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func RegisterRoutes(router *gin.Engine, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	h := handler.NewHandler(db, rdb, logger)

	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		// Public read path + click ingestion (rate limited; the only
		// unauthenticated write in the system)
		api.GET("/profiles/:username", h.GetPublicProfile)
		api.POST("/profiles/:username/clicks", middleware.RateLimit(), h.RecordClick)

		// Dashboard link management
		api.POST("/links", middleware.AuthRequired(), h.CreateLink)
		api.GET("/links", middleware.AuthRequired(), h.ListLinks)
		api.PATCH("/links/:id", middleware.AuthRequired(), h.PatchLink) // field patch or reorder batch
		api.DELETE("/links/:id", middleware.AuthRequired(), h.DeleteLink)

		// Analytics (pure reads, never cached)
		api.GET("/analytics", middleware.AuthRequired(), h.GetUserAnalytics)
		api.GET("/links/:id/analytics", middleware.AuthRequired(), h.GetLinkAnalytics)

		// Account profile & design settings
		api.PATCH("/me/profile", middleware.AuthRequired(), h.UpdateProfile)
		api.PATCH("/me/design", middleware.AuthRequired(), h.UpdateDesign)
	}

	auth := router.Group("/auth", middleware.RequestTimeout(1*time.Minute))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.AuthRequired(), h.Me)
	}
}

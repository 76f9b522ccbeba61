package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gauri-sd/user-document-management/internal/handler"
	"github.com/gauri-sd/user-document-management/internal/middleware"
)

func RegisterRoutes(
	router *gin.RouterGroup,
	authHandler *handler.AuthHandler,
	documentHandler *handler.DocumentHandler,
	ingestionHandler *handler.IngestionHandler,
	authMiddleware *middleware.AuthMiddleware,
	webhookServiceKey string,
) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(authMiddleware.RequireAuth())
	{
		authProtected.POST("/logout", authHandler.Logout)
		authProtected.GET("/profile", authHandler.Profile)
	}

	documents := router.Group("/documents")
	documents.Use(authMiddleware.RequireAuth())
	{
		documents.POST("", documentHandler.Create)
		documents.GET("", documentHandler.List)
		documents.GET("/:id", documentHandler.Get)
		documents.GET("/:id/download-url", documentHandler.GetDownloadUrl)
		documents.DELETE("/:id", documentHandler.Delete)
	}

	ingestion := router.Group("/ingestion")
	ingestion.Use(authMiddleware.RequireAuth())
	{
		ingestion.POST("/trigger", ingestionHandler.Trigger)
		ingestion.GET("", ingestionHandler.List)
		ingestion.GET("/:id", ingestionHandler.Get)
		ingestion.POST("/:id/retry", ingestionHandler.Retry)
	}

	// Service-to-service ingress, not user-authenticated.
	webhook := router.Group("/ingestion")
	webhook.Use(middleware.RequireServiceKey(webhookServiceKey))
	{
		webhook.POST("/webhook", ingestionHandler.Webhook)
	}
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gauri-sd/user-document-management/internal/database"
	"github.com/gauri-sd/user-document-management/internal/handler"
	"github.com/gauri-sd/user-document-management/internal/middleware"
	"github.com/gauri-sd/user-document-management/internal/routes"
)

func NewServer(
	db *database.Database,
	authHandler *handler.AuthHandler,
	documentHandler *handler.DocumentHandler,
	ingestionHandler *handler.IngestionHandler,
	authMiddleware *middleware.AuthMiddleware,
	webhookServiceKey string,
) *gin.Engine {
	g := gin.Default()

	g.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := g.Group("/api/v1")
	routes.RegisterRoutes(api, authHandler, documentHandler, ingestionHandler, authMiddleware, webhookServiceKey)

	return g
}

package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Scheduler, cfg.Version)
	router.GET("/health", healthController.Status)

	syncController := NewSyncController(cfg.Scheduler, cfg.Runs)
	api := router.Group("/api/sync")
	{
		api.GET("/status", syncController.Status)
		api.GET("/runs", syncController.Runs)
		api.POST("/run", syncController.Run)
	}

	return router
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/engine"
	"github.com/gcbaptista/go-article-discovery/internal/logging"
)

// API holds dependencies for API handlers, primarily the discovery engine.
type API struct {
	engine   *engine.Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewAPI creates a new API handler structure.
func NewAPI(eng *engine.Engine, logger *zap.Logger) *API {
	return &API{
		engine: eng,
		logger: logging.OrNop(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SetupRoutes defines all the API routes for the discovery service.
func SetupRoutes(router *gin.Engine, eng *engine.Engine, logger *zap.Logger) {
	apiHandler := NewAPI(eng, logger)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Analytics route
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	// Article discovery routes
	router.GET("/articles", apiHandler.ListArticlesHandler)          // Filtered, sorted view for a URL query
	router.GET("/articles/:articleId", apiHandler.GetArticleHandler) // Single article summary
	router.GET("/tags", apiHandler.ListTagsHandler)                  // Tag counts, most used first

	// Interactive sessions
	router.GET("/sessions/ws", apiHandler.SessionHandler)

	// Content management
	router.POST("/content/reload", apiHandler.ReloadContentHandler)
	router.POST("/content/snapshot", apiHandler.SnapshotContentHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)              // List jobs, optionally by status
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status by ID
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
	}
}

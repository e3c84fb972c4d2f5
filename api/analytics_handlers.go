package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler handles the request to get analytics data
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Analytics().GetDashboardData())
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	response := gin.H{
		"status":        "healthy",
		"service":       "go-article-discovery",
		"timestamp":     fmt.Sprintf("%d", time.Now().Unix()),
		"article_count": api.engine.Catalog().Len(),
	}
	if loadedAt := api.engine.LoadedAt(); !loadedAt.IsZero() {
		response["loaded_at"] = loadedAt
	}

	c.JSON(http.StatusOK, response)
}

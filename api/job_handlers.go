package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalerrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/services"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	var jobManager services.JobManager = api.engine.Jobs()
	job, err := jobManager.GetJob(jobID)
	if err != nil {
		if errors.Is(err, internalerrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendInternalError(c, "job lookup", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list background jobs
func (api *API) ListJobsHandler(c *gin.Context) {
	statusFilter, result := ValidateJobStatus(c.Query("status"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var jobManager services.JobManager = api.engine.Jobs()
	jobs := jobManager.ListJobs(statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	manager := api.engine.Jobs()

	c.JSON(http.StatusOK, gin.H{
		"metrics":          manager.GetMetrics(),
		"success_rate":     manager.GetJobSuccessRate(),
		"current_workload": manager.GetCurrentWorkload(),
	})
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/internal/jobs"
	"github.com/gcbaptista/go-term-index/model"
	"github.com/gcbaptista/go-term-index/services"
)

// maxJobWait bounds how long GET /jobs/:jobId?wait=true blocks.
const maxJobWait = 30 * time.Second

// jobMetricsProvider is implemented by engines that track job statistics.
type jobMetricsProvider interface {
	GetJobMetrics() jobs.JobStatsData
	GetJobSuccessRate() float64
	GetCurrentWorkload() int64
}

// GetJobHandler handles requests to get job status by ID.
// With ?wait=true it blocks until the job finishes or the wait times out.
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendAsyncNotSupportedError(c)
		return
	}

	var (
		job *model.Job
		err error
	)
	if c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), maxJobWait)
		defer cancel()
		job, err = jobManager.WaitForJob(ctx, jobID)
		if err != nil && ctx.Err() != nil {
			// Timed out: report the job as it stands.
			job, err = jobManager.GetJob(jobID)
		}
	} else {
		job, err = jobManager.GetJob(jobID)
	}
	if err != nil {
		SendJobNotFoundError(c, jobID)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list jobs for an index
func (api *API) ListJobsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	statusParam := c.Query("status")

	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendAsyncNotSupportedError(c)
		return
	}

	jobList := jobManager.ListJobs(indexName, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":       jobList,
		"index_name": indexName,
		"total":      len(jobList),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	provider, ok := api.engine.(jobMetricsProvider)
	if !ok {
		SendAsyncNotSupportedError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":          provider.GetJobMetrics(),
		"success_rate":     provider.GetJobSuccessRate(),
		"current_workload": provider.GetCurrentWorkload(),
	})
}

package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/services"
)

// API holds dependencies for API handlers.
type API struct {
	engine  services.IndexManager
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewAPI creates a new API handler structure.
// The metrics and logger may be nil.
func NewAPI(engine services.IndexManager, m *metrics.Metrics, l *log.Logger) *API {
	return &API{engine: engine, metrics: m, logger: l}
}

// SetupRoutes defines all the API routes for the term index server.
func SetupRoutes(router *gin.Engine, engine services.IndexManager, m *metrics.Metrics, l *log.Logger) {
	apiHandler := NewAPI(engine, m, l)

	router.GET("/health", apiHandler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Index management
	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("", apiHandler.CreateIndexHandler)
		indexRoutes.GET("", apiHandler.ListIndexesHandler)
		indexRoutes.GET("/:indexName", apiHandler.GetIndexHandler)
		indexRoutes.DELETE("/:indexName", apiHandler.DeleteIndexHandler)
		indexRoutes.GET("/:indexName/stats", apiHandler.GetIndexStatsHandler)
		indexRoutes.PATCH("/:indexName/settings", apiHandler.UpdateIndexSettingsHandler)
		indexRoutes.POST("/:indexName/rename", apiHandler.RenameIndexHandler)

		// Words
		indexRoutes.PUT("/:indexName/words", apiHandler.AddWordsHandler)
		indexRoutes.DELETE("/:indexName/words", apiHandler.ClearWordsHandler)
		indexRoutes.POST("/:indexName/_build", apiHandler.BuildIndexHandler)
		indexRoutes.POST("/:indexName/_merge", apiHandler.MergeIndexHandler)
		indexRoutes.POST("/:indexName/_persist", apiHandler.PersistIndexHandler)

		// Queries
		indexRoutes.POST("/:indexName/_query", apiHandler.QueryHandler)

		indexRoutes.GET("/:indexName/jobs", apiHandler.ListJobsHandler)
	}

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}
}

// HealthCheck reports liveness and the number of loaded indexes.
func (api *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"indexes": len(api.engine.ListIndexes()),
	})
}

// asyncEngine returns the engine as an AsyncIndexManager if it supports background jobs.
func (api *API) asyncEngine() (services.AsyncIndexManager, bool) {
	async, ok := api.engine.(services.AsyncIndexManager)
	return async, ok
}

// wantsAsync reports whether the request asked for a background job with ?async=true.
func wantsAsync(c *gin.Context) bool {
	return c.Query("async") == "true"
}

// sendAccepted answers a request that started a background job.
func sendAccepted(c *gin.Context, message, jobID string) {
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": message,
		"job_id":  jobID,
	})
}

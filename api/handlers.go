// Package api exposes the search service over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/services"
)

var log = logging.ForComponent(logging.CompAPI)

// DefaultMaxBodyBytes bounds request bodies; imports carry a whole index.
const DefaultMaxBodyBytes = 256 << 20

// API holds dependencies for API handlers.
type API struct {
	service services.SearchService
}

// NewAPI creates a new API handler structure.
func NewAPI(service services.SearchService) *API {
	return &API{service: service}
}

// NewRouter returns a gin engine with the standard middleware and every route registered.
func NewRouter(service services.SearchService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(),
		CORSMiddleware(), RequestSizeLimitMiddleware(DefaultMaxBodyBytes))
	SetupRoutes(router, service)
	return router
}

// SetupRoutes defines all the API routes for the search service.
func SetupRoutes(router *gin.Engine, service services.SearchService) {
	apiHandler := NewAPI(service)

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/stats", apiHandler.StatsHandler)
	router.GET("/metrics", gin.WrapH(service.MetricsHandler()))

	router.POST("/search", apiHandler.SearchHandler)
	router.GET("/suggestions", apiHandler.SuggestionsHandler)

	router.POST("/initialize", apiHandler.InitializeHandler)
	router.POST("/reindex", apiHandler.ReindexHandler)
	router.GET("/export", apiHandler.ExportHandler)
	router.POST("/import", apiHandler.ImportHandler)
	router.DELETE("/index", apiHandler.DeleteIndexHandler)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "statwrap-search",
		"initialized": api.service.IsInitialized(),
		"timestamp":   time.Now().Unix(),
	})
}

// StatsHandler returns the search diagnostics snapshot.
func (api *API) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.service.GetSearchStats())
}

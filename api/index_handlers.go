package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StatTag/StatWrap-sub000/model"
)

// InitializeRequest carries the project descriptors to index.
type InitializeRequest struct {
	Projects []model.Project `json:"projects"`
}

// InitializeHandler starts an initialize job.
// Request Body: InitializeRequest
func (api *API) InitializeHandler(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateProjects(req.Projects); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.service.InitializeAsync(req.Projects)
	if err != nil {
		SendJobExecutionError(c, "initialize", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Initialization started",
		"job_id":  jobID,
	})
}

// ReindexHandler starts a reindex job over every known project.
func (api *API) ReindexHandler(c *gin.Context) {
	jobID, err := api.service.ReindexAllAsync()
	if err != nil {
		SendJobExecutionError(c, "reindex", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Reindex started",
		"job_id":  jobID,
	})
}

// ExportHandler returns the export payload.
func (api *API) ExportHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.service.ExportIndex())
}

// ImportHandler replaces the index with the posted export payload.
// Request Body: model.ExportPayload
func (api *API) ImportHandler(c *gin.Context) {
	var payload model.ExportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.service.ImportIndex(c.Request.Context(), &payload); err != nil {
		SendServiceError(c, "import", err)
		return
	}

	stats := api.service.GetSearchStats()
	c.JSON(http.StatusOK, gin.H{
		"message":         "Index imported",
		"documents":       stats.DocumentCount,
		"indexedProjects": stats.IndexedProjects,
	})
}

// DeleteIndexHandler deletes the index file and resets the service.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deleted": api.service.DeleteIndexFile()})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StatTag/StatWrap-sub000/model"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query      string `json:"query"`
	Type       string `json:"type,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	FileType   string `json:"fileType,omitempty"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// Options converts the request into search options.
func (r SearchRequest) Options() model.SearchOptions {
	return model.SearchOptions{
		Type:       model.DocumentType(r.Type),
		ProjectID:  r.ProjectID,
		FileType:   r.FileType,
		MaxResults: r.MaxResults,
	}
}

// SearchHandler runs a query and returns grouped results.
// Request Body: SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	if result := ValidateSearchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, api.service.Search(req.Query, req.Options()))
}

// SuggestionsHandler returns autocomplete candidates for ?q=.
func (api *API) SuggestionsHandler(c *gin.Context) {
	partial := c.Query("q")
	if result := ValidateSuggestionQuery(partial); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	suggestions := api.service.GetSuggestions(partial)
	c.JSON(http.StatusOK, gin.H{
		"query":       partial,
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/config"
)

// CreateIndexHandler handles the request to create a new index.
// Request Body: config.IndexSettings
func (api *API) CreateIndexHandler(c *gin.Context) {
	var settings config.IndexSettings

	if result := ValidateJSONBinding(c, &settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if result := ValidateIndexSettings(&settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.CreateIndex(settings); err != nil {
		SendEngineError(c, "create index", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Index '" + settings.Name + "' created successfully",
		"settings": settings,
	})
}

// ListIndexesHandler lists all available indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	names := api.engine.ListIndexes()
	c.JSON(http.StatusOK, gin.H{"indexes": names, "count": len(names)})
}

// GetIndexHandler retrieves the settings and stats of an index.
func (api *API) GetIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"settings": indexAccessor.Settings(),
		"stats":    indexAccessor.Stats(),
	})
}

// GetIndexStatsHandler returns the size and persistence state of an index.
func (api *API) GetIndexStatsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index stats", err)
		return
	}
	c.JSON(http.StatusOK, indexAccessor.Stats())
}

// DeleteIndexHandler handles deleting an index. With ?async=true the
// deletion runs as a background job.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if wantsAsync(c) {
		async, ok := api.asyncEngine()
		if !ok {
			SendAsyncNotSupportedError(c)
			return
		}
		jobID, err := async.DeleteIndexAsync(indexName)
		if err != nil {
			SendEngineError(c, "delete index", err)
			return
		}
		sendAccepted(c, "Index deletion started for '"+indexName+"'", jobID)
		return
	}

	if err := api.engine.DeleteIndex(indexName); err != nil {
		SendEngineError(c, "delete index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index '" + indexName + "' deleted successfully"})
}

// UpdateIndexSettingsHandler replaces the settings of an index. Fields left
// out of the body keep their current value.
func (api *API) UpdateIndexSettingsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	current, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, "update settings", err)
		return
	}

	// Binding onto the current settings leaves absent fields untouched.
	updated := current
	if result := ValidateJSONBinding(c, &updated); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if updated.Name != indexName {
		result := &ValidationResult{Valid: true}
		result.AddError("name", "Use the rename endpoint to change the index name")
		SendValidationError(c, result)
		return
	}
	if result := ValidateIndexSettings(&updated); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.UpdateIndexSettings(indexName, updated); err != nil {
		SendEngineError(c, "update settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings of index '" + indexName + "' updated successfully",
		"settings": updated,
	})
}

// RenameIndexHandler handles requests to rename an index
func (api *API) RenameIndexHandler(c *gin.Context) {
	oldName := c.Param("indexName")

	var req RenameRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if result := ValidateRenameRequest(oldName, req.NewName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.RenameIndex(oldName, req.NewName); err != nil {
		SendEngineError(c, "rename index", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Index '" + oldName + "' renamed to '" + req.NewName + "'",
		"old_name": oldName,
		"new_name": req.NewName,
	})
}

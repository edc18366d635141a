package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddWordsHandler inserts words into an index.
// Request Body: {"words": [...]} and/or {"text": "..."}; text is tokenized first.
func (api *API) AddWordsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var req WordsRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateWordsRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "add words", err)
		return
	}

	added := 0
	if len(req.Words) > 0 {
		added += indexAccessor.AddWords(req.Words)
	}
	if req.Text != "" {
		added += indexAccessor.AddText(req.Text)
	}

	c.JSON(http.StatusOK, gin.H{
		"added": added,
		"stats": indexAccessor.Stats(),
	})
}

// ClearWordsHandler removes every word from an index and keeps its settings.
func (api *API) ClearWordsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "clear words", err)
		return
	}

	removed := indexAccessor.ClearWords()
	c.JSON(http.StatusOK, gin.H{
		"message": "Index '" + indexName + "' cleared",
		"removed": removed,
	})
}

// BuildIndexHandler starts a sharded bulk build as a background job.
func (api *API) BuildIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	async, ok := api.asyncEngine()
	if !ok {
		SendAsyncNotSupportedError(c)
		return
	}

	var req BuildRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateBuildRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := async.BuildIndexAsync(indexName, req.Words)
	if err != nil {
		SendEngineError(c, "build index", err)
		return
	}
	sendAccepted(c, "Build of index '"+indexName+"' started", jobID)
}

// MergeIndexHandler adds every word of the source index to the target index.
// With ?async=true the merge runs as a background job.
func (api *API) MergeIndexHandler(c *gin.Context) {
	target := c.Param("indexName")

	var req MergeRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateMergeRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if wantsAsync(c) {
		async, ok := api.asyncEngine()
		if !ok {
			SendAsyncNotSupportedError(c)
			return
		}
		jobID, err := async.MergeIndexAsync(target, req.Source)
		if err != nil {
			SendEngineError(c, "merge index", err)
			return
		}
		sendAccepted(c, "Merge of '"+req.Source+"' into '"+target+"' started", jobID)
		return
	}

	added, err := api.engine.MergeIndex(target, req.Source)
	if err != nil {
		SendEngineError(c, "merge index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Index '" + req.Source + "' merged into '" + target + "'",
		"added":   added,
	})
}

// PersistIndexHandler writes the index's node stream to disk.
// With ?async=true the write runs as a background job.
func (api *API) PersistIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if wantsAsync(c) {
		async, ok := api.asyncEngine()
		if !ok {
			SendAsyncNotSupportedError(c)
			return
		}
		jobID, err := async.PersistIndexAsync(indexName)
		if err != nil {
			SendEngineError(c, "persist index", err)
			return
		}
		sendAccepted(c, "Persist of index '"+indexName+"' started", jobID)
		return
	}

	if err := api.engine.PersistIndexData(indexName); err != nil {
		SendEngineError(c, "persist index", err)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "persist index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Index '" + indexName + "' persisted",
		"stats":   indexAccessor.Stats(),
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/services"
)

// QueryHandler runs a has, prefix or near query against an index.
// Request Body: services.TermQuery
func (api *API) QueryHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var query services.TermQuery
	if result := ValidateJSONBinding(c, &query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateQueryRequest(&query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "query", err)
		return
	}

	result, err := indexAccessor.Query(query)
	if err != nil {
		if api.logger != nil {
			api.logger.Debug("Query rejected", "index", indexName, "op", query.Op, "error", err)
		}
		SendEngineError(c, "query", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

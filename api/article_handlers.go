package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/engine"
	internalerrors "github.com/gcbaptista/go-article-discovery/internal/errors"
)

// ListArticlesHandler evaluates the list URL the way a page load does: the
// query string is decoded into a filter state and the resulting view returned.
func (api *API) ListArticlesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Evaluate(c.Request.URL.Query()))
}

// GetArticleHandler returns a single article summary by ID
func (api *API) GetArticleHandler(c *gin.Context) {
	articleID := c.Param("articleId")

	if result := ValidateArticleID(articleID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	article, err := api.engine.Catalog().Get(articleID)
	if err != nil {
		if errors.Is(err, internalerrors.ErrArticleNotFound) {
			SendArticleNotFoundError(c, articleID)
			return
		}
		SendInternalError(c, "article lookup", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// ListTagsHandler returns every tag with the number of articles carrying it
func (api *API) ListTagsHandler(c *gin.Context) {
	tags := api.engine.Catalog().Tags()
	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"total": len(tags),
	})
}

// SnapshotContentHandler writes the catalog to a snapshot in the data
// directory in a background job
func (api *API) SnapshotContentHandler(c *gin.Context) {
	dataDir := api.engine.Settings().DataDir
	if dataDir == "" {
		SendError(c, http.StatusConflict, ErrorCodeInvalidRequest, "Snapshots require data_dir to be configured")
		return
	}

	path := filepath.Join(dataDir, engine.SnapshotFileName)
	jobID, err := api.engine.WriteSnapshotAsync(path, "api")
	if err != nil {
		SendJobExecutionError(c, "snapshot", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot started",
		"job_id":  jobID,
		"path":    path,
	})
}

// ReloadContentHandler starts an asynchronous reload of the content sources
func (api *API) ReloadContentHandler(c *gin.Context) {
	jobID, err := api.engine.ReloadAsync("api")
	if err != nil {
		SendJobExecutionError(c, "content reload", err)
		return
	}

	api.logger.Info("content reload requested", zap.String("job_id", jobID))
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Content reload started",
		"job_id":  jobID,
	})
}

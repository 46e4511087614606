package api

import (
	"net/http"
	"strconv"

	"gamine/blog-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostFetchBulk returns one page of the public feed, newest first. A
// page past the end of the feed is an empty page, not an error.
func (a *API) PostFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Page is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	feed, err := a.Posts.FetchPage(page, store.DefaultPageSize)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch feed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, feed)
}

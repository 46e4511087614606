package api

import (
	"errors"
	"net/http"
	"strconv"

	"gamine/blog-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) PostFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil || postID < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Post ID is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	post, err := a.Posts.Fetch(uint(postID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Post not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch post", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, post)
}

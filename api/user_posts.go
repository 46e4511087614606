package api

import (
	"errors"
	"net/http"
	"strconv"

	"gamine/blog-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserPosts returns one page of a single author's posts, newest first
func (a *API) UserPosts(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	username := c.Param("username")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Page is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	author, feed, err := a.Posts.FetchPageByUser(username, page, store.DefaultPageSize)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch author feed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"author": author,
		"feed":   feed,
	})
}

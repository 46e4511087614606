package api

import (
	"errors"
	"net/http"
	"strconv"

	"gamine/blog-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) PostDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil || postID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Post ID is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	err = a.Posts.Delete(uint(postID), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Post not found",
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Only the author can delete this post",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to delete post", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Your post has been deleted",
		"redirect": "/home",
	})
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) PostUpdate(c *gin.Context) {
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

	var data postBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.PostValidator(data.Title, data.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	post, err := a.Posts.Update(uint(postID), userID, data.Title, data.Content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Post not found",
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Only the author can edit this post",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to update post", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"message":  "Your post has been updated",
		"redirect": "/post/" + strconv.Itoa(postID),
	})
}

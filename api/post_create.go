package api

import (
	"errors"
	"net/http"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (a *API) PostCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

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

	post, err := a.Posts.Create(userID, data.Title, data.Content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmptyTitle) || errors.Is(err, store.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrNotFound):
			// The account can vanish between the auth check and here
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to create post", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"post":     post,
		"message":  "Your post has been created",
		"redirect": "/home",
	})
}

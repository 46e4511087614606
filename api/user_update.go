package api

import (
	"errors"
	"net/http"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUpdate changes username, email and optionally the profile
// picture. The form is multipart so the picture can ride along with the
// text fields.
func (a *API) UserUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	username := c.PostForm("username")
	email := c.PostForm("email")

	if err := validators.UsernameValidator(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	imageFile := ""

	fh, err := c.FormFile("picture")
	if err == nil {
		status, f, err := validators.PictureValidator(fh)
		if err != nil {
			if status == http.StatusInternalServerError {
				c.JSON(status, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to validate picture", zap.Error(err), zap.String("requestID", requestID))
				return
			}

			c.JSON(status, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		defer f.Close()

		imageFile, err = a.Pictures.Save(f, fh.Filename)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to store picture", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	err = a.Users.UpdateProfile(userID, username, email, imageFile)
	if err != nil {
		// The picture was stored before the row update, don't leave it
		// orphaned when the update is rejected
		if imageFile != "" {
			if rmErr := a.Pictures.Remove(imageFile); rmErr != nil {
				zap.L().Warn("Failed to remove orphaned picture", zap.Error(rmErr), zap.String("requestID", requestID))
			}
		}

		if errors.Is(err, store.ErrDuplicateUsername) || errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Your account has been updated",
		"redirect": "/account",
	})
}

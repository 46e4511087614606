package api

import (
	"errors"
	"net/http"
	"time"

	"gamine/blog-api/internal/service"
	"gamine/blog-api/internal/store"
	"gamine/blog-api/pkg/security"
	"gamine/blog-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetRequestBody struct {
	Email string `json:"email"`
}

// PasswordResetRequest emails a reset link. The response is identical
// whether or not the email belongs to an account, so the endpoint can't
// be used to probe which emails are registered. Delivery happens in the
// background and its failure never reaches the requester.
func (a *API) PasswordResetRequest(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if a.alreadyAuthed(c) {
		c.JSON(http.StatusOK, gin.H{
			"redirect": "/home",
		})
		return
	}

	var data resetRequestBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	user, err := a.Users.ByEmail(data.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user for reset", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user != nil {
		token, err := security.MakeResetToken(user.ID, jwtSecret(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to generate reset token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		go func(token, email, username string) {
			if err := service.SendResetMail(token, email, username); err != nil {
				zap.L().Error("Failed to send reset mail", zap.Error(err), zap.String("requestID", requestID))
			}
		}(token, user.Email, user.Username)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "If that email is registered, a reset link has been sent",
		"redirect": "/login",
	})
}

package api

import (
	"errors"
	"net/http"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/pkg/security"
	"gamine/blog-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetConfirmBody struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PasswordResetConfirm verifies the emailed token and replaces the
// password. Every token problem gets the same answer, the caller never
// learns whether the signature, the purpose or the age was wrong.
func (a *API) PasswordResetConfirm(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if a.alreadyAuthed(c) {
		c.JSON(http.StatusOK, gin.H{
			"redirect": "/home",
		})
		return
	}

	userID, err := security.VerifyResetToken(c.Param("token"), jwtSecret(), security.ResetTokenMaxAge)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "That is an expired or invalid token",
			"redirect":  "/reset_password",
			"requestID": requestID,
		})
		return
	}

	var data resetConfirmBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.ConfirmedPasswordValidator(data.Password, data.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := a.Users.SetPassword(userID, data.Password); err != nil {
		// The account may have vanished since the token was issued, which
		// is indistinguishable from a stale token for the caller
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "That is an expired or invalid token",
				"redirect":  "/reset_password",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to set password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Your password has been updated",
		"redirect": "/login",
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFetch returns the account of the logged in user, used by the
// account page
func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	user, err := a.Users.ByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The email is only ever shown to its owner, the model keeps it out
	// of every other payload
	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"email":    user.Email,
		"imageURL": "/api/pictures/" + user.ImageFile,
	})
}

package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewAuthMiddleware gates protected routes. A valid auth_token cookie
// resolves to a user ID in the gin context; anything else is a 401
// carrying a login redirect that preserves the requested destination.
func NewAuthMiddleware(users *store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie("auth_token")
		if err != nil {
			if err != http.ErrNoCookie {
				zap.L().Error("Failed to get token cookie", zap.Error(err), zap.String("requestID", requestID))
			}

			abortToLogin(c, requestID)
			return
		}

		userID, err := security.ParseSessionToken(tokenStr, []byte(viper.GetString("security.jwt_secret")))
		if err != nil {
			zap.L().Debug("Rejected session credential", zap.Error(err), zap.String("requestID", requestID))

			abortToLogin(c, requestID)
			return
		}

		// The token may outlive the account, so the row is checked on
		// every request
		user, err := users.ByID(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				abortToLogin(c, requestID)
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}

func abortToLogin(c *gin.Context, requestID string) {
	next := c.Request.URL.RequestURI()

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     "You need to log in first",
		"redirect":  "/login?next=" + url.QueryEscape(next),
		"requestID": requestID,
	})
}

package api

import (
	"errors"
	"net/http"
	"time"

	"gamine/blog-api/internal/store"
	"gamine/blog-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if a.alreadyAuthed(c) {
		c.JSON(http.StatusOK, gin.H{
			"redirect": "/home",
		})
		return
	}

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Email field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	user, err := a.Users.Authenticate(data.Email, data.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			// One message for unknown email and wrong password
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Login unsuccessful, please check email and password",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to authenticate user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ttl := sessionTTL
	if data.Remember {
		ttl = rememberTTL
	}

	authToken, err := security.MakeSessionToken(user.ID, jwtSecret(), ttl)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	setSessionCookies(c, authToken, data.Remember)

	c.JSON(http.StatusOK, gin.H{
		"userID":    user.ID,
		"expiresAt": time.Now().Add(ttl).Unix(),
		"redirect":  sanitizeNext(c.Query("next")),
	})
}

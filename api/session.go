package api

import (
	"strings"
	"time"

	"gamine/blog-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

const (
	sessionTTL  = 12 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

func jwtSecret() []byte {
	return []byte(viper.GetString("security.jwt_secret"))
}

// alreadyAuthed reports whether the request carries a session credential
// that still resolves to an existing user. Login, registration and the
// reset flow short-circuit to home for such callers.
func (a *API) alreadyAuthed(c *gin.Context) bool {
	tokenStr, err := c.Cookie("auth_token")
	if err != nil {
		return false
	}

	userID, err := security.ParseSessionToken(tokenStr, jwtSecret())
	if err != nil {
		return false
	}

	_, err = a.Users.ByID(userID)
	return err == nil
}

// sanitizeNext keeps post-login redirects on this origin. Anything that
// isn't a plain relative path falls back to home.
func sanitizeNext(next string) string {
	if next == "" {
		return "/home"
	}

	if !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") ||
		strings.HasPrefix(next, "/\\") ||
		strings.Contains(next, "://") {
		return "/home"
	}

	return next
}

func setSessionCookies(c *gin.Context, token string, remember bool) {
	sslEnabled := viper.GetBool("host.ssl.enabled")

	// maxAge 0 makes them session cookies for logins without remember me
	maxAge := 0
	if remember {
		maxAge = int(rememberTTL / time.Second)
	}

	c.SetCookie("auth_token", token, maxAge, "/", "", sslEnabled, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", sslEnabled, false)
}

func clearSessionCookies(c *gin.Context) {
	sslEnabled := viper.GetBool("host.ssl.enabled")

	c.SetCookie("auth_token", "", -1, "/", "", sslEnabled, true)
	c.SetCookie("logged_in", "", -1, "/", "", sslEnabled, false)
}

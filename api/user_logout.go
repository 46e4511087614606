package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) UserLogout(c *gin.Context) {
	clearSessionCookies(c)

	c.JSON(http.StatusOK, gin.H{
		"redirect": "/home",
	})
}

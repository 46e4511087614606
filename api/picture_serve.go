package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PictureServe streams a stored profile picture
func (a *API) PictureServe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	name := c.Param("name")

	f, err := a.Pictures.Open(name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Picture not found",
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read picture", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	contentType := "image/jpeg"
	if strings.HasSuffix(name, ".png") {
		contentType = "image/png"
	}

	c.Data(http.StatusOK, contentType, data)
}

package apiHttp

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

func corsMiddleware(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "*")
	c.Header("Access-Control-Allow-Headers", "*")

	if c.Request.Method != http.MethodOptions {
		c.Next()
	} else {
		c.AbortWithStatus(http.StatusOK)
	}
}

// apiKeyMiddleware gates every mutating endpoint behind the shared secret.
// The comparison is constant-time so the key cannot be guessed byte by byte.
func (h *Handler) apiKeyMiddleware(c *gin.Context) {
	apiKey := c.GetHeader(apiKeyHeader)

	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(h.config.Auth.APIKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, statusResponse{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	c.Next()
}

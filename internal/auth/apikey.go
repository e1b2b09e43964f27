package auth

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/okieraised/faceid-gateway/internal/apierr"
)

const headerName = "x-api-key"

// APIKeyMiddleware validates the x-api-key header. An empty apiKey disables
// authentication entirely (useful for local development).
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(headerName)
		if provided == "" {
			c.Error(apierr.New(apierr.AuthMissing, "missing x-api-key header"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.Error(apierr.New(apierr.AuthInvalid, "invalid x-api-key header"))
			c.Abort()
			return
		}

		c.Next()
	}
}

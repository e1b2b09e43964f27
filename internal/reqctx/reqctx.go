// Package reqctx carries the per-request id (§6) between the router's
// middleware and individual handlers, without making handlers import the
// router package (which itself wires the handlers).
package reqctx

import (
	"github.com/okieraised/faceid-gateway/internal/response"

	"github.com/gin-gonic/gin"
)

const (
	Header = "x-request-id"
	key    = "request_id"
)

// Inject reads x-request-id off the incoming request, generating one if
// absent, stashes it on the context, and mirrors it onto the response.
func Inject(c *gin.Context) string {
	id := c.GetHeader(Header)
	if id == "" {
		id = response.NewRequestID()
	}
	c.Set(key, id)
	c.Header(Header, id)
	return id
}

// RequestID reads the id stashed by Inject.
func RequestID(c *gin.Context) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

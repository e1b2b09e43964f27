package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/okieraised/faceid-gateway/internal/apierr"
)

func newTestRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			status := http.StatusInternalServerError
			if ae, ok := apierr.As(c.Errors.Last().Err); ok {
				status = ae.Kind.HTTPStatus()
			}
			c.JSON(status, gin.H{"error": c.Errors.Last().Error()})
		}
	})
	r.GET("/secure", APIKeyMiddleware(apiKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAPIKeyMiddlewareDisabledWhenKeyEmpty(t *testing.T) {
	r := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newTestRouter("topsecret")
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyMiddlewareRejectsWrongKey(t *testing.T) {
	r := newTestRouter("topsecret")
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("x-api-key", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPIKeyMiddlewareAcceptsCorrectKey(t *testing.T) {
	r := newTestRouter("topsecret")
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("x-api-key", "topsecret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

package reqctx

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func TestInjectGeneratesIDWhenAbsent(t *testing.T) {
	c, w := newTestContext()
	id := Inject(c)

	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Header().Get(Header))
	assert.Equal(t, id, RequestID(c))
}

func TestInjectPreservesIncomingID(t *testing.T) {
	c, w := newTestContext()
	c.Request.Header.Set(Header, "client-supplied-id")

	id := Inject(c)

	assert.Equal(t, "client-supplied-id", id)
	assert.Equal(t, "client-supplied-id", w.Header().Get(Header))
}

func TestRequestIDReturnsEmptyWithoutInject(t *testing.T) {
	c, _ := newTestContext()
	assert.Empty(t, RequestID(c))
}

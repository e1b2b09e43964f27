package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/okieraised/faceid-gateway/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRemotePromotesDeadlineExceeded(t *testing.T) {
	cause := fmt.Errorf("dial: %w", context.DeadlineExceeded)
	err := WrapRemote(RemoteUnavailable, "inference failed", cause)

	assert.Equal(t, UpstreamTimeout, err.Kind)
	assert.Equal(t, http.StatusGatewayTimeout, err.Kind.HTTPStatus())
	assert.Equal(t, response.CodeServer, err.Kind.Code())
}

func TestWrapRemoteKeepsFallbackOnOtherErrors(t *testing.T) {
	err := WrapRemote(RemoteUnavailable, "inference failed", errors.New("connection refused"))
	assert.Equal(t, RemoteUnavailable, err.Kind)
}

func TestAsUnwrapsThroughStandardWrapping(t *testing.T) {
	inner := New(InputInvalid, "bad request")
	wrapped := fmt.Errorf("handler: %w", inner)

	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, InputInvalid, ae.Kind)
}

func TestPublicMessageHidesInternalCauses(t *testing.T) {
	err := Wrap(RemoteModelError, "model call failed", errors.New("leaked internal detail"))
	assert.Equal(t, "internal error", err.PublicMessage())

	clientErr := New(InputInvalid, "missing field")
	assert.Equal(t, "missing field", clientErr.PublicMessage())
}

func TestKindStringCoversEveryKind(t *testing.T) {
	kinds := []Kind{
		InputInvalid, AuthMissing, AuthInvalid, NotFound,
		RemoteUnavailable, RemoteModelError, ModelOutputInvalid, UpstreamTimeout,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		assert.NotEqual(t, "unknown", s)
		assert.False(t, seen[s], "duplicate label %q", s)
		seen[s] = true
	}
}

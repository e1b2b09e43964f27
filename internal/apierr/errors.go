// Package apierr defines the error-kind taxonomy shared by the pipeline and
// the HTTP layer. Kinds carry their own HTTP status and response code so the
// router never needs a second lookup table.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okieraised/faceid-gateway/internal/response"
)

type Kind int

const (
	InputInvalid Kind = iota
	AuthMissing
	AuthInvalid
	NotFound
	RemoteUnavailable
	RemoteModelError
	ModelOutputInvalid
	UpstreamTimeout
)

// Error wraps a Kind with a human message and, optionally, an underlying
// cause that is logged but never surfaced to the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WrapRemote wraps an error returned from a remote inference call, promoting
// it to UpstreamTimeout when the cause is a context deadline rather than the
// given fallback kind — every request-time call site that reaches the tensor
// server goes through this instead of a plain Wrap.
func WrapRemote(fallback Kind, message string, cause error) *Error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return &Error{Kind: UpstreamTimeout, Message: message, Cause: cause}
	}
	return &Error{Kind: fallback, Message: message, Cause: cause}
}

func (k Kind) String() string {
	switch k {
	case InputInvalid:
		return "input_invalid"
	case AuthMissing:
		return "auth_missing"
	case AuthInvalid:
		return "auth_invalid"
	case NotFound:
		return "not_found"
	case RemoteUnavailable:
		return "remote_unavailable"
	case RemoteModelError:
		return "remote_model_error"
	case ModelOutputInvalid:
		return "model_output_invalid"
	case UpstreamTimeout:
		return "upstream_timeout"
	default:
		return "unknown"
	}
}

// HTTPStatus and Code return the §7 error-handling-design mapping for kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case InputInvalid:
		return http.StatusBadRequest
	case AuthMissing:
		return http.StatusUnauthorized
	case AuthInvalid:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	case RemoteUnavailable, RemoteModelError, ModelOutputInvalid:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) Code() response.Code {
	switch k {
	case InputInvalid, NotFound:
		return response.CodeInput
	case AuthMissing, AuthInvalid:
		return response.CodeAuth
	default:
		return response.CodeServer
	}
}

// PublicMessage returns the message safe to put on the wire: client-facing
// kinds (InputInvalid, auth, NotFound) keep their own text, everything else
// is flattened to a generic message so remote-server text never leaks.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case InputInvalid, AuthMissing, AuthInvalid, NotFound:
		return e.Message
	case UpstreamTimeout:
		return "request timed out"
	default:
		return "internal error"
	}
}

// As reports whether err (or something it wraps) is an *Error, mirroring the
// errors.As contract so callers can branch on Kind.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

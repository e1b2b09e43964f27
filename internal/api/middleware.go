package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/observability"
	"github.com/okieraised/faceid-gateway/internal/reqctx"
	"github.com/okieraised/faceid-gateway/internal/response"
)

// TracingMiddleware starts one span per request against the global tracer
// provider installed by observability.SetupTracer, tagging it with the
// request id stashed by RequestIDMiddleware.
func TracingMiddleware() gin.HandlerFunc {
	tracer := observability.Tracer("faceid-gateway/api")
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.FullPath())
		defer span.End()

		span.SetAttributes(attribute.String("request_id", RequestID(c)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "request failed")
		}
	}
}

// RequestIDMiddleware injects an x-request-id if absent and propagates it
// back on the response, per §6's header contract.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqctx.Inject(c)
		c.Next()
	}
}

// RequestID reads the id stashed by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return reqctx.RequestID(c)
}

// LoggingMiddleware logs each request with slog and records HTTP duration.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		slog.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", duration.String(),
			"request_id", RequestID(c),
		)

		observability.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			fmt.Sprintf("%d", status),
		).Observe(duration.Seconds())
	}
}

// ErrorHandlingMiddleware converts the last error registered via c.Error
// into the response envelope. Non-client kinds are logged with full detail
// and surfaced with a generic message, per §7's propagation policy.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		reqID := RequestID(c)

		apiErr, ok := apierr.As(err)
		if !ok {
			apiErr = apierr.Wrap(apierr.RemoteModelError, "unhandled error", err)
		}

		if apiErr.Kind != apierr.InputInvalid && apiErr.Kind != apierr.AuthMissing && apiErr.Kind != apierr.AuthInvalid {
			slog.Error("request failed", "request_id", reqID, "error", apiErr.Error())
		}

		c.JSON(apiErr.Kind.HTTPStatus(), response.Err(reqID, apiErr.Kind.Code(), apiErr.PublicMessage()))
	}
}

package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProvider wraps the SDK provider so callers only need Shutdown at
// process exit, mirroring the Rust original's tracer/tracer.rs lifecycle:
// built once at startup, flushed on shutdown, never touched by the core
// pipelines themselves.
type TracerProvider struct {
	sdk *sdktrace.TracerProvider
}

// SetupTracer builds and installs a global tracer provider exporting spans
// over OTLP/gRPC to uri. An empty uri disables export but still installs a
// provider so Tracer() always returns something usable.
func SetupTracer(ctx context.Context, uri string, appName string) (*TracerProvider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(appName),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if uri != "" {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(uri), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("dial otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &TracerProvider{sdk: tp}, nil
}

func (t *TracerProvider) Shutdown(ctx context.Context) error {
	return t.sdk.Shutdown(ctx)
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

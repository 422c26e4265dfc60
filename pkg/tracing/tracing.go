package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "cryptopulse"
	serviceVersion      = "1.0.0"
	defaultEndpoint     = "localhost:4317"
)

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// InitTracer installs the global tracer provider for one binary. Spans are
// exported over OTLP gRPC unless TRACING_ENABLED is false, in which case they
// are recorded locally and dropped.
func InitTracer(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, trace.Tracer, error) {
	if serviceName == "" {
		serviceName = instrumentationName
	}

	opts := []sdktrace.TracerProviderOption{}
	if exportEnabled() {
		exporter, err := newTraceExporter(ctx, endpoint())
		if err != nil {
			return nil, nil, fmt.Errorf("create trace exporter: %w", err)
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		))
		if err != nil {
			return nil, nil, fmt.Errorf("build trace resource: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter), sdktrace.WithResource(res))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, tp.Tracer(instrumentationName), nil
}

// exportEnabled treats an unset or unparsable TRACING_ENABLED as true.
func exportEnabled() bool {
	v := strings.TrimSpace(os.Getenv("TRACING_ENABLED"))
	if v == "" {
		return true
	}
	enabled, err := strconv.ParseBool(v)
	return err != nil || enabled
}

func endpoint() string {
	if e := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); e != "" {
		return e
	}
	return defaultEndpoint
}

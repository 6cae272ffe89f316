package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"divcli/internal/config"
	"divcli/pkg/contracts"
)

// TracerName names the instrumentation scope of every divcli span.
const TracerName = "divcli"

// Tracing owns the tracer provider for one process.
type Tracing struct {
	Provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
}

// InitializeTracing builds the provider chosen by cfg. The stdout exporter
// writes to stderr so command output on stdout stays clean.
func InitializeTracing(cfg config.TracingConfig, logger *slog.Logger) (*Tracing, error) {
	return NewTracing(cfg, os.Stderr, logger)
}

// NewTracing builds a provider whose stdout exporter writes to w.
func NewTracing(cfg config.TracingConfig, w io.Writer, logger *slog.Logger) (*Tracing, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(TracerName),
		semconv.ServiceVersion(contracts.Version),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	switch cfg.Exporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	if logger != nil {
		logger.Debug("Tracing initialized",
			slog.String("exporter", cfg.Exporter),
			slog.Float64("sample_ratio", cfg.SampleRatio))
	}
	return &Tracing{Provider: tp, Tracer: tp.Tracer(TracerName)}, nil
}

// Shutdown flushes pending spans. Safe on a nil receiver.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.Provider == nil {
		return nil
	}
	if err := t.Provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// TraceIDFromContext returns the id of the span in ctx, or "" when there is
// no valid span.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// StartSpan starts a span and copies its trace id into ctx for logging.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	if id := TraceIDFromContext(ctx); id != "" {
		ctx = WithTraceID(ctx, id)
	}
	return ctx, span
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

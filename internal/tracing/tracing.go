// Package tracing wraps OpenTelemetry so features only deal with StartSpan
// and EndSpan. Until Init is called the global provider is a no-op.
package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-approvals"

var (
	providerOnce sync.Once
	providerErr  error
	provider     *sdktrace.TracerProvider
)

// Init installs a stdout exporter writing to outputFile, or os.Stdout when
// empty. Only the first call has an effect.
func Init(serviceName, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}

	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(attribute.String("service.name", serviceName)),
		)
		if err != nil {
			providerErr = err
			return
		}
		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
	})
	return providerErr
}

// Shutdown flushes and stops the installed provider, if any.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// StartSpan starts an internal span carrying attrs.
func StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(attrs) > 0 {
		kv := make([]attribute.KeyValue, 0, len(attrs))
		for k, v := range attrs {
			kv = append(kv, attribute.String(k, v))
		}
		span.SetAttributes(kv...)
	}
	return ctx, span
}

// EndSpan records err (if any) as the span status and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Package tracing wraps OpenTelemetry so the scheduler can open spans around
// admission and dispatch ticks without importing the upstream packages.
// Until Init or InitWithExporter is called, the global no-op provider is
// in effect and spans cost nothing.
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

const instrumentationName = "github.com/pcb-sim/pcb-sim"

// Init configures OpenTelemetry with the stdout exporter. If outputFile is empty
// spans are written to os.Stdout, otherwise to the named file, which Shutdown closes.
// The first successful initialisation wins; later calls are no-ops.
func Init(serviceName, serviceVersion, outputFile string) error {
	if outputFile == "" {
		return initWriter(serviceName, serviceVersion, os.Stdout, nil)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	return initWriter(serviceName, serviceVersion, f, f)
}

// InitWithExporter configures OpenTelemetry with the supplied exporter.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	return installProvider(serviceName, serviceVersion, exporter, nil)
}

// initWriter exports spans to w. A non-nil closer is owned by the installed
// provider and closed on Shutdown; if no provider is installed it is closed now.
func initWriter(serviceName, serviceVersion string, w io.Writer, closer io.Closer) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		closeOutput(closer)
		return err
	}
	return installProvider(serviceName, serviceVersion, exporter, closer)
}

var (
	providerOnce sync.Once
	providerErr  error
	provider     *sdktrace.TracerProvider
	output       io.Closer
)

func installProvider(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, closer io.Closer) error {
	if exporter == nil {
		closeOutput(closer)
		return nil
	}

	kept := false
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}

		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		output, kept = closer, true
		otel.SetTracerProvider(provider)
	})
	if !kept {
		closeOutput(closer)
	}

	return providerErr
}

// Shutdown flushes and stops the installed provider, if any, then closes
// the output file Init opened.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	if output != nil {
		if cerr := output.Close(); err == nil {
			err = cerr
		}
		output = nil
	}
	return err
}

func closeOutput(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// WithAttributes attaches string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, attribute.String(k, v))
	}
	s.span.SetAttributes(otelAttrs...)
	return s
}

// WithInt attaches an integer attribute to the span.
func (s *Span) WithInt(key string, value int) *Span {
	if s == nil {
		return s
	}
	s.span.SetAttributes(attribute.Int(key, value))
	return s
}

// SetStatus records an error status on the span, or OK when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
}

// StartSpan starts an internal child span of whatever span ctx carries.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &Span{span: span}
}

// EndSpan records the status derived from err and ends the span.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}

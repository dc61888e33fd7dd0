// Package telemetry exports one OpenTelemetry span per dispatched request.
// Without an OTLP endpoint every call is a no-op.
package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/unkn0wn-root/restpad/internal/telemetry"
	defaultDialTimeout  = 5 * time.Second
)

// Instrumenter opens a span around each outgoing request.
type Instrumenter interface {
	Start(ctx context.Context, info RequestStart) (context.Context, RequestSpan)
	Shutdown(ctx context.Context) error
}

type RequestSpan interface {
	End(result RequestResult)
}

type Option func(*setup)

type setup struct {
	exporter   sdktrace.SpanExporter
	processors []sdktrace.SpanProcessor
}

func (s setup) custom() bool {
	return s.exporter != nil || len(s.processors) > 0
}

// WithSpanProcessor attaches proc in addition to any exporter. Tests use it
// with a span recorder.
func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(s *setup) {
		if proc != nil {
			s.processors = append(s.processors, proc)
		}
	}
}

// WithExporter replaces the OTLP exporter built from Config.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(s *setup) {
		if exp != nil {
			s.exporter = exp
		}
	}
}

type instrumenter struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	once     sync.Once
	err      error
}

// New returns Noop unless cfg has an endpoint or an option supplies an
// exporter or processor.
func New(cfg Config, opts ...Option) (Instrumenter, error) {
	var s setup
	for _, opt := range opts {
		opt(&s)
	}
	if !cfg.Enabled() && !s.custom() {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(serviceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	if s.exporter == nil && cfg.Enabled() {
		if s.exporter, err = dialExporter(cfg); err != nil {
			return nil, err
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if s.exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(s.exporter))
	}
	for _, proc := range s.processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &instrumenter{
		tracer:   tp.Tracer(instrumentationName),
		provider: tp,
	}, nil
}

func (in *instrumenter) Start(ctx context.Context, info RequestStart) (context.Context, RequestSpan) {
	if info.HTTPRequest == nil {
		return ctx, noopSpan{}
	}
	ctx, span := in.tracer.Start(
		ctx,
		info.spanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(info.attributes()...),
	)
	return ctx, &requestSpan{span: span}
}

// Shutdown flushes pending spans. Calls after the first return its result.
func (in *instrumenter) Shutdown(ctx context.Context) error {
	if in == nil || in.provider == nil {
		return nil
	}
	in.once.Do(func() {
		in.err = in.provider.Shutdown(ctx)
	})
	return in.err
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

func (noopInstrumenter) Start(ctx context.Context, _ RequestStart) (context.Context, RequestSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

type noopSpan struct{}

func (noopSpan) End(RequestResult) {}

func dialExporter(cfg Config) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("telemetry endpoint is required")
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

// Package tracing configures the OpenTelemetry trace provider.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceVersion = "0.1.0"

// Config holds tracing settings.
type Config struct {
	ServiceName   string
	Environment   string
	OTLPEndpoint  string
	SampleRate    float64
	ExportTimeout time.Duration
}

// FromEnv builds a Config for the named service from the process
// environment: ENVIRONMENT, OTLP_ENDPOINT and TRACE_SAMPLE_RATE, with
// development defaults for anything unset. A sample rate outside (0, 1]
// is ignored.
func FromEnv(serviceName string) Config {
	cfg := Config{
		ServiceName:   serviceName,
		Environment:   "development",
		OTLPEndpoint:  "localhost:4317",
		SampleRate:    1.0,
		ExportTimeout: 10 * time.Second,
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}
	if ep := os.Getenv("OTLP_ENDPOINT"); ep != "" {
		cfg.OTLPEndpoint = ep
	}
	if raw := os.Getenv("TRACE_SAMPLE_RATE"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate > 0 && rate <= 1.0 {
			cfg.SampleRate = rate
		}
	}
	return cfg
}

// Provider owns the configured trace provider.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Init installs a global OTLP/gRPC trace provider and W3C propagation.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(cfg.ExportTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp}, nil
}

// sampler picks head sampling for locally started traces. Child spans
// always follow the parent's decision, so a partial rate never breaks
// an inbound trace apart.
func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1.0 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}

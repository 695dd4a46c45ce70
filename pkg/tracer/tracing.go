// Package tracer wires up an OTLP/gRPC trace provider for the driver. The
// driver and tool invoker open spans unconditionally; without a provider
// installed here they are no-ops.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config describes the OTLP tracer configuration.
type Config struct {
	// ServiceName is required and becomes the service.name resource attribute.
	ServiceName string
	// Endpoint holds the OTLP gRPC collector address (host:port).
	Endpoint string
	// Insecure disables transport credentials when true.
	Insecure bool
	// Sampler overrides the default sampling decision when non-nil.
	Sampler sdktrace.Sampler
}

// NewTracerProvider builds an OTEL TracerProvider according to cfg and
// installs it globally. The caller is responsible for Shutdown on exit.
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("tracer: service name is required")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("process.pid", fmt.Sprintf("%d", os.Getpid())),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracer: resource creation: %w", err)
	}

	exp, err := buildExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sampler := cfg.Sampler
	if sampler == nil {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1.0))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exp)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

func buildExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		}
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tracer: OTLP exporter creation: %w", err)
	}
	return exp, nil
}

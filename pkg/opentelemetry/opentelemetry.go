// Package opentelemetry sets up the otlp trace exporter.
package opentelemetry

import (
	"context"
	"time"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"google.golang.org/grpc"
)

const exporterTimeout = 10 * time.Second

// InitTracer registers a global tracer provider exporting to the configured
// otel collector. The returned function flushes and shuts the provider down.
func InitTracer(ctx context.Context, cfg *config.Config, logger lumber.Logger) func(context.Context) error {
	exporterCtx, cancel := context.WithTimeout(ctx, exporterTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(exporterCtx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.Tracing.OtelEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithBlock()))
	if err != nil {
		logger.Errorf("failed to create otlp trace exporter %v", err)
		return func(context.Context) error { return nil }
	}
	resources, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(constants.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Env)))
	if err != nil {
		logger.Errorf("could not set otel resources %v", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resources))
	otel.SetTracerProvider(provider)
	logger.Infof("otel tracer initialized with collector endpoint %s", cfg.Tracing.OtelEndpoint)
	return provider.Shutdown
}

package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls telemetry export for the QA service.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is the collector base URL; signal paths are appended.
	OTLPEndpoint string
	Enabled      bool
	SampleRatio  float64
}

// ConfigFromEnv reads telemetry settings. Export is off unless OTEL_ENABLED=true.
func ConfigFromEnv() Config {
	cfg := Config{
		ServiceName:    envOr("OTEL_SERVICE_NAME", "knowledge-qa"),
		ServiceVersion: envOr("SERVICE_VERSION", "0.0.0"),
		Environment:    envOr("DEPLOYMENT_ENV", "development"),
		OTLPEndpoint:   envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
		SampleRatio:    1.0,
	}
	if f, err := strconv.ParseFloat(os.Getenv("OTEL_TRACE_SAMPLE_RATIO"), 64); err == nil && f >= 0 && f <= 1 {
		cfg.SampleRatio = f
	}
	return cfg
}

// ShutdownFunc flushes and stops every installed provider.
type ShutdownFunc func(context.Context) error

// InitProvider installs the global tracer, logger and meter providers.
// With export disabled it returns a no-op shutdown and leaves the globals untouched.
// If a later provider fails, the ones already built are shut down before returning.
func InitProvider(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	var stops []func(context.Context) error
	shutdown := chainShutdown(&stops)
	fail := func(signal string, err error) (ShutdownFunc, error) {
		return nil, errors.Join(fmt.Errorf("otel %s provider: %w", signal, err), shutdown(ctx))
	}

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/traces"))
	if err != nil {
		return fail("tracer", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	stops = append(stops, tracerProvider.Shutdown)

	logExporter, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/logs"))
	if err != nil {
		return fail("logger", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	stops = append(stops, loggerProvider.Shutdown)

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/metrics"))
	if err != nil {
		return fail("meter", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	stops = append(stops, meterProvider.Shutdown)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	global.SetLoggerProvider(loggerProvider)
	otel.SetMeterProvider(meterProvider)

	return shutdown, nil
}

// chainShutdown stops providers in reverse install order and joins every error.
func chainShutdown(stops *[]func(context.Context) error) ShutdownFunc {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(*stops) - 1; i >= 0; i-- {
			errs = append(errs, (*stops)[i](ctx))
		}
		return errors.Join(errs...)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

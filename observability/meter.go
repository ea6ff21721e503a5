package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/wirekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for container observability.
type Metrics struct {
	resolveTotal       metric.Int64Counter
	resolveDuration    metric.Float64Histogram
	cacheHitTotal      metric.Int64Counter
	cacheMissTotal     metric.Int64Counter
	factoryErrorTotal  metric.Int64Counter
	cycleDetectedTotal metric.Int64Counter
	registrationActive metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolveTotal, err := meter.Int64Counter("resolve.total",
		metric.WithDescription("Total number of resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolve.total counter: %w", err)
	}

	resolveDuration, err := meter.Float64Histogram("resolve.duration",
		metric.WithDescription("Duration of resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolve.duration histogram: %w", err)
	}

	cacheHitTotal, err := meter.Int64Counter("cache.hit.total",
		metric.WithDescription("Resolutions served from the hot cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.hit.total counter: %w", err)
	}

	cacheMissTotal, err := meter.Int64Counter("cache.miss.total",
		metric.WithDescription("Resolutions that fell through to the store"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache.miss.total counter: %w", err)
	}

	factoryErrorTotal, err := meter.Int64Counter("factory.error.total",
		metric.WithDescription("Factory invocations that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating factory.error.total counter: %w", err)
	}

	cycleDetectedTotal, err := meter.Int64Counter("cycle.detected.total",
		metric.WithDescription("Dependency cycles found by scans"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cycle.detected.total counter: %w", err)
	}

	registrationActive, err := meter.Int64UpDownCounter("registration.active",
		metric.WithDescription("Number of live registrations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registration.active gauge: %w", err)
	}

	return &Metrics{
		resolveTotal:       resolveTotal,
		resolveDuration:    resolveDuration,
		cacheHitTotal:      cacheHitTotal,
		cacheMissTotal:     cacheMissTotal,
		factoryErrorTotal:  factoryErrorTotal,
		cycleDetectedTotal: cycleDetectedTotal,
		registrationActive: registrationActive,
	}, nil
}

// RecordResolve records one resolution with its outcome and source.
func (m *Metrics) RecordResolve(ctx context.Context, typeName, status string, cached bool, duration time.Duration) {
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", typeName),
		attribute.String("status", status),
		attribute.Bool("cached", cached),
	))
	m.resolveDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("type", typeName),
		attribute.Bool("cached", cached),
	))
	if cached {
		m.cacheHitTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typeName)))
	} else {
		m.cacheMissTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typeName)))
	}
}

// RecordFactoryError records a failed factory invocation.
func (m *Metrics) RecordFactoryError(ctx context.Context, typeName string) {
	m.factoryErrorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", typeName),
	))
}

// RecordCycleFindings records the cycle count of one scan.
func (m *Metrics) RecordCycleFindings(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	m.cycleDetectedTotal.Add(ctx, int64(count))
}

// RecordRegistration adjusts the live registration gauge.
func (m *Metrics) RecordRegistration(ctx context.Context, delta int64) {
	m.registrationActive.Add(ctx, delta)
}

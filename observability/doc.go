// Package observability provides OpenTelemetry tracing and metrics
// integration for the container runtime. Telemetry is opt-in; a container
// without metrics attached skips all recording.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanWarmUp)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-app"))
//	c := container.New(container.WithMetrics(metrics))
//
// Health:
//
//	health := observability.NewServiceHealth("my-app", "1.0.0")
//	health.AddComponent(c.CheckHealth(ctx))
package observability

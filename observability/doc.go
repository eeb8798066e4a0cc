// Package observability wires OpenTelemetry tracing and metrics for outbound
// HTTP traffic.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("billing"))
//	metrics.RecordRequest(ctx, "GET", "api.example.com", 200, elapsed)
package observability

package middleware_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fetchkit/middleware"
	"github.com/kbukum/fetchkit/observability"
)

func TestTracing_SpanAndPropagation(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	var got *http.Request
	req := newRequest(t, http.MethodGet, "http://example.com/orders", nil)
	if _, err := middleware.TracingWith(tp, "checkout")(capture(&got))(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Header.Get("traceparent") == "" {
		t.Error("expected traceparent header on outgoing request")
	}
	if req.Header.Get("traceparent") != "" {
		t.Error("inbound request must not be mutated")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "HTTP GET" || span.SpanKind != trace.SpanKindClient {
		t.Errorf("unexpected span %s kind %v", span.Name, span.SpanKind)
	}
	attrs := map[string]string{}
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[observability.AttrHTTPStatusCode] != "200" {
		t.Errorf("expected status attribute 200, got %q", attrs[observability.AttrHTTPStatusCode])
	}
	if attrs[observability.AttrServerAddress] != "example.com" {
		t.Errorf("expected server address, got %q", attrs[observability.AttrServerAddress])
	}
}

func TestTracing_ErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	do := middleware.TracingWith(tp, "checkout")(func(*http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})
	_, _ = do(newRequest(t, http.MethodPost, "http://example.com", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Fatalf("expected one errored span, got %v", spans)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ok := middleware.Metrics(m)(respond(http.StatusOK, ""))
	failing := middleware.Metrics(m)(func(*http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})
	_, _ = ok(newRequest(t, http.MethodGet, "http://example.com", nil))
	_, _ = ok(newRequest(t, http.MethodGet, "http://example.com", nil))
	_, _ = failing(newRequest(t, http.MethodGet, "http://example.com", nil))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	if sums[observability.MetricRequests] != 2 {
		t.Errorf("expected 2 requests, got %d", sums[observability.MetricRequests])
	}
	if sums[observability.MetricErrors] != 1 {
		t.Errorf("expected 1 error, got %d", sums[observability.MetricErrors])
	}
	if sums[observability.MetricActive] != 0 {
		t.Errorf("expected no requests in flight, got %d", sums[observability.MetricActive])
	}
}

func TestMetrics_NilUsesGlobalProvider(t *testing.T) {
	do := middleware.Metrics(nil)(respond(http.StatusOK, ""))
	if _, err := do(newRequest(t, http.MethodGet, "http://example.com", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	fetcherrors "github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/observability"
)

// Tracing starts a client span per request on the global tracer provider
// and injects the trace context into the outgoing headers.
func Tracing(serviceName string) fetch.Middleware {
	return TracingWith(nil, serviceName)
}

// TracingWith is Tracing on an explicit tracer provider. A nil tp uses the
// global provider.
func TracingWith(tp trace.TracerProvider, serviceName string) fetch.Middleware {
	tracer := observability.Tracer(tp)
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String(observability.AttrServiceName, serviceName),
					attribute.String(observability.AttrHTTPMethod, req.Method),
					attribute.String(observability.AttrURLFull, redactURL(req)),
					attribute.String(observability.AttrServerAddress, req.URL.Hostname()),
				),
			)
			defer span.End()

			out := req.Clone(ctx)
			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))

			resp, err := next(out)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.String(observability.AttrErrorType, fetcherrors.CodeOf(err).String()))
				return resp, err
			}

			span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, resp.StatusCode))
			if resp.StatusCode >= 500 {
				span.SetStatus(codes.Error, resp.Status)
			}
			return resp, nil
		}
	}
}

package middleware

import (
	"net/http"
	"time"

	fetcherrors "github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
)

// Metrics records request count, duration, in-flight requests and
// transport errors. A nil m creates the instruments on the global meter
// provider.
func Metrics(m *observability.Metrics) fetch.Middleware {
	if m == nil {
		var err error
		m, err = observability.NewMetrics(observability.Meter(meterName))
		if err != nil {
			logger.Warn("HTTP client metrics disabled", logger.MergeWithError(nil, err))
			return func(next fetch.Doer) fetch.Doer { return next }
		}
	}
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			host := req.URL.Host

			m.RecordStart(ctx, req.Method, host)
			defer m.RecordEnd(ctx, req.Method, host)

			start := time.Now()
			resp, err := next(req)
			if err != nil {
				m.RecordError(ctx, req.Method, host, fetcherrors.CodeOf(err).String(), time.Since(start))
				return resp, err
			}
			m.RecordRequest(ctx, req.Method, host, resp.StatusCode, time.Since(start))
			return resp, nil
		}
	}
}

const meterName = "github.com/kbukum/fetchkit/middleware"

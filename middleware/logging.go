package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/logger"
)

// Logging logs every request with method, URL, status and duration.
// Transport errors are logged at error level, 5xx at warn and everything
// else at debug. A nil log uses the global logger.
func Logging(log *logger.Logger) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			l := log
			if l == nil {
				l = logger.GetGlobalLogger()
			}
			l = l.WithContext(req.Context())

			fields := logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldURL, redactURL(req),
			)
			if id := req.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			fields = logger.MergeWithDuration(fields, time.Since(start))

			if err != nil {
				l.Error("Request failed", logger.MergeWithError(fields, err))
				return resp, err
			}

			fields[logger.FieldStatus] = resp.StatusCode
			if resp.StatusCode >= 500 {
				l.Warn("Request completed", fields)
			} else {
				l.Debug("Request completed", fields)
			}
			return resp, nil
		}
	}
}

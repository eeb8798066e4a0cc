package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	fetcherrors "github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/resilience"
)

// statusError carries a retryable response through resilience.Retry so the
// last one can be returned to the caller when attempts run out.
type statusError struct {
	resp       *http.Response
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.resp.StatusCode)
}

func (e *statusError) RetryAfter() time.Duration { return e.retryAfter }

// Retry re-sends a request while the outcome is retryable: transport errors
// classified retryable by the errors package, 408, 429 and 5xx responses.
// cfg.RetryIf, when set, replaces the transport error check.
//
// Only requests whose body can be replayed are retried (no body, or GetBody
// set). Discarded responses are drained and closed. When attempts run out
// on a retryable status, the last response is returned with a nil error.
// A Retry-After header on 429/503 overrides the computed backoff.
func Retry(cfg resilience.RetryConfig) fetch.Middleware {
	retryErr := cfg.RetryIf
	if retryErr == nil {
		retryErr = fetcherrors.IsRetryable
	}
	cfg.RetryIf = func(err error) bool {
		var se *statusError
		if errors.As(err, &se) {
			return true
		}
		return retryErr(err)
	}

	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if !replayable(req) {
				return next(req)
			}

			var (
				attempt int
				pending *http.Response
			)
			resp, err := resilience.Retry(req.Context(), cfg, func() (*http.Response, error) {
				if pending != nil {
					discard(pending)
					pending = nil
				}
				attempt++

				out, err := rewind(req, attempt)
				if err != nil {
					return nil, err
				}
				resp, err := next(out)
				if err != nil {
					return nil, err
				}
				if fetcherrors.IsRetryableStatus(resp.StatusCode) {
					pending = resp
					return nil, &statusError{resp: resp, retryAfter: retryAfter(resp)}
				}
				return resp, nil
			})
			if err == nil {
				return resp, nil
			}

			var se *statusError
			if errors.As(err, &se) && se.resp == pending {
				return pending, nil
			}
			discard(pending)
			return nil, err
		}
	}
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// rewind returns the request for the given attempt. The first attempt uses
// req as is; later attempts get a clone with a fresh body.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 {
		return req, nil
	}
	out := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewinding request body: %w", err)
		}
		out.Body = body
	}
	return out, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Returns 0 when absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

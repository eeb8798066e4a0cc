package middleware

import (
	"context"
	"net/http"
	"time"

	fetcherrors "github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/resilience"
)

// CircuitBreaker fails fast with resilience.ErrCircuitOpen while cb is open.
// Transport errors and 5xx responses count as failures.
func CircuitBreaker(cb *resilience.CircuitBreaker) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if err := cb.Allow(); err != nil {
				e := fetcherrors.Wrap(fetcherrors.ErrCodeCircuitOpen, err)
				e.Message = cb.Name() + ": " + e.Message
				return nil, e
			}
			resp, err := next(req)
			cb.Record(err == nil && resp.StatusCode < 500)
			return resp, err
		}
	}
}

// RateLimit paces requests through rl. By default it blocks until a token
// is available or the request context is done; a FailFast limiter rejects
// with resilience.ErrRateLimited instead.
func RateLimit(rl *resilience.RateLimiter) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if err := rl.Take(req.Context()); err != nil {
				return nil, err
			}
			return next(req)
		}
	}
}

// Bulkhead bounds the number of requests in flight. A slot is held until
// the response body is closed, or released at once on error.
func Bulkhead(bh *resilience.Bulkhead) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if err := bh.Acquire(req.Context()); err != nil {
				return nil, err
			}
			resp, err := next(req)
			if err != nil {
				bh.Release()
				return resp, err
			}
			onClose(resp, bh.Release)
			return resp, nil
		}
	}
}

// Timeout bounds each pass through the layers below it with a deadline of
// d. The deadline stays active while the body is read and is released when
// the body is closed. A non-positive d disables the timeout.
func Timeout(d time.Duration) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		if d <= 0 {
			return next
		}
		return func(req *http.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(req.Context(), d)
			resp, err := next(req.WithContext(ctx))
			if err != nil {
				cancel()
				return resp, err
			}
			onClose(resp, cancel)
			return resp, nil
		}
	}
}

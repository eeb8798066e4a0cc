package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/fetchkit/fetch"
)

type snapshot struct {
	resp *http.Response
	body []byte
}

func (s *snapshot) copyFor(req *http.Request) *http.Response {
	r := *s.resp
	r.Header = s.resp.Header.Clone()
	r.Trailer = s.resp.Trailer.Clone()
	r.Body = io.NopCloser(bytes.NewReader(s.body))
	r.ContentLength = int64(len(s.body))
	r.Request = req
	return &r
}

// Coalesce collapses concurrent identical GET and HEAD requests into one
// upstream call. Requests are identical when method, URL and every header
// match, apart from the per-request correlation headers (X-Request-ID and
// W3C trace context). The shared response body is buffered in memory and
// every caller gets an independent copy. Other methods pass through.
//
// The shared call runs with the context of the first caller; if that
// request is canceled, callers waiting on it see the same error.
func Coalesce() fetch.Middleware {
	var group singleflight.Group
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(req)
			}

			v, err, _ := group.Do(coalesceKey(req), func() (interface{}, error) {
				resp, err := next(req)
				if err != nil {
					return nil, err
				}
				snap := &snapshot{resp: resp}
				if resp.Body != nil {
					defer resp.Body.Close()
					if snap.body, err = io.ReadAll(resp.Body); err != nil {
						return nil, fmt.Errorf("coalesce: reading body: %w", err)
					}
				}
				return snap, nil
			})
			if err != nil {
				return nil, err
			}
			return v.(*snapshot).copyFor(req), nil
		}
	}
}

// correlationHeaders differ on every request and never change the response.
var correlationHeaders = map[string]bool{
	"X-Request-Id": true,
	"Traceparent":  true,
	"Tracestate":   true,
}

func coalesceKey(req *http.Request) string {
	var b strings.Builder
	b.WriteString(req.Method)
	b.WriteByte(' ')
	b.WriteString(req.URL.String())
	if req.Host != "" {
		b.WriteString("\nHost: ")
		b.WriteString(req.Host)
	}

	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		if !correlationHeaders[http.CanonicalHeaderKey(name)] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteByte('\n')
		b.WriteString(http.CanonicalHeaderKey(name))
		b.WriteString(": ")
		b.WriteString(strings.Join(req.Header[name], "\x00"))
	}
	return b.String()
}

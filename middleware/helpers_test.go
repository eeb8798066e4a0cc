package middleware_test

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/fetchkit/fetch"
)

// respond returns a Doer that answers every request with status and body.
func respond(status int, body string) fetch.Doer {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

// capture returns a Doer that stores the request it receives.
func capture(dst **http.Request) fetch.Doer {
	return func(req *http.Request) (*http.Response, error) {
		*dst = req
		return respond(http.StatusOK, "ok")(req)
	}
}

// counting wraps d and counts invocations.
func counting(d fetch.Doer, n *atomic.Int32) fetch.Doer {
	return func(req *http.Request) (*http.Response, error) {
		n.Add(1)
		return d(req)
	}
}

// trackedBody records whether Close was called.
type trackedBody struct {
	io.Reader
	closed atomic.Bool
}

func (b *trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

func newRequest(t *testing.T, method, url string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

package fetch

import "net/http"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Transport composes middlewares around rt and returns the result as an
// http.RoundTripper. A nil rt means http.DefaultTransport.
//
// Middlewares installed at the transport level run once per round trip,
// which includes each redirect hop followed by the client. They must not
// mutate the inbound request; clone it instead.
func Transport(rt http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return RoundTripperFunc(Compose(middlewares, rt.RoundTrip))
}

// NewClient returns a shallow copy of base whose transport runs middlewares
// around base's transport. base itself is left untouched; nil means
// http.DefaultClient.
func NewClient(base *http.Client, middlewares ...Middleware) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	c := *base
	c.Transport = Transport(base.Transport, middlewares...)
	return &c
}

package fetch

import "net/http"

// Doer executes a single HTTP request. It has the signature of
// (*http.Client).Do, with per-request options carried on the request itself.
type Doer func(*http.Request) (*http.Response, error)

// Do invokes d. It lets a Doer stand in wherever an HTTPDoer is accepted.
func (d Doer) Do(req *http.Request) (*http.Response, error) {
	return d(req)
}

// HTTPDoer is the method set shared by *http.Client and Doer.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Middleware wraps a Doer. The returned Doer typically delegates to next
// while adding behavior before or after the call.
type Middleware func(next Doer) Doer

// Options configures Build. The zero value is valid.
type Options struct {
	// Middlewares are applied in order: the first is outermost. Defaults to none.
	Middlewares []Middleware
	// Do is the terminal executor. Defaults to http.DefaultClient.Do.
	Do Doer
}

// Build resolves the defaults in opts and returns the composed Doer.
func Build(opts Options) Doer {
	return Compose(opts.Middlewares, opts.Do)
}

// Compose nests middlewares around terminal so that
//
//	Compose([]Middleware{a, b, c}, t)
//
// behaves as a(b(c(t))). With no middlewares the terminal itself is returned.
// A nil terminal is replaced by http.DefaultClient.Do. The middlewares slice is
// read once and never retained.
func Compose(middlewares []Middleware, terminal Doer) Doer {
	if terminal == nil {
		terminal = DefaultDoer()
	}
	next := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](next)
	}
	return next
}

// Chain composes multiple middlewares into one. Chain(a, b, c)(d) is
// equivalent to a(b(c(d))).
func Chain(middlewares ...Middleware) Middleware {
	mws := append([]Middleware(nil), middlewares...)
	return func(next Doer) Doer {
		return Compose(mws, next)
	}
}

// DefaultDoer returns the Doer of http.DefaultClient, resolved at call time.
func DefaultDoer() Doer {
	return http.DefaultClient.Do
}

// FromClient adapts any HTTPDoer into a Doer. A nil client means
// http.DefaultClient.
func FromClient(c HTTPDoer) Doer {
	if c == nil {
		return DefaultDoer()
	}
	if d, ok := c.(Doer); ok {
		return d
	}
	return c.Do
}

package middleware

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/fetchkit/fetch"
)

// Headers sets the given headers on every request. Headers already present
// on the request are kept.
func Headers(headers map[string]string) fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		if len(headers) == 0 {
			return next
		}
		return func(req *http.Request) (*http.Response, error) {
			out := req.Clone(req.Context())
			for k, v := range headers {
				if out.Header.Get(k) == "" {
					out.Header.Set(k, v)
				}
			}
			return next(out)
		}
	}
}

// UserAgent sets the User-Agent header when the request has none.
func UserAgent(ua string) fetch.Middleware {
	return Headers(map[string]string{"User-Agent": ua})
}

// BaseURL resolves relative request URLs against base. The request path is
// appended to the base path and the request query is kept. Absolute
// request URLs pass through unchanged.
func BaseURL(base string) fetch.Middleware {
	u, parseErr := url.Parse(base)
	if parseErr == nil && (u.Scheme == "" || u.Host == "") {
		parseErr = fmt.Errorf("%q is not an absolute URL", base)
	}
	if parseErr == nil && u.Path == "" {
		// JoinPath keeps an empty base path relative.
		u.Path = "/"
	}
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if req.URL.IsAbs() && req.URL.Host != "" {
				return next(req)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("base url: %w", parseErr)
			}

			resolved := u.JoinPath(req.URL.EscapedPath())
			resolved.RawQuery = req.URL.RawQuery
			resolved.Fragment = req.URL.Fragment

			out := req.Clone(req.Context())
			out.URL = resolved
			out.Host = ""
			return next(out)
		}
	}
}

package middleware

import (
	"net/http"

	fetcherrors "github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/fetch"
)

// CheckStatus turns 4xx and 5xx responses into a *errors.Error carrying the
// status code and up to errors.MaxBodySnippet bytes of the body. The
// response body is consumed and closed.
func CheckStatus() fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil {
				return resp, err
			}
			if e := fetcherrors.FromResponse(resp); e != nil {
				return nil, e
			}
			return resp, nil
		}
	}
}

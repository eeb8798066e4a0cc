// Package fetch composes HTTP request interceptors around a base request
// executor.
//
// A Doer has the same shape as (*http.Client).Do, so the composed result is a
// drop-in substitute at every call site that sends requests. A Middleware
// takes the next Doer and returns a new one; it may run code before and after
// calling next, call next several times, or not call it at all.
//
// Middlewares run in slice order: the first one is the outermost layer.
//
//	do := fetch.Build(fetch.Options{
//	    Middlewares: []fetch.Middleware{logging, auth, retry},
//	})
//	resp, err := do(req)
//
// For code that only accepts an *http.Client, NewClient installs the chain as
// the client's transport:
//
//	client := fetch.NewClient(http.DefaultClient, logging, retry)
//
// The package performs no networking, logging, retrying or error handling of
// its own. Ready-made interceptors live in the middleware package.
package fetch

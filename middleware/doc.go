// Package middleware provides ready-made fetch.Middleware interceptors for
// outbound HTTP requests.
//
// Interceptors are independent and caller-selected. They never mutate the
// inbound *http.Request; request-shaping interceptors clone it first.
//
//	do := fetch.Build(fetch.Options{
//	    Middlewares: []fetch.Middleware{
//	        middleware.Recover(),
//	        middleware.RequestID(),
//	        middleware.Logging(log),
//	        middleware.Retry(resilience.DefaultRetryConfig()),
//	        middleware.Timeout(5 * time.Second),
//	        middleware.Auth(middleware.BearerAuth(token)),
//	    },
//	})
package middleware

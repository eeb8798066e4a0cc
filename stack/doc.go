// Package stack assembles a complete client from configuration: a
// transport terminal plus the interceptors from package middleware in a
// fixed order.
//
//	s, err := stack.Load("billing-api")
//	resp, err := s.Do(req)
//
// The order, outermost first, is Recover, CheckStatus, RequestID, BaseURL,
// Tracing, Logging, Metrics, Coalesce, CircuitBreaker, Retry, RateLimit,
// Bulkhead, Timeout, Headers, UserAgent, Auth, JWT, Sign, then any extra
// middlewares given with WithMiddleware, then the terminal. Disabled layers
// are left out. BaseURL sits above the telemetry layers so logs and spans
// carry absolute URLs.
package stack

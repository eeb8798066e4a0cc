// Package errors classifies outbound HTTP failures into typed errors with a
// machine-readable code and a retryable flag. Interceptors use it to decide
// whether to retry, trip a circuit breaker, or surface a status error.
package errors

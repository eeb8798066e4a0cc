// Package resilience provides the fault-tolerance primitives behind the
// retry, circuit breaker, rate limit and bulkhead interceptors.
//
//   - Retry: re-runs a call with exponential backoff (avast/retry-go)
//   - CircuitBreaker: fails fast while an upstream is unhealthy
//   - RateLimiter: token bucket pacing (golang.org/x/time/rate)
//   - Bulkhead: caps concurrent calls (golang.org/x/sync/semaphore)
//
// The primitives are safe for concurrent use and are normally shared by all
// requests sent through one client stack.
package resilience

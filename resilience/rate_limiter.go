package resilience

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a call is refused by the limiter.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter for metrics/logging.
	Name string `yaml:"name" mapstructure:"name"`
	// Rate is the number of requests allowed per second.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	// Burst is the maximum burst size.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	// FailFast rejects with ErrRateLimited instead of waiting for a token.
	FailFast bool `yaml:"fail_fast" mapstructure:"fail_fast"`
	// OnLimit is called when a request is rate limited.
	OnLimit func(name string) `yaml:"-" mapstructure:"-"`
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  10.0,
		Burst: 20,
	}
}

// RateLimiter is a token bucket limiter.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10.0
	}
	if config.Burst <= 0 {
		config.Burst = max(int(config.Rate), 1)
	}

	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Name returns the configured limiter name.
func (r *RateLimiter) Name() string { return r.config.Name }

// Allow consumes a token if one is available.
func (r *RateLimiter) Allow() bool {
	if r.limiter.Allow() {
		return true
	}
	r.onLimit()
	return false
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.onLimit()
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return nil
}

// Take applies the configured policy: Allow when config.FailFast is set,
// otherwise Wait.
func (r *RateLimiter) Take(ctx context.Context) error {
	if !r.config.FailFast {
		return r.Wait(ctx)
	}
	if !r.Allow() {
		return ErrRateLimited
	}
	return nil
}

// Tokens returns the number of tokens currently available.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}

func (r *RateLimiter) onLimit() {
	if r.config.OnLimit != nil {
		r.config.OnLimit(r.config.Name)
	}
}

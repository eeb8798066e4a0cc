package stack

import (
	"fmt"
	"time"

	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/middleware"
	"github.com/kbukum/fetchkit/resilience"
	"github.com/kbukum/fetchkit/transport"
)

// Config describes one client stack. Nil sections disable their layer.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is prepended to relative request URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// UserAgent is sent when a request has none.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// Timeout bounds each attempt. 0 disables the per-attempt timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	Transport transport.Config `yaml:"transport" mapstructure:"transport"`
	Logging   logger.Config    `yaml:"logging" mapstructure:"logging"`

	Auth *middleware.AuthConfig `yaml:"auth" mapstructure:"auth"`
	JWT  *middleware.JWTConfig  `yaml:"jwt" mapstructure:"jwt"`
	Sign *middleware.SignConfig `yaml:"sign" mapstructure:"sign"`

	Retry          *resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	RateLimit      *resilience.RateLimiterConfig    `yaml:"rate_limit" mapstructure:"rate_limit"`
	Bulkhead       *resilience.BulkheadConfig       `yaml:"bulkhead" mapstructure:"bulkhead"`

	// Tracing starts a client span per request on the global tracer provider.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics records client instruments on the global meter provider.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	// CheckStatus turns 4xx/5xx responses into errors.
	CheckStatus bool `yaml:"check_status" mapstructure:"check_status"`
	// Coalesce shares concurrent identical GET/HEAD requests.
	Coalesce bool `yaml:"coalesce" mapstructure:"coalesce"`
	// DisableRequestID stops X-Request-ID generation.
	DisableRequestID bool `yaml:"disable_request_id" mapstructure:"disable_request_id"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Transport.ApplyDefaults()
	c.Logging.ApplyDefaults()

	if c.Retry != nil {
		c.Retry.ApplyDefaults()
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
	if c.RateLimit != nil && c.RateLimit.Name == "" {
		c.RateLimit.Name = c.Name
	}
	if c.Bulkhead != nil && c.Bulkhead.Name == "" {
		c.Bulkhead.Name = c.Name
	}
}

// Validate checks struct tags and the nested configs' own rules.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := config.ValidateStruct(c); err != nil {
		return fmt.Errorf("stack %s: %w", c.Name, err)
	}
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("stack %s: %w", c.Name, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("stack %s: %w", c.Name, err)
	}
	if c.Auth != nil {
		if err := validateAuth(c.Auth); err != nil {
			return fmt.Errorf("stack %s: %w", c.Name, err)
		}
	}
	if c.JWT != nil && c.JWT.Secret == "" {
		return fmt.Errorf("stack %s: jwt.secret is required", c.Name)
	}
	if c.Sign != nil && c.Sign.Key == "" {
		return fmt.Errorf("stack %s: sign.key is required", c.Name)
	}
	return nil
}

func validateAuth(a *middleware.AuthConfig) error {
	switch a.Type {
	case middleware.AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("auth.token is required for bearer auth")
		}
	case middleware.AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("auth.username is required for basic auth")
		}
	case middleware.AuthAPIKey:
		if a.Key == "" {
			return fmt.Errorf("auth.key is required for api_key auth")
		}
	case middleware.AuthCustom:
		if a.Apply == nil {
			return fmt.Errorf("auth.apply is required for custom auth")
		}
	}
	return nil
}

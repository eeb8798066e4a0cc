package stack

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/middleware"
	"github.com/kbukum/fetchkit/observability"
	"github.com/kbukum/fetchkit/resilience"
	"github.com/kbukum/fetchkit/transport"
)

// Option customizes stack assembly.
type Option func(*options)

type options struct {
	extra          []fetch.Middleware
	terminal       fetch.Doer
	log            *logger.Logger
	metrics        *observability.Metrics
	tracerProvider trace.TracerProvider
}

// WithMiddleware appends caller middlewares after the built-in layers,
// closest to the terminal.
func WithMiddleware(mws ...fetch.Middleware) Option {
	return func(o *options) { o.extra = append(o.extra, mws...) }
}

// WithTerminal replaces the transport-built terminal executor.
func WithTerminal(d fetch.Doer) Option {
	return func(o *options) { o.terminal = d }
}

// WithLogger replaces the logger built from Config.Logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records into m and enables the metrics layer.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider traces on tp and enables the tracing layer.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// Stack is an assembled client. It is safe for concurrent use.
type Stack struct {
	name string
	do   fetch.Doer
	log  *logger.Logger

	breaker  *resilience.CircuitBreaker
	limiter  *resilience.RateLimiter
	bulkhead *resilience.Bulkhead
}

// New validates cfg and assembles the stack.
func New(cfg Config, opts ...Option) (*Stack, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	terminal := o.terminal
	if terminal == nil {
		d, err := transport.NewDoer(cfg.Transport)
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", cfg.Name, err)
		}
		terminal = d
	}

	log := o.log
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
	}
	log = log.WithComponent("fetch")

	s := &Stack{name: cfg.Name, log: log}
	mws := s.middlewares(cfg, o)

	s.do = fetch.Build(fetch.Options{Middlewares: mws, Do: terminal})

	log.Debug("Client stack assembled", logger.Fields(
		"name", cfg.Name,
		"layers", len(mws),
		"base_url", cfg.BaseURL,
	))
	return s, nil
}

// Load reads Config for serviceName through config.LoadConfig and
// assembles the stack. The service name is used when the file sets none.
func Load(serviceName string, loaderOpts ...config.LoaderOption) (*Stack, error) {
	return LoadWith(serviceName, loaderOpts)
}

// LoadWith is Load with stack options.
func LoadWith(serviceName string, loaderOpts []config.LoaderOption, opts ...Option) (*Stack, error) {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	return New(cfg, opts...)
}

func (s *Stack) middlewares(cfg Config, o options) []fetch.Middleware {
	mws := []fetch.Middleware{middleware.Recover()}

	if cfg.CheckStatus {
		mws = append(mws, middleware.CheckStatus())
	}
	if !cfg.DisableRequestID {
		mws = append(mws, middleware.RequestID())
	}
	if cfg.BaseURL != "" {
		mws = append(mws, middleware.BaseURL(cfg.BaseURL))
	}
	if cfg.Tracing || o.tracerProvider != nil {
		mws = append(mws, middleware.TracingWith(o.tracerProvider, cfg.Name))
	}
	mws = append(mws, middleware.Logging(s.log))
	if cfg.Metrics || o.metrics != nil {
		mws = append(mws, middleware.Metrics(o.metrics))
	}
	if cfg.Coalesce {
		mws = append(mws, middleware.Coalesce())
	}

	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		notify := cbCfg.OnStateChange
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			s.log.Warn("Circuit breaker state changed", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
			if notify != nil {
				notify(name, from, to)
			}
		}
		s.breaker = resilience.NewCircuitBreaker(cbCfg)
		mws = append(mws, middleware.CircuitBreaker(s.breaker))
	}
	if cfg.Retry != nil {
		retryCfg := *cfg.Retry
		notify := retryCfg.OnRetry
		retryCfg.OnRetry = func(attempt int, err error) {
			s.log.Debug("Retrying request", logger.MergeWithError(logger.Fields(logger.FieldAttempt, attempt), err))
			if notify != nil {
				notify(attempt, err)
			}
		}
		mws = append(mws, middleware.Retry(retryCfg))
	}
	if cfg.RateLimit != nil {
		s.limiter = resilience.NewRateLimiter(*cfg.RateLimit)
		mws = append(mws, middleware.RateLimit(s.limiter))
	}
	if cfg.Bulkhead != nil {
		s.bulkhead = resilience.NewBulkhead(*cfg.Bulkhead)
		mws = append(mws, middleware.Bulkhead(s.bulkhead))
	}
	if cfg.Timeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.Timeout))
	}

	if len(cfg.Headers) > 0 {
		mws = append(mws, middleware.Headers(cfg.Headers))
	}
	if cfg.UserAgent != "" {
		mws = append(mws, middleware.UserAgent(cfg.UserAgent))
	}
	if cfg.Auth != nil {
		mws = append(mws, middleware.Auth(cfg.Auth))
	}
	if cfg.JWT != nil {
		mws = append(mws, middleware.JWT(*cfg.JWT))
	}
	if cfg.Sign != nil {
		mws = append(mws, middleware.Sign(*cfg.Sign))
	}

	return append(mws, o.extra...)
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Do sends req through the stack.
func (s *Stack) Do(req *http.Request) (*http.Response, error) {
	return s.do(req)
}

// Doer returns the composed executor.
func (s *Stack) Doer() fetch.Doer { return s.do }

// Client returns an *http.Client whose transport runs the stack, for code
// that only accepts a client. Redirects are followed by the terminal, so
// the returned client never sees them.
func (s *Stack) Client() *http.Client {
	return &http.Client{Transport: fetch.RoundTripperFunc(s.do)}
}

// Health reports the stack state as seen by its resilience layers.
func (s *Stack) Health() observability.Health {
	h := observability.Health{Name: s.name, Status: observability.HealthStatusUp}

	if s.breaker != nil {
		switch st := s.breaker.State(); st {
		case resilience.StateOpen:
			h.Degrade(observability.HealthStatusDown, "circuit_breaker", st.String())
			h.Message = "circuit breaker open"
		case resilience.StateHalfOpen:
			h.Degrade(observability.HealthStatusDegraded, "circuit_breaker", st.String())
		}
	}
	if s.bulkhead != nil && s.bulkhead.Available() == 0 {
		h.Degrade(observability.HealthStatusDegraded, "bulkhead", "saturated")
	}
	if s.limiter != nil && s.limiter.Tokens() < 1 {
		h.Degrade(observability.HealthStatusDegraded, "rate_limit", "exhausted")
	}
	return h
}

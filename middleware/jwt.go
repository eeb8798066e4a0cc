package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/fetchkit/fetch"
)

// JWTConfig configures per-request token minting for service-to-service
// calls.
type JWTConfig struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is the "iss" claim (optional).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Subject is the "sub" claim (optional).
	Subject string `yaml:"subject" mapstructure:"subject"`
	// Audience is the "aud" claim (optional).
	Audience []string `yaml:"audience" mapstructure:"audience"`
	// TTL is the token lifetime (default: 1m).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// Claims are extra claims copied into every token.
	Claims map[string]any `yaml:"claims" mapstructure:"claims"`
}

func (c *JWTConfig) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
}

var errJWTSecret = errors.New("jwt: secret is required")

// JWT mints a fresh HS256 bearer token for every request.
func JWT(cfg JWTConfig) fetch.Middleware {
	cfg.applyDefaults()
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			token, err := cfg.mint(time.Now())
			if err != nil {
				return nil, err
			}
			out := req.Clone(req.Context())
			out.Header.Set("Authorization", "Bearer "+token)
			return next(out)
		}
	}
}

func (c *JWTConfig) mint(now time.Time) (string, error) {
	if c.Secret == "" {
		return "", errJWTSecret
	}

	claims := make(gojwt.MapClaims, len(c.Claims)+6)
	for k, v := range c.Claims {
		claims[k] = v
	}
	claims["iat"] = gojwt.NewNumericDate(now)
	claims["exp"] = gojwt.NewNumericDate(now.Add(c.TTL))
	claims["jti"] = uuid.NewString()
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if len(c.Audience) > 0 {
		claims["aud"] = gojwt.ClaimStrings(c.Audience)
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(c.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: signing token: %w", err)
	}
	return signed, nil
}

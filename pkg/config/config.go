// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains service configuration parameters.
type Config struct {
	Stage    string   `env:"STAGE" envDefault:"dev"`
	Server   Server   `envPrefix:"SERVER_"`
	AWS      AWS      `envPrefix:"AWS_"`
	Cognito  Cognito  `envPrefix:"COGNITO_"`
	DynamoDB DynamoDB `envPrefix:"DYNAMODB_"`
	Mail     Mail     `envPrefix:"MAIL_"`
	Auth     Auth     `envPrefix:"AUTH_"`
}

// Server contains HTTP listener parameters.
type Server struct {
	ListenAddress string `env:"LISTEN_ADDRESS" envDefault:":4000"`
	Manifest      string `env:"MANIFEST" envDefault:"manifest.toml"`
	TLSCert       string `env:"TLS_CERTIFICATE"`
	TLSKey        string `env:"TLS_KEY"`
}

// AWS contains shared SDK parameters.
type AWS struct {
	Region          string `env:"DEFAULT_REGION" envDefault:"ap-northeast-1"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

// Cognito identifies the user pool and its app client.
type Cognito struct {
	UserPoolID       string `env:"USER_POOL_ID"`
	UserPoolClientID string `env:"USER_POOL_CLIENT_ID"`
}

// DynamoDB contains table names; Endpoint is set for DynamoDB Local.
type DynamoDB struct {
	Endpoint     string `env:"ENDPOINT"`
	BookingTable string `env:"BOOKING_TABLE"`
	UserTable    string `env:"USER_TABLE"`
}

// Mail contains outbound mail parameters.
type Mail struct {
	From     string `env:"FROM"`
	CC       string `env:"CC"`
	ImageDir string `env:"IMAGE_DIR" envDefault:"static"`
}

// Auth contains token verification parameters.
type Auth struct {
	JWKSCacheTTL time.Duration `env:"JWKS_CACHE_TTL" envDefault:"10m"`
	Leeway       time.Duration `env:"LEEWAY" envDefault:"60s"`
	VerifyIssuer bool          `env:"VERIFY_ISSUER" envDefault:"true"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDerived() {
	c.Stage = strings.ToLower(strings.TrimSpace(c.Stage))
	if c.DynamoDB.BookingTable == "" {
		c.DynamoDB.BookingTable = fmt.Sprintf("terakoya-%s-booking", c.Stage)
	}
	if c.DynamoDB.UserTable == "" {
		c.DynamoDB.UserTable = fmt.Sprintf("terakoya-%s-user", c.Stage)
	}
}

// Validate rejects a config that cannot reach the identity provider.
func (c *Config) Validate() error {
	var errs []error
	if c.Cognito.UserPoolID == "" {
		errs = append(errs, errors.New("COGNITO_USER_POOL_ID is required"))
	}
	if c.Cognito.UserPoolClientID == "" {
		errs = append(errs, errors.New("COGNITO_USER_POOL_CLIENT_ID is required"))
	}
	if c.AWS.Region == "" {
		errs = append(errs, errors.New("AWS_DEFAULT_REGION is required"))
	}
	if c.Auth.JWKSCacheTTL < 0 {
		errs = append(errs, errors.New("AUTH_JWKS_CACHE_TTL must be >= 0"))
	}
	return errors.Join(errs...)
}

// IsProd reports whether the service runs in the production stage.
func (c *Config) IsProd() bool { return c.Stage == "prod" }

// Issuer is the token issuer URL of the configured user pool.
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.AWS.Region, c.Cognito.UserPoolID)
}

// JWKSURL is the well-known key-set document of the configured user pool.
func (c *Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

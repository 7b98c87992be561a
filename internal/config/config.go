// Package config loads apijr settings from the environment, an optional .env
// file and an optional YAML endpoint file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/JonaRivera-RB/APIJR-NETWORK/client"
)

// Prefix is the environment variable prefix, e.g. APIJR_HOST.
const Prefix = "APIJR"

// Config holds the endpoint and runtime settings.
// Environment variables are parsed from the APIJR_ prefix.
type Config struct {
	Scheme      string `envconfig:"SCHEME" default:"https"`
	Host        string `envconfig:"HOST"`
	Environment string `envconfig:"ENVIRONMENT"`

	// Headers are "Name:value" pairs separated by commas.
	Headers map[string]string `envconfig:"HEADERS"`

	Debug    bool          `envconfig:"DEBUG" default:"false"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Attempts int           `envconfig:"ATTEMPTS" default:"1"`
}

// Load reads dotenv files (default ".env"; a missing file is not an error),
// then processes APIJR_* variables. Variables already set in the process
// environment win over dotenv values.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load dotenv: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be >= 1, got %d", c.Attempts)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", c.Timeout)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Apply overlays the non-empty fields of f onto c. File headers are merged
// over environment headers.
func (c *Config) Apply(f *EndpointFile) {
	if f == nil {
		return
	}
	if f.Scheme != "" {
		c.Scheme = f.Scheme
	}
	if f.Host != "" {
		c.Host = f.Host
	}
	if f.Environment != "" {
		c.Environment = f.Environment
	}
	if len(f.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(f.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range f.Headers {
			merged[k] = v
		}
		c.Headers = merged
	}
}

// Endpoint returns the configured endpoint. It fails when the endpoint
// cannot produce a URL.
func (c *Config) Endpoint() (client.Endpoint, error) {
	ep := client.NewEndpoint(c.Scheme, c.Host, c.Environment, c.Headers)
	if err := ep.Validate(); err != nil {
		return client.Endpoint{}, fmt.Errorf("endpoint %q: %w", ep.String(), err)
	}
	return ep, nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseLogLevel accepts debug, info, warn and error in any case. An empty
// string means info.
func ParseLogLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Package config resolves the studio's settings from defaults, environment
// variables and command-line overrides, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL         = "STUDIO_API_URL"
	EnvRequestTimeout = "STUDIO_REQUEST_TIMEOUT"
	EnvAssetTimeout   = "STUDIO_ASSET_TIMEOUT"
	EnvMetrics        = "STUDIO_METRICS"
)

const (
	DefaultAPIURL         = "http://localhost:8000"
	DefaultRequestTimeout = "90s"
	DefaultAssetTimeout   = "60s"
)

// Config holds the backend endpoint and timing parameters.
type Config struct {
	APIURL         string
	RequestTimeout string
	AssetTimeout   string
	Metrics        bool
}

// DotEnvFile is the optional environment file read by LoadDotEnv.
const DotEnvFile = ".env"

// LoadDotEnv sets variables from the given env files without overriding
// ones already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds a Config from defaults and the environment, then applies
// overlay (typically parsed flags) and validates the result.
func Load(overlay *Config) (*Config, error) {
	c := &Config{}
	c.loadDefaults()
	c.loadEnv()
	if overlay != nil {
		c.Merge(overlay)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIURL != "" {
		c.APIURL = overlay.APIURL
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.AssetTimeout != "" {
		c.AssetTimeout = overlay.AssetTimeout
	}
	if overlay.Metrics {
		c.Metrics = true
	}
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// AssetTimeoutDuration returns AssetTimeout as a time.Duration.
func (c *Config) AssetTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AssetTimeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.AssetTimeout == "" {
		c.AssetTimeout = DefaultAssetTimeout
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv(EnvAssetTimeout); v != "" {
		c.AssetTimeout = v
	}
	if v := os.Getenv(EnvMetrics); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Metrics = on
		}
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q: must be an absolute http(s) URL", c.APIURL)
	}
	for name, v := range map[string]string{
		"request_timeout": c.RequestTimeout,
		"asset_timeout":   c.AssetTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", name)
		}
	}
	return nil
}

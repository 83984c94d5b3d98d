// Package config loads ghfolio settings from the environment.
//
// Variables are read with caarlos0/env after an optional .env file has been
// loaded with godotenv; variables already set in the process environment win
// over the file. The GitHub token and default username accept the names used
// by common frontend toolchains so that one .env serves both the site and the
// server:
//
//	GITHUB_TOKEN, VITE_GITHUB_TOKEN
//	GITHUB_USERNAME, VITE_GITHUB_USERNAME, NEXT_PUBLIC_GITHUB_USERNAME
//
// Everything else is prefixed with GHFOLIO_.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/manifest"
)

// DefaultEnvFile is loaded by [Load] when present.
const DefaultEnvFile = ".env"

// Config holds every environment-driven setting.
type Config struct {
	GitHubToken        string `env:"GITHUB_TOKEN"`
	ViteGitHubToken    string `env:"VITE_GITHUB_TOKEN"`
	GitHubUsername     string `env:"GITHUB_USERNAME"`
	ViteGitHubUsername string `env:"VITE_GITHUB_USERNAME"`
	NextGitHubUsername string `env:"NEXT_PUBLIC_GITHUB_USERNAME"`

	GitHubAPIURL string        `env:"GHFOLIO_GITHUB_API_URL" envDefault:"https://api.github.com"`
	HTTPCacheTTL time.Duration `env:"GHFOLIO_HTTP_CACHE_TTL" envDefault:"10m"`

	Addr      string `env:"GHFOLIO_ADDR"       envDefault:":8080"`
	StaticDir string `env:"GHFOLIO_STATIC_DIR"`

	Manifests    []string      `env:"GHFOLIO_MANIFESTS"     envSeparator:"," envDefault:"package.json"`
	MaxManifests int           `env:"GHFOLIO_MAX_MANIFESTS" envDefault:"25"`
	MaxProjects  int           `env:"GHFOLIO_MAX_PROJECTS"  envDefault:"20"`
	Concurrency  int           `env:"GHFOLIO_CONCURRENCY"   envDefault:"4"`
	CacheTTL     time.Duration `env:"GHFOLIO_CACHE_TTL"     envDefault:"30m"`

	CacheDir string `env:"GHFOLIO_CACHE_DIR"`
	NoCache  bool   `env:"GHFOLIO_NO_CACHE"`
	RedisURL string `env:"GHFOLIO_REDIS_URL"`

	MongoURI      string `env:"GHFOLIO_MONGO_URI"`
	MongoDatabase string `env:"GHFOLIO_MONGO_DB" envDefault:"ghfolio"`

	OTelEndpoint string `env:"GHFOLIO_OTEL_ENDPOINT"`

	DefaultDescription string `env:"GHFOLIO_DEFAULT_DESCRIPTION"`
	DateLayout         string `env:"GHFOLIO_DATE_LAYOUT" envDefault:"02/01/2006"`
}

// Load reads envFile (if it exists) into the process environment and parses
// the configuration. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", envFile)
		}
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and manifest types.
func (c *Config) Validate() error {
	if c.MaxManifests <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "GHFOLIO_MAX_MANIFESTS must be positive, got %d", c.MaxManifests)
	}
	if c.MaxProjects <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "GHFOLIO_MAX_PROJECTS must be positive, got %d", c.MaxProjects)
	}
	if c.Concurrency <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "GHFOLIO_CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	if c.CacheTTL < 0 || c.HTTPCacheTTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache TTLs must not be negative")
	}
	if err := errs.ValidateURL(c.GitHubAPIURL); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "GHFOLIO_GITHUB_API_URL")
	}
	if _, err := c.Parsers(); err != nil {
		return err
	}
	if u := c.Username(); u != "" {
		if err := errs.ValidateUsername(u); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "default username")
		}
	}
	return nil
}

// Token returns the GitHub token, preferring GITHUB_TOKEN.
func (c *Config) Token() string {
	return firstNonEmpty(c.GitHubToken, c.ViteGitHubToken)
}

// Username returns the default GitHub username used when a request names
// none.
func (c *Config) Username() string {
	return firstNonEmpty(c.GitHubUsername, c.ViteGitHubUsername, c.NextGitHubUsername)
}

// Parsers returns the manifest parsers selected by GHFOLIO_MANIFESTS.
func (c *Config) Parsers() ([]manifest.Parser, error) {
	types := make([]string, 0, len(c.Manifests))
	for _, t := range c.Manifests {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return manifest.Default(), nil
	}
	parsers, err := manifest.ByType(types)
	if err != nil {
		return nil, fmt.Errorf("GHFOLIO_MANIFESTS: %w", err)
	}
	return parsers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Source backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Sources  SourcesConfig
	Database DatabaseConfig
	Buckets  BucketsConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// SourcesConfig locates the five reference sources.
//
// With the file backend each pattern is a doublestar glob relative to Dir
// that must match exactly one file. With the postgres backend the table
// names in DatabaseConfig are used instead.
type SourcesConfig struct {
	// Backend is where sources are read from: file or postgres (default: file)
	Backend string `env:"SOURCE_BACKEND" default:"file"`

	// Dir is the directory holding source files (default: data)
	Dir string `env:"SOURCE_DIR" default:"data"`

	Countries       string `env:"SOURCE_COUNTRIES" default:"Countries.{xlsx,csv}"`
	CountriesES     string `env:"SOURCE_PAISES" default:"Paises.{xlsx,csv}"`
	Population      string `env:"SOURCE_POPULATION" default:"Population.{xlsx,csv}"`
	InfantMortality string `env:"SOURCE_INFANT_MORTALITY" default:"Infant_death_rate.{xlsx,csv}"`
	LifeExpectancy  string `env:"SOURCE_LIFE_EXPECTANCY" default:"Life_expectancy.{xlsx,csv}"`

	// Sheet is the worksheet read from every workbook (default: first sheet)
	Sheet string `env:"SOURCE_SHEET"`

	// CSVDelimiter is the field separator of CSV sources (default: ,)
	CSVDelimiter string `env:"SOURCE_CSV_DELIMITER" default:","`

	// LoadTimeout bounds the initial dataset build (default: 1m)
	LoadTimeout time.Duration `env:"SOURCE_LOAD_TIMEOUT" default:"1m"`
}

// DatabaseConfig holds settings for the postgres source backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required for the postgres backend)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 5m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"5m"`

	// Table names, optionally schema-qualified ("stats.population")
	CountriesTable       string `env:"DB_TABLE_COUNTRIES" default:"countries"`
	CountriesESTable     string `env:"DB_TABLE_PAISES" default:"paises"`
	PopulationTable      string `env:"DB_TABLE_POPULATION" default:"population"`
	InfantMortalityTable string `env:"DB_TABLE_INFANT_MORTALITY" default:"infant_mortality"`
	LifeExpectancyTable  string `env:"DB_TABLE_LIFE_EXPECTANCY" default:"life_expectancy"`
}

// BucketsConfig holds filter catalog settings.
type BucketsConfig struct {
	// File replaces the embedded bucket catalog when set
	File string `env:"BUCKETS_FILE"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ExportConcurrent is the maximum number of CSV exports in flight (default: 4)
	ExportConcurrent int `env:"RATE_LIMIT_EXPORT_CONCURRENT" default:"4"`

	// ExportMaxWait is how long an export waits for a slot (default: 5s)
	ExportMaxWait time.Duration `env:"RATE_LIMIT_EXPORT_MAX_WAIT" default:"5s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`

	// Token, when set, must be presented as a bearer token to read metrics
	Token string `env:"METRICS_TOKEN"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Source validation
	switch strings.ToLower(c.Sources.Backend) {
	case BackendFile:
		if c.Sources.Dir == "" {
			errs = append(errs, "SOURCE_DIR is required for the file backend")
		}
		patterns := []struct{ env, value string }{
			{"SOURCE_COUNTRIES", c.Sources.Countries},
			{"SOURCE_PAISES", c.Sources.CountriesES},
			{"SOURCE_POPULATION", c.Sources.Population},
			{"SOURCE_INFANT_MORTALITY", c.Sources.InfantMortality},
			{"SOURCE_LIFE_EXPECTANCY", c.Sources.LifeExpectancy},
		}
		for _, p := range patterns {
			if p.value == "" {
				errs = append(errs, p.env+" must not be empty")
			}
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_BACKEND (%q) must be one of: file, postgres", c.Sources.Backend))
	}
	if len([]rune(c.Sources.CSVDelimiter)) != 1 {
		errs = append(errs, fmt.Sprintf("SOURCE_CSV_DELIMITER (%q) must be a single character", c.Sources.CSVDelimiter))
	}
	if c.Sources.LoadTimeout <= 0 {
		errs = append(errs, "SOURCE_LOAD_TIMEOUT must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.ExportConcurrent <= 0 {
		errs = append(errs, "RATE_LIMIT_EXPORT_CONCURRENT must be positive")
	}

	// Security validation
	for _, entry := range c.Security.TrustedProxies {
		if _, err := netip.ParsePrefix(entry); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(entry); err != nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is neither a CIDR nor an IP", entry))
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Sprintf("METRICS_PATH (%q) must start with /", c.Metrics.Path))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and tokens are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Sources: {Backend: %q, Dir: %q}, ", c.Sources.Backend, c.Sources.Dir))
	if c.Database.URL != "" {
		b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d}, ", c.Database.MaxConns))
	}
	b.WriteString(fmt.Sprintf("Buckets: {File: %q}, ", c.Buckets.File))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	token := ""
	if c.Metrics.Token != "" {
		token = "[MASKED]"
	}
	b.WriteString(fmt.Sprintf("Metrics: {Enabled: %v, Path: %q, Token: %q}",
		c.Metrics.Enabled, c.Metrics.Path, token))
	b.WriteString("}")
	return b.String()
}

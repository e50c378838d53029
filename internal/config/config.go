// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Probe methods accepted in PROBE_METHOD.
const (
	ProbeHead = "head"
	ProbeGet  = "get"
)

// HTTPConfig controls how remote descriptors and catalogs are probed and fetched.
type HTTPConfig struct {
	Timeout     time.Duration // per-request timeout; zero means none
	ProbeMethod string        // "head" (default) or "get"
	RateLimit   float64       // requests per second across all probes and fetches; zero disables
	RateBurst   int           // burst capacity when RateLimit is set (default 1)
	UserAgent   string
}

// Config holds the resolver configuration. Object-store fields are optional:
// nil when not configured, in which case public access is attempted.
type Config struct {
	// S3
	S3KeyID    *string
	S3Secret   *string
	S3Endpoint *string
	S3Region   *string

	// GCS
	GCSKeyFile *string

	// Azure
	AzureAccountName *string
	AzureAccountKey  *string

	HTTP HTTPConfig

	LogLevel string // log level: debug, info, warn, error (default "info")
	Env      string // environment: "development" (default) or "production"

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name to an slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if static S3 credentials are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil
}

// HasAzureKey returns true if an Azure shared key is configured.
func (c *Config) HasAzureKey() bool {
	return c.AzureAccountName != nil && c.AzureAccountKey != nil
}

// LoadFromEnv loads configuration from environment variables.
// Every variable is optional.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: os.Getenv("LOG_LEVEL"),
		Env:      os.Getenv("ENV"),
		HTTP: HTTPConfig{
			ProbeMethod: strings.ToLower(strings.TrimSpace(os.Getenv("PROBE_METHOD"))),
			UserAgent:   os.Getenv("USER_AGENT"),
		},
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.Timeout = d
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_RATE_LIMIT %q: %w", v, err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateBurst = n
		}
	}

	// Object-store fields are optional, only set if present
	cfg.S3KeyID = optionalEnv("KEY_ID")
	cfg.S3Secret = optionalEnv("SECRET")
	cfg.S3Endpoint = optionalEnv("ENDPOINT")
	cfg.S3Region = optionalEnv("REGION")
	cfg.GCSKeyFile = optionalEnv("GCS_KEY_FILE")
	cfg.AzureAccountName = optionalEnv("AZURE_ACCOUNT_NAME")
	cfg.AzureAccountKey = optionalEnv("AZURE_ACCOUNT_KEY")

	// Defaults
	switch cfg.HTTP.ProbeMethod {
	case "":
		cfg.HTTP.ProbeMethod = ProbeHead
	case ProbeHead, ProbeGet:
	default:
		return nil, fmt.Errorf("unsupported PROBE_METHOD %q: use %q or %q", cfg.HTTP.ProbeMethod, ProbeHead, ProbeGet)
	}
	if cfg.HTTP.RateLimit < 0 {
		return nil, fmt.Errorf("HTTP_RATE_LIMIT must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst <= 0 {
		cfg.HTTP.RateBurst = 1
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "esmcat/1.0"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		cfg.Warnings = append(cfg.Warnings, "KEY_ID and SECRET must be set together; falling back to anonymous S3 access")
		cfg.S3KeyID, cfg.S3Secret = nil, nil
	}
	if cfg.AzureAccountKey != nil && cfg.AzureAccountName == nil {
		cfg.Warnings = append(cfg.Warnings, "AZURE_ACCOUNT_KEY is set without AZURE_ACCOUNT_NAME; ignoring it")
		cfg.AzureAccountKey = nil
	}

	// Production mode: probes without a timeout can hang forever.
	if cfg.IsProduction() && cfg.HTTP.Timeout == 0 {
		cfg.Warnings = append(cfg.Warnings, "HTTP_TIMEOUT not set: a hanging remote host blocks resolution indefinitely")
	}

	return cfg, nil
}

func optionalEnv(key string) *string {
	if v := os.Getenv(key); v != "" {
		return &v
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

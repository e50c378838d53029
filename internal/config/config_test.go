package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "ENV", "HTTP_TIMEOUT", "PROBE_METHOD", "HTTP_RATE_LIMIT", "HTTP_RATE_BURST",
		"USER_AGENT", "KEY_ID", "SECRET", "ENDPOINT", "REGION", "GCS_KEY_FILE",
		"AZURE_ACCOUNT_NAME", "AZURE_ACCOUNT_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Nil(t, cfg.S3KeyID)
	assert.Nil(t, cfg.GCSKeyFile)
	assert.Nil(t, cfg.AzureAccountName)
	assert.False(t, cfg.HasS3Config())
	assert.False(t, cfg.HasAzureKey())
	assert.Equal(t, ProbeHead, cfg.HTTP.ProbeMethod)
	assert.Zero(t, cfg.HTTP.Timeout, "no timeout unless configured")
	assert.Zero(t, cfg.HTTP.RateLimit)
	assert.Equal(t, "esmcat/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("PROBE_METHOD", "GET")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")
	t.Setenv("HTTP_RATE_BURST", "4")
	t.Setenv("USER_AGENT", "tests/0")
	t.Setenv("KEY_ID", "testkey")
	t.Setenv("SECRET", "testsecret")
	t.Setenv("ENDPOINT", "s3.example.com")
	t.Setenv("REGION", "eu-central")
	t.Setenv("GCS_KEY_FILE", "/etc/gcs.json")
	t.Setenv("AZURE_ACCOUNT_NAME", "acct")
	t.Setenv("AZURE_ACCOUNT_KEY", "a2V5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, ProbeGet, cfg.HTTP.ProbeMethod)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimit, 1e-9)
	assert.Equal(t, 4, cfg.HTTP.RateBurst)
	assert.Equal(t, "tests/0", cfg.HTTP.UserAgent)
	assert.True(t, cfg.HasS3Config())
	require.NotNil(t, cfg.S3Endpoint)
	assert.Equal(t, "s3.example.com", *cfg.S3Endpoint)
	require.NotNil(t, cfg.GCSKeyFile)
	assert.Equal(t, "/etc/gcs.json", *cfg.GCSKeyFile)
	assert.True(t, cfg.HasAzureKey())
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "timeout", key: "HTTP_TIMEOUT", value: "soon", wantErr: "invalid HTTP_TIMEOUT"},
		{name: "rate_limit", key: "HTTP_RATE_LIMIT", value: "fast", wantErr: "invalid HTTP_RATE_LIMIT"},
		{name: "negative_rate_limit", key: "HTTP_RATE_LIMIT", value: "-1", wantErr: "must not be negative"},
		{name: "probe_method", key: "PROBE_METHOD", value: "options", wantErr: "unsupported PROBE_METHOD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv_RateBurstDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_RATE_LIMIT", "10")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.HTTP.RateBurst)
}

func TestLoadFromEnv_PartialCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("KEY_ID", "testkey")
	t.Setenv("AZURE_ACCOUNT_KEY", "a2V5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.HasS3Config(), "partial S3 credentials fall back to anonymous")
	assert.Nil(t, cfg.S3KeyID)
	assert.Nil(t, cfg.AzureAccountKey)
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadFromEnv_ProductionWithoutTimeoutWarns(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "HTTP_TIMEOUT")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	require.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	t.Setenv("ESMCAT_TEST_KEY", "")
	t.Setenv("ESMCAT_TEST_QUOTED", "")
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nESMCAT_TEST_KEY=test_value\nESMCAT_TEST_QUOTED=\"quoted value\"\nnot-a-pair\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "test_value", os.Getenv("ESMCAT_TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("ESMCAT_TEST_QUOTED"))
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("ESMCAT_TEST_PRECEDENCE", "from_env")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ESMCAT_TEST_PRECEDENCE=from_file\n"), 0o644))

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from_env", os.Getenv("ESMCAT_TEST_PRECEDENCE"))
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductDesk/internal/config"
)

func newViper(kv map[string]any) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range kv {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(newViper(map[string]any{
		config.KeyAPIBaseURL: "http://localhost:5000",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Metrics.Token)
	assert.Equal(t, 5.0, cfg.Limits.WriteRatePerSec)
	assert.Equal(t, 10, cfg.Limits.WriteBurst)
	assert.Equal(t, 30*time.Minute, cfg.Limits.SessionTTL)
	assert.Empty(t, cfg.SessionKey)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(newViper(map[string]any{
		config.KeyAPIBaseURL:     "https://api.example.com/",
		config.KeyAPITimeout:     "3s",
		config.KeyMetricsEnabled: "false",
		config.KeyWriteRate:      "0",
		config.KeySessionKey:     "0123456789abcdef0123456789abcdef",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.SessionKey)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Zero(t, cfg.Limits.WriteRatePerSec)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]any{
		"missing base url":  {},
		"no scheme":         {config.KeyAPIBaseURL: "localhost:5000"},
		"bad scheme":        {config.KeyAPIBaseURL: "ftp://example.com"},
		"negative timeout":  {config.KeyAPIBaseURL: "http://x.test", config.KeyAPITimeout: "-1s"},
		"zero burst":        {config.KeyAPIBaseURL: "http://x.test", config.KeyWriteBurst: 0},
		"short session key": {config.KeyAPIBaseURL: "http://x.test", config.KeySessionKey: "too-short"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(newViper(kv))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(newViper(nil))
	assert.ErrorIs(t, err, config.ErrMissingBaseURL)
}

func TestSetup_ReadsEnvFileWithoutOverridingEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=http://from-file:5000\nHTTP_ADDR=:7000\n"), 0o600))

	// Register cleanup, then clear so the file can supply the value.
	t.Setenv(config.KeyAPIBaseURL, "")
	require.NoError(t, os.Unsetenv(config.KeyAPIBaseURL))
	t.Setenv(config.KeyHTTPAddr, ":9000")

	v := viper.New()
	config.Setup(v, envFile)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:5000", cfg.API.BaseURL)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
}

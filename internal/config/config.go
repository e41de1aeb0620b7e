package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyAPIBaseURL     = "API_BASE_URL"
	KeyHTTPAddr       = "HTTP_ADDR"
	KeyLogLevel       = "LOG_LEVEL"
	KeyAPITimeout     = "API_TIMEOUT"
	KeyMetricsEnabled = "METRICS_ENABLED"
	KeyMetricsToken   = "METRICS_TOKEN"
	KeyWriteRate      = "WRITE_RATE_PER_SEC"
	KeyWriteBurst     = "WRITE_BURST"
	KeySessionTTL     = "SESSION_TTL"
	KeySessionKey     = "SESSION_KEY"
)

// MinSessionKeyLen is the shortest accepted session signing key.
const MinSessionKeyLen = 32

var ErrMissingBaseURL = errors.New(KeyAPIBaseURL + " is required")

type Config struct {
	HTTPAddr string
	LogLevel string
	// SessionKey signs the session cookie. Empty means a random key per run.
	SessionKey string
	API        APIConfig
	Metrics    MetricsConfig
	Limits     LimitsConfig
}

type APIConfig struct {
	BaseURL string
	// Timeout bounds every remote call. Zero means no client timeout.
	Timeout time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Token   string
}

type LimitsConfig struct {
	WriteRatePerSec float64
	WriteBurst      int
	SessionTTL      time.Duration
}

// Setup loads .env files when present and points v at the environment.
// Values already set in the environment win over .env entries.
func Setup(v *viper.Viper, envFiles ...string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v.AutomaticEnv()
	SetDefaults(v)
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAPITimeout, "0s")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyWriteRate, 5)
	v.SetDefault(KeyWriteBurst, 10)
	v.SetDefault(KeySessionTTL, "30m")
}

// Load reads the configuration out of v and checks it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:   v.GetString(KeyHTTPAddr),
		LogLevel:   v.GetString(KeyLogLevel),
		SessionKey: v.GetString(KeySessionKey),
		API: APIConfig{
			BaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
			Timeout: v.GetDuration(KeyAPITimeout),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool(KeyMetricsEnabled),
			Token:   v.GetString(KeyMetricsToken),
		},
		Limits: LimitsConfig{
			WriteRatePerSec: v.GetFloat64(KeyWriteRate),
			WriteBurst:      v.GetInt(KeyWriteBurst),
			SessionTTL:      v.GetDuration(KeySessionTTL),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q: want http(s)://host", KeyAPIBaseURL, c.API.BaseURL)
	}
	if c.SessionKey != "" && len(c.SessionKey) < MinSessionKeyLen {
		return fmt.Errorf("%s must be at least %d bytes", KeySessionKey, MinSessionKeyLen)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyAPITimeout)
	}
	if c.Limits.WriteRatePerSec < 0 || c.Limits.WriteBurst < 0 {
		return fmt.Errorf("%s and %s must not be negative", KeyWriteRate, KeyWriteBurst)
	}
	if c.Limits.WriteRatePerSec > 0 && c.Limits.WriteBurst == 0 {
		return fmt.Errorf("%s must be at least 1 when %s is set", KeyWriteBurst, KeyWriteRate)
	}
	return nil
}

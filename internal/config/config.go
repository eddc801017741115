package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName      string `mapstructure:"app_name"`
	Env          string `mapstructure:"app_env"`
	LogLevel     string `mapstructure:"log_level"`
	BaseEndpoint string `mapstructure:"base_endpoint"`

	HTTPTimeoutSeconds     int64         `mapstructure:"http_timeout_seconds"`
	HTTPRateLimitPerSecond float64       `mapstructure:"http_rate_limit_per_second"`
	HTTPTimeout            time.Duration `mapstructure:"-"`

	OAuth2TokenURL     string   `mapstructure:"oauth2_token_url"`
	OAuth2ClientID     string   `mapstructure:"oauth2_client_id"`
	OAuth2ClientSecret string   `mapstructure:"oauth2_client_secret"`
	OAuth2Scopes       []string `mapstructure:"oauth2_scopes"`

	ConnectivityURL       string        `mapstructure:"connectivity_url"`
	ConnectivityTimeoutMs int64         `mapstructure:"connectivity_timeout_ms"`
	ConnectivityCacheMs   int64         `mapstructure:"connectivity_cache_ms"`
	ConnectivityTimeout   time.Duration `mapstructure:"-"`
	ConnectivityCache     time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-connection")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_endpoint", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("http_rate_limit_per_second", 0)
	v.SetDefault("oauth2_token_url", "")
	v.SetDefault("oauth2_client_id", "")
	v.SetDefault("oauth2_client_secret", "")
	v.SetDefault("oauth2_scopes", []string{})
	v.SetDefault("connectivity_url", "")
	v.SetDefault("connectivity_timeout_ms", 2000)
	v.SetDefault("connectivity_cache_ms", 5000)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/offline.db")
	v.SetDefault("sqlite_path", "./data/offline.sqlite")
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.HTTPRateLimitPerSecond < 0 {
		return fmt.Errorf("invalid http_rate_limit_per_second (must not be negative)")
	}

	if c.ConnectivityTimeoutMs <= 0 {
		return fmt.Errorf("invalid connectivity_timeout_ms (must be positive milliseconds)")
	}
	if c.ConnectivityCacheMs < 0 {
		return fmt.Errorf("invalid connectivity_cache_ms (must not be negative)")
	}
	c.ConnectivityTimeout = time.Duration(c.ConnectivityTimeoutMs) * time.Millisecond
	c.ConnectivityCache = time.Duration(c.ConnectivityCacheMs) * time.Millisecond

	c.BaseEndpoint = strings.TrimSpace(c.BaseEndpoint)
	c.ConnectivityURL = strings.TrimSpace(c.ConnectivityURL)
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))

	if c.OAuth2TokenURL != "" && c.OAuth2ClientID == "" {
		return fmt.Errorf("oauth2_client_id is required when oauth2_token_url is set")
	}
	return nil
}

// OAuth2Enabled reports whether client-credentials auth should wrap the transport.
func (c *Config) OAuth2Enabled() bool {
	return c != nil && strings.TrimSpace(c.OAuth2TokenURL) != ""
}

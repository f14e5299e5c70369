package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBURL      string `mapstructure:"db_url"`
	ListenAddr string `mapstructure:"listen_addr"`
	AWSRegion  string `mapstructure:"aws_region"`
	LogLevel   string `mapstructure:"log_level"`

	MetadataAPIURL string        `mapstructure:"metadata_api_url"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`

	// AuthMode selects the single authorization strategy: "bearer" or "webhook".
	AuthMode         string `mapstructure:"auth_mode"`
	PermissionAPIURL string `mapstructure:"permission_api_url"`
	WebhookAPIURL    string `mapstructure:"webhook_api_url"`
	KeycloakServer   string `mapstructure:"keycloak_server"`
	KeycloakRealm    string `mapstructure:"keycloak_realm"`
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`

	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	NewlineDelimited bool          `mapstructure:"newline_delimited"`
	RoutingCacheSize int           `mapstructure:"routing_cache_size"`
}

// Load reads configuration from environment variables (DB_URL, AUTH_MODE, ...).
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Every key needs a default so AutomaticEnv picks it up during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("db_url", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("aws_region", "eu-west-1")
	v.SetDefault("log_level", "info")
	v.SetDefault("metadata_api_url", "")
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("auth_mode", "bearer")
	v.SetDefault("permission_api_url", "")
	v.SetDefault("webhook_api_url", "")
	v.SetDefault("keycloak_server", "")
	v.SetDefault("keycloak_realm", "")
	v.SetDefault("client_id", "")
	v.SetDefault("client_secret", "")
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_backoff", time.Duration(0))
	v.SetDefault("newline_delimited", true)
	v.SetDefault("routing_cache_size", 1024)
}

// Validate checks required values for the selected auth mode.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBURL) == "" {
		return errors.New("DB_URL required")
	}
	if strings.TrimSpace(c.MetadataAPIURL) == "" {
		return errors.New("METADATA_API_URL required")
	}
	if c.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must be >= 0")
	}
	if c.RetryBackoff < 0 {
		return errors.New("RETRY_BACKOFF must be >= 0")
	}

	switch c.AuthMode {
	case "bearer":
		if c.PermissionAPIURL == "" {
			return errors.New("PERMISSION_API_URL required when AUTH_MODE=bearer")
		}
	case "webhook":
		if c.WebhookAPIURL == "" || c.KeycloakServer == "" || c.KeycloakRealm == "" ||
			c.ClientID == "" || c.ClientSecret == "" {
			return errors.New("WEBHOOK_API_URL, KEYCLOAK_SERVER, KEYCLOAK_REALM, CLIENT_ID and CLIENT_SECRET required when AUTH_MODE=webhook")
		}
	default:
		return fmt.Errorf(`AUTH_MODE must be "bearer" or "webhook", got %q`, c.AuthMode)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the catalog service.
type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppPort string `mapstructure:"APP_PORT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseDSN   string `mapstructure:"DATABASE_DSN"`
	DatabaseDebug bool   `mapstructure:"DATABASE_DEBUG"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`

	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	AdminUsername     string        `mapstructure:"ADMIN_USERNAME"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
}

// SetDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("DATABASE_DEBUG", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("TOKEN_TTL", time.Hour)
}

// Load reads configuration from the environment and, when path is not empty, from a config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must be provided")
	}
	if c.AdminEnabled() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided when ADMIN_PASSWORD_HASH is set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// IsProduction returns true when the service runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AdminEnabled reports whether the admin surface (token issuing, reset) is mounted.
func (c *Config) AdminEnabled() bool {
	return c != nil && c.AdminPasswordHash != ""
}

// EventsEnabled reports whether product events are published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c != nil && c.RabbitMQURL != ""
}

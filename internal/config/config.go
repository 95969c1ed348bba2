package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                    string   `mapstructure:"PORT"`
	Env                     string   `mapstructure:"ENV"`
	LogLevel                string   `mapstructure:"LOG_LEVEL"`
	CORSOrigins             []string `mapstructure:"CORS_ORIGINS"`
	AnthropicAPIKey         string   `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel          string   `mapstructure:"ANTHROPIC_MODEL"`
	AnthropicMaxTokens      int      `mapstructure:"ANTHROPIC_MAX_TOKENS"`
	AnthropicTimeoutSeconds int      `mapstructure:"ANTHROPIC_TIMEOUT_SECONDS"`
	RequestTimeoutSeconds   int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	BodyLimit               string   `mapstructure:"BODY_LIMIT"`
	RateLimitRPS            float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int      `mapstructure:"RATE_LIMIT_BURST"`
	MetricsEnabled          bool     `mapstructure:"METRICS_ENABLED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
	v.SetDefault("ANTHROPIC_MAX_TOKENS", 2048)
	v.SetDefault("ANTHROPIC_TIMEOUT_SECONDS", 60)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 90)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("ANTHROPIC_API_KEY")
	v.BindEnv("ANTHROPIC_MODEL")
	v.BindEnv("ANTHROPIC_MAX_TOKENS")
	v.BindEnv("ANTHROPIC_TIMEOUT_SECONDS")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("METRICS_ENABLED")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProviderTimeout returns the per-call budget for the upstream model provider.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.AnthropicTimeoutSeconds) * time.Second
}

// RequestTimeout returns the whole-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. Budgets must be
// positive, and the request deadline must cover the provider call so the
// provider timeout fires before the request deadline does.
func (c *Config) Validate() error {
	if c.AnthropicMaxTokens <= 0 {
		return fmt.Errorf("ANTHROPIC_MAX_TOKENS must be positive, got %d", c.AnthropicMaxTokens)
	}
	if c.AnthropicTimeoutSeconds <= 0 {
		return fmt.Errorf("ANTHROPIC_TIMEOUT_SECONDS must be positive, got %d", c.AnthropicTimeoutSeconds)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.RequestTimeoutSeconds < c.AnthropicTimeoutSeconds {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS (%d) must be at least ANTHROPIC_TIMEOUT_SECONDS (%d)",
			c.RequestTimeoutSeconds, c.AnthropicTimeoutSeconds)
	}
	return nil
}

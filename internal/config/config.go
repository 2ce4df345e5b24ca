// Package config provides configuration management for the analysis tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Market  MarketConfig  `mapstructure:"market"`
	Data    DataConfig    `mapstructure:"data"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// MarketConfig holds exchange and lookback defaults.
type MarketConfig struct {
	DefaultExchange  string `mapstructure:"default_exchange"`  // NSE, BSE
	FallbackExchange string `mapstructure:"fallback_exchange"` // tried when the default has no data
	LookbackMonths   int    `mapstructure:"lookback_months"`
}

// DataConfig holds market-data source configuration.
type DataConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryAttempts  int    `mapstructure:"retry_attempts"`
	UserAgent      string `mapstructure:"user_agent"`
}

// CacheConfig holds the local candle cache configuration.
type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	TTLHours int  `mapstructure:"ttl_hours"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UIConfig holds terminal output configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
	ChartWidth   int  `mapstructure:"chart_width"`
	ChartHeight  int  `mapstructure:"chart_height"`
}

// Bounds for the lookback window a user may request.
const (
	MinLookbackMonths     = 1
	MaxLookbackMonths     = 60
	DefaultLookbackMonths = 12
)

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stocklens"
	}
	return filepath.Join(home, ".config", "stocklens")
}

// DefaultDBPath returns the default candle cache database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "stocklens.db")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultConfigDir(), "logs", "stocklens.log")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is not
// an error: a commented template is written for the next run and the
// built-in defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateConfig(configDir); werr != nil {
				return nil, werr
			}
		} else {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.default_exchange", "NSE")
	v.SetDefault("market.fallback_exchange", "BSE")
	v.SetDefault("market.lookback_months", DefaultLookbackMonths)

	v.SetDefault("data.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("data.timeout_seconds", 30)
	v.SetDefault("data.retry_attempts", 3)
	v.SetDefault("data.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_hours", 12)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.max_size_mb", 20)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.chart_width", 64)
	v.SetDefault("ui.chart_height", 12)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKLENS_EXCHANGE"); v != "" {
		cfg.Market.DefaultExchange = v
	}
	if v := os.Getenv("STOCKLENS_LOOKBACK_MONTHS"); v != "" {
		if months, err := strconv.Atoi(v); err == nil {
			cfg.Market.LookbackMonths = months
		}
	}
	if v := os.Getenv("STOCKLENS_BASE_URL"); v != "" {
		cfg.Data.BaseURL = v
	}
	if v := os.Getenv("STOCKLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STOCKLENS_NO_CACHE"); v != "" {
		cfg.Cache.Enabled = false
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, ok := models.ParseExchange(c.Market.DefaultExchange); !ok {
		return apperrors.NewValidationError("market.default_exchange", c.Market.DefaultExchange, "must be NSE or BSE")
	}
	if _, ok := models.ParseExchange(c.Market.FallbackExchange); !ok {
		return apperrors.NewValidationError("market.fallback_exchange", c.Market.FallbackExchange, "must be NSE or BSE")
	}
	if c.Market.LookbackMonths < MinLookbackMonths || c.Market.LookbackMonths > MaxLookbackMonths {
		return apperrors.NewValidationError("market.lookback_months", c.Market.LookbackMonths,
			fmt.Sprintf("must be between %d and %d", MinLookbackMonths, MaxLookbackMonths))
	}
	if c.Data.BaseURL == "" {
		return apperrors.NewValidationError("data.base_url", c.Data.BaseURL, "must not be empty")
	}
	if c.Data.TimeoutSeconds <= 0 {
		return apperrors.NewValidationError("data.timeout_seconds", c.Data.TimeoutSeconds, "must be positive")
	}
	if c.Data.RetryAttempts < 1 {
		return apperrors.NewValidationError("data.retry_attempts", c.Data.RetryAttempts, "must be at least 1")
	}
	if c.Cache.TTLHours < 0 {
		return apperrors.NewValidationError("cache.ttl_hours", c.Cache.TTLHours, "must be non-negative")
	}
	if c.UI.ChartWidth < 16 || c.UI.ChartHeight < 4 {
		return apperrors.NewValidationError("ui", fmt.Sprintf("%dx%d", c.UI.ChartWidth, c.UI.ChartHeight),
			"chart must be at least 16x4")
	}
	return nil
}

// PrimaryExchange returns the configured default exchange.
func (c *Config) PrimaryExchange() models.Exchange {
	ex, _ := models.ParseExchange(c.Market.DefaultExchange)
	return ex
}

// FallbackExchange returns the configured fallback exchange.
func (c *Config) FallbackExchange() models.Exchange {
	ex, _ := models.ParseExchange(c.Market.FallbackExchange)
	return ex
}

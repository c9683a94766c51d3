package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// FeedConfig holds the sports-results feed API configuration
type FeedConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// SnapshotConfig holds the probability aggregator API configuration
type SnapshotConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// WatchConfig holds watch/poll engine configuration
type WatchConfig struct {
	PollIntervalMs int           `mapstructure:"poll_interval_ms"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	QueueCap       int           `mapstructure:"queue_cap"`
	DrainLimit     int           `mapstructure:"drain_limit"`
}

// PollInterval returns the poll interval as a duration.
func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds alert-history persistence configuration
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
	Enabled   bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("ODDSWATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.timeout", "15s")
	v.SetDefault("feed.max_retries", 3)
	v.SetDefault("feed.retry_delay_base", "1s")

	v.SetDefault("snapshot.timeout", "15s")
	v.SetDefault("snapshot.max_retries", 3)
	v.SetDefault("snapshot.retry_delay_base", "1s")

	v.SetDefault("watch.poll_interval_ms", 120000)
	v.SetDefault("watch.fetch_timeout", "10s")
	v.SetDefault("watch.queue_cap", 256)
	v.SetDefault("watch.drain_limit", 5)

	v.SetDefault("storage.db_path", "./data/oddswatch.db")
	v.SetDefault("storage.max_alerts", 1000)
	v.SetDefault("storage.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	if c.Snapshot.BaseURL == "" {
		return fmt.Errorf("snapshot.base_url is required")
	}

	if c.Watch.PollIntervalMs < 1000 {
		return fmt.Errorf("watch.poll_interval_ms must be at least 1000")
	}
	if c.Watch.FetchTimeout < time.Second {
		return fmt.Errorf("watch.fetch_timeout must be at least 1 second")
	}
	if c.Watch.QueueCap < 1 {
		return fmt.Errorf("watch.queue_cap must be at least 1")
	}
	if c.Watch.DrainLimit < 1 {
		return fmt.Errorf("watch.drain_limit must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.Enabled {
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path is required when storage is enabled")
		}
		if c.Storage.MaxAlerts < 1 {
			return fmt.Errorf("storage.max_alerts must be at least 1")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

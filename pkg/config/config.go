// Package config provides configuration loading and validation utilities.
package config

import "time"

// Config holds runtime configuration for the grocery bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Mongo     MongoConfig     `mapstructure:"mongo" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Match     MatchConfig     `mapstructure:"match"`
}

// BotConfig describes Telegram connectivity and access control.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"omitempty,oneof=longpoll webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Whitelist lists chat ids allowed to talk to the bot. Empty means open.
	Whitelist []int64 `mapstructure:"whitelist"`
	// NotifyChats receive a message whenever a purchase is recorded.
	NotifyChats []int64 `mapstructure:"notify_chats"`
}

// MongoConfig describes the document database connection.
type MongoConfig struct {
	URI            string        `mapstructure:"uri" validate:"required"`
	Database       string        `mapstructure:"database" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig describes the Redis connection used for FSM state, locks,
// rate limits and the jobs queue.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// ServerConfig describes the HTTP server hosting metrics and health probes.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig defines logging level, format and optional file rotation.
type LoggingConfig struct {
	Level  string        `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig controls rotated file output.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig enables error reporting to Sentry.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// RateLimitRule pairs a request budget with its sliding window.
type RateLimitRule struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds per-user limits and exemptions.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Whitelist []int64       `mapstructure:"whitelist"`
}

// ReminderConfig controls the scheduled pending-purchase reminder job.
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron holds the reminder schedule expression.
	Cron string `mapstructure:"cron"`
	// PendingAge is how long a pending purchase may sit before a nudge.
	PendingAge time.Duration `mapstructure:"pending_age"`
}

// MatchConfig tunes fuzzy name resolution.
type MatchConfig struct {
	// TopN caps how many fuzzy candidates the disambiguation prompt offers.
	TopN int `mapstructure:"top_n"`
}

// SetDefaults fills zero values with runtime defaults.
func (c *Config) SetDefaults() {
	if c.Bot.Mode == "" {
		c.Bot.Mode = "longpoll"
	}
	if c.Bot.Timeout <= 0 {
		c.Bot.Timeout = 10 * time.Second
	}
	if c.Mongo.ConnectTimeout <= 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Match.TopN <= 0 {
		c.Match.TopN = 5
	}
	if c.Reminder.Cron == "" {
		c.Reminder.Cron = "0 9 * * *"
	}
	if c.Reminder.PendingAge <= 0 {
		c.Reminder.PendingAge = 72 * time.Hour
	}
}

// ChatAllowed reports whether the chat id passes the whitelist.
func (c *BotConfig) ChatAllowed(chatID int64) bool {
	if len(c.Whitelist) == 0 {
		return true
	}

	for _, id := range c.Whitelist {
		if id == chatID {
			return true
		}
	}

	return false
}

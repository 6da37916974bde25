// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Timezone  string          `mapstructure:"timezone"`
	Games     GamesConfig     `mapstructure:"games"`
	Clock     ClockConfig     `mapstructure:"clock"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Arrow ArrowConfig `mapstructure:"arrow"`
}

// ArrowConfig holds arrow game configuration.
type ArrowConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	Length         int `mapstructure:"length"`
}

// ClockConfig holds clock wizard configuration.
type ClockConfig struct {
	IdleExpirySeconds int    `mapstructure:"idle_expiry_seconds"`
	RosterFile        string `mapstructure:"roster_file"`
}

// LedgerConfig selects and tunes the ledger backends.
type LedgerConfig struct {
	Backends     []string      `mapstructure:"backends"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SQLiteConfig holds the local SQLite ledger configuration.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// SheetsConfig holds Google Sheets ledger configuration.
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Range           string `mapstructure:"range"`
	Endpoint        string `mapstructure:"endpoint"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// ArrowTimeout returns the arrow game time limit.
func (c *Config) ArrowTimeout() time.Duration {
	return time.Duration(c.Games.Arrow.TimeoutSeconds) * time.Second
}

// IdleExpiry returns the clock wizard idle expiry.
func (c *Config) IdleExpiry() time.Duration {
	return time.Duration(c.Clock.IdleExpirySeconds) * time.Second
}

// Location resolves the configured time zone. An unknown zone returns UTC
// along with the error.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks settings required to start the bot.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Games.Arrow.TimeoutSeconds <= 0 {
		return fmt.Errorf("games.arrow.timeout_seconds must be positive")
	}
	if c.Games.Arrow.Length <= 0 {
		return fmt.Errorf("games.arrow.length must be positive")
	}
	if c.Clock.IdleExpirySeconds <= 0 {
		return fmt.Errorf("clock.idle_expiry_seconds must be positive")
	}
	return nil
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, LEDGER_BACKENDS, SHEETS_SPREADSHEET_ID
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("timezone", "Asia/Bangkok")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "clockbot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "clockbot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Game defaults
	v.SetDefault("games.arrow.timeout_seconds", 15)
	v.SetDefault("games.arrow.length", 4)

	// Clock wizard defaults
	v.SetDefault("clock.idle_expiry_seconds", 120)
	v.SetDefault("clock.roster_file", "")

	// Ledger defaults
	v.SetDefault("ledger.backends", []string{"log"})
	v.SetDefault("ledger.write_timeout", "10s")
	v.SetDefault("sqlite.path", "clock.db")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.range", "Sheet1!A:C")
	v.SetDefault("sheets.endpoint", "")
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}

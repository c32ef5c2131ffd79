package config

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/utils"
)

// Config is the application configuration
type Config struct {
	User      string          `mapstructure:"user"`
	Timezone  string          `mapstructure:"timezone"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Plot      PlotConfig      `mapstructure:"plot"`
	Backup    BackupConfig    `mapstructure:"backup"`
}

// DatabaseConfig selects the store. A postgres:// DSN selects PostgreSQL,
// anything else is treated as a SQLite file path.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Debug  bool   `mapstructure:"debug"`
	Dir    string `mapstructure:"dir"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables the Redis page cache when Addr is set
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AnalyticsConfig holds the defaults applied to request controls
type AnalyticsConfig struct {
	Window     int     `mapstructure:"window"`
	Std        float64 `mapstructure:"std"`
	Metric     string  `mapstructure:"metric"`
	Normalize  bool    `mapstructure:"normalize"`
	MaxWorkers int     `mapstructure:"max_workers"`
}

type PlotConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Font   string `mapstructure:"font"`
}

// BackupConfig controls SQLite snapshots. Keep is how many are retained.
type BackupConfig struct {
	Keep int `mapstructure:"keep"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		User:     constants.DefaultUser,
		Timezone: constants.DefaultTimezone,
		Database: DatabaseConfig{DSN: constants.DefaultConfigPath},
		Log:      LogConfig{Dir: constants.DefaultConfigDir, Level: "warn", Format: "text"},
		Server:   ServerConfig{Addr: constants.DefaultServerAddr},
		Cache:    CacheConfig{TTL: constants.DefaultCacheTTL},
		Analytics: AnalyticsConfig{
			Window:     constants.DefaultWindow,
			Std:        constants.DefaultStdThreshold,
			Metric:     constants.DefaultMetric,
			Normalize:  constants.DefaultNormalize,
			MaxWorkers: constants.DefaultMaxWorkers,
		},
		Plot: PlotConfig{
			Width:  constants.DefaultPlotWidth,
			Height: constants.DefaultPlotHeight,
		},
		Backup: BackupConfig{Keep: constants.DefaultBackupKeep},
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.Analytics.MaxWorkers < 1 {
		return fmt.Errorf("analytics.max_workers must be at least 1, got %d", c.Analytics.MaxWorkers)
	}
	if c.Analytics.Window < 1 {
		return fmt.Errorf("analytics.window must be at least 1, got %d", c.Analytics.Window)
	}
	if c.Analytics.Std <= 0 {
		return fmt.Errorf("analytics.std must be positive, got %g", c.Analytics.Std)
	}
	if _, ok := models.ParseMetric(c.Analytics.Metric); !ok {
		return fmt.Errorf("analytics.metric must be productivity or mood, got %q", c.Analytics.Metric)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %dx%d", c.Plot.Width, c.Plot.Height)
	}
	if c.Backup.Keep < 1 {
		return fmt.Errorf("backup.keep must be at least 1, got %d", c.Backup.Keep)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// Location returns the configured timezone
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/utils"
)

// Load reads configuration from configPath (optional), HABITLENS_* environment
// variables and built-in defaults, in decreasing order of precedence after env.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(utils.ExpandPath(configPath))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(utils.ExpandPath(constants.DefaultConfigDir))
	}

	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return parseConfig(v)
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("user", d.User)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("analytics.window", d.Analytics.Window)
	v.SetDefault("analytics.std", d.Analytics.Std)
	v.SetDefault("analytics.metric", d.Analytics.Metric)
	v.SetDefault("analytics.normalize", d.Analytics.Normalize)
	v.SetDefault("analytics.max_workers", d.Analytics.MaxWorkers)
	v.SetDefault("plot.width", d.Plot.Width)
	v.SetDefault("plot.height", d.Plot.Height)
	v.SetDefault("plot.font", d.Plot.Font)
	v.SetDefault("backup.keep", d.Backup.Keep)
}

func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if !utils.IsPostgresDSN(cfg.Database.DSN) {
		cfg.Database.DSN = utils.ExpandPath(cfg.Database.DSN)
	}
	cfg.Log.Dir = utils.ExpandPath(cfg.Log.Dir)
	return &cfg, nil
}

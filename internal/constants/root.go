package constants

import "time"

const (
	AppName            = "habitlens"
	Version            = "v0.1.0"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitlens"
	DefaultConfigPath  = "~/.config/habitlens/habitlens.db"
	DefaultConfigFile  = "~/.config/habitlens/config.yaml"
	DefaultUser        = "default"
	DefaultTimezone    = "Local"
	EnvPrefix          = "HABITLENS"
	EnvDBConnection    = "HABITLENS_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Server and cache defaults
	DefaultServerAddr = ":8080"
	DefaultCacheTTL   = 5 * time.Minute
	CacheKeyPrefix    = "habitlens:journal:"
	UserHeader        = "X-User"

	// DefaultBackupKeep is how many SQLite snapshots are retained
	DefaultBackupKeep = 14
)

package config

import (
	"log"
	"net"
	"time"

	"github.com/spf13/viper"
)

// DefaultHost keeps the server on the reader's own device. The local
// stores are process-wide, so every caller that can reach the port shares
// them.
const DefaultHost = "127.0.0.1"

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Every request is anonymous (default)
	AuthModeToken AuthMode = "token" // Bearer tokens resolved against the users table
)

type (
	Config struct {
		HTTP
		Global
		Database
		LocalStorage
		Cache
		Reader
		DailyFeatured
		Tasks
		Auth
		Audit
		Catalog
	}

	HTTP struct {
		Port       int32
		Host       string // Defaults to loopback; see DefaultHost
		HSTSMaxAge int // Seconds; 0 disables Strict-Transport-Security
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	LocalStorage struct {
		Path string // Separate SQLite file standing in for device storage
	}
	Cache struct {
		MaxEntries int // Upper bound of query cache keys (0 uses the cache default)
	}
	Reader struct {
		Timezone string // IANA name used to compute "today" for the daily featured teaching
	}
	DailyFeatured struct {
		Enabled  bool
		Schedule string // Cron format: "5 0 * * *" = shortly after midnight
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode AuthMode
	}
	Catalog struct {
		Frozen bool // Reject every admin write while true
	}
	Audit struct {
		Retention time.Duration // Admin edit history older than this is pruned by a startup task; 0 keeps everything
	}
)

// Location resolves the configured reader timezone, falling back to the
// process local zone when the name is empty or unknown.
func (r Reader) Location() *time.Location {
	if r.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		log.Printf("WARNING: unknown READER_TIMEZONE %q, using local time", r.Timezone)
		return time.Local
	}
	return loc
}

// LocalOnly reports whether Host binds a loopback address only.
func (h HTTP) LocalOnly() bool {
	if h.Host == "localhost" {
		return true
	}
	ip := net.ParseIP(h.Host)
	return ip != nil && ip.IsLoopback()
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("local_storage_path", DefaultLocalStoragePath)
	v.SetDefault("cache_max_entries", 512)
	v.SetDefault("reader_timezone", "")

	// Daily featured rotation
	v.SetDefault("daily_featured_enabled", true)
	v.SetDefault("daily_featured_schedule", "5 0 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", "none")

	v.SetDefault("audit_retention", "2160h")
	v.SetDefault("catalog_frozen", false)

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		LocalStorage: LocalStorage{
			Path: v.GetString("LOCAL_STORAGE_PATH"),
		},
		Cache: Cache{
			MaxEntries: v.GetInt("CACHE_MAX_ENTRIES"),
		},
		Reader: Reader{
			Timezone: v.GetString("READER_TIMEZONE"),
		},
		DailyFeatured: DailyFeatured{
			Enabled:  v.GetBool("DAILY_FEATURED_ENABLED"),
			Schedule: v.GetString("DAILY_FEATURED_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode: AuthMode(v.GetString("AUTH_MODE")),
		},
		Audit: Audit{
			Retention: v.GetDuration("AUDIT_RETENTION"),
		},
		Catalog: Catalog{
			Frozen: v.GetBool("CATALOG_FROZEN"),
		},
	}
}

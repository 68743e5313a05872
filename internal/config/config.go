// Package config loads the application configuration from config files,
// environment variables, and .env files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults for everything tunable.
const (
	DefaultListenAddr   = ":8080"
	DefaultRoutePrefix  = "/api/v1"
	DefaultLockTTL      = time.Hour
	DefaultCacheTTL     = 24 * time.Hour
	DefaultPageSize     = 100
	DefaultMaxPages     = 50
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRawRetention = 30 * 24 * time.Hour
	DefaultLedgerWindow = 7 * 24 * time.Hour
	DefaultStuckTimeout = time.Hour
)

// Config holds the application configuration loaded from all sources.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Storage
	DatabaseDSN string

	// HTTP server
	ListenAddr  string
	RoutePrefix string

	// Providers
	ShipyardBaseURL string
	GamedataBaseURL string

	// Rumor feeds
	DevReportsBaseURL string
	RoadmapBaseURL    string
	MinedNotesBaseURL string

	// Sync behavior
	LockTTL        time.Duration
	CacheTTL       time.Duration
	PageSize       int
	MaxPages       int
	PrecedencePath string

	// Retention windows
	RawPayloadWindow time.Duration
	LedgerWindow     time.Duration
	StuckTimeout     time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration in order of precedence: flags (bound by cobra),
// environment variables, .env files, config file, defaults.
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".fleetsync")
		}
	}
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),

		DatabaseDSN: viper.GetString("database_dsn"),

		ListenAddr:  viper.GetString("listen_addr"),
		RoutePrefix: viper.GetString("route_prefix"),

		ShipyardBaseURL: viper.GetString("shipyard_base_url"),
		GamedataBaseURL: viper.GetString("gamedata_base_url"),

		DevReportsBaseURL: viper.GetString("dev_reports_base_url"),
		RoadmapBaseURL:    viper.GetString("roadmap_base_url"),
		MinedNotesBaseURL: viper.GetString("mined_notes_base_url"),

		LockTTL:        viper.GetDuration("lock_ttl"),
		CacheTTL:       viper.GetDuration("cache_ttl"),
		PageSize:       viper.GetInt("page_size"),
		MaxPages:       viper.GetInt("max_pages"),
		PrecedencePath: viper.GetString("precedence_path"),

		RawPayloadWindow: viper.GetDuration("raw_payload_window"),
		LedgerWindow:     viper.GetDuration("ledger_window"),
		StuckTimeout:     viper.GetDuration("stuck_timeout"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.RoutePrefix == "" {
		c.RoutePrefix = DefaultRoutePrefix
	}
	if c.LockTTL == 0 {
		c.LockTTL = DefaultLockTTL
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.RawPayloadWindow == 0 {
		c.RawPayloadWindow = DefaultRawRetention
	}
	if c.LedgerWindow == 0 {
		c.LedgerWindow = DefaultLedgerWindow
	}
	if c.StuckTimeout == 0 {
		c.StuckTimeout = DefaultStuckTimeout
	}
}

// loadEnvFiles loads environment variables from .env files; .env.local
// overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

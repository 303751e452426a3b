// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Search modes accepted in SearchConfig.Mode.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server  ServerConfig
	Search  SearchConfig
	Logging LoggingConfig
	Metrics MetricsConfig
	History HistoryConfig
	Events  EventsConfig
}

// ServerConfig contains HTTP server configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	// APIKeys guard the /api routes when non-empty.
	APIKeys []string
}

// SearchConfig selects between the built-in mock responder and the live
// upstream search API. Endpoint and APIKey are only required in live mode.
type SearchConfig struct {
	Mode     string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// UseMock reports whether searches are answered with demo data.
func (s SearchConfig) UseMock() bool {
	return s.Mode != ModeLive
}

// MissingLiveSettings lists the configuration keys live mode still needs.
func (s SearchConfig) MissingLiveSettings() []string {
	var missing []string
	if strings.TrimSpace(s.Endpoint) == "" {
		missing = append(missing, "search.endpoint (APP_SEARCH_ENDPOINT)")
	}
	if strings.TrimSpace(s.APIKey) == "" {
		missing = append(missing, "search.apikey (APP_SEARCH_APIKEY)")
	}
	return missing
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// HistoryConfig contains the optional search history database configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type HistoryConfig struct {
	Enabled        bool
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// DSN returns the libpq style connection string for the history database.
func (h HistoryConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		h.Host, h.Port, h.User, h.Password, h.Name, h.SSLMode,
	)
}

// EventsConfig contains the optional RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type EventsConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Nested keys map to APP_SECTION_KEY, e.g. search.apikey -> APP_SEARCH_APIKEY
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Search.Mode = strings.ToLower(strings.TrimSpace(cfg.Search.Mode))
	if cfg.Search.Mode == "" {
		cfg.Search.Mode = ModeMock
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail on every request.
// Missing live mode settings are not checked here; they are
// reported per request so the mock default keeps working.
func (c *Config) Validate() error {
	if c.Search.Mode != ModeMock && c.Search.Mode != ModeLive {
		return fmt.Errorf("invalid search.mode %q: must be %q or %q", c.Search.Mode, ModeMock, ModeLive)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid server.maxuploadbytes %d", c.Server.MaxUploadBytes)
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.maxuploadbytes", 100*1024*1024) // 100MB
	viper.SetDefault("server.apikeys", []string{})

	// Search
	viper.SetDefault("search.mode", ModeMock)
	viper.SetDefault("search.endpoint", "")
	viper.SetDefault("search.apikey", "")
	viper.SetDefault("search.timeout", time.Duration(0))

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")

	// Metrics
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// History
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.host", "localhost")
	viper.SetDefault("history.port", 5432)
	viper.SetDefault("history.name", "visualsearch")
	viper.SetDefault("history.user", "postgres")
	viper.SetDefault("history.password", "postgres")
	viper.SetDefault("history.sslmode", "disable")
	viper.SetDefault("history.maxconnections", 10)
	viper.SetDefault("history.minconnections", 2)
	viper.SetDefault("history.maxidletime", 10*time.Minute)
	viper.SetDefault("history.maxlifetime", 1*time.Hour)

	// Events
	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.host", "localhost")
	viper.SetDefault("events.port", 5672)
	viper.SetDefault("events.user", "guest")
	viper.SetDefault("events.password", "guest")
	viper.SetDefault("events.exchange", "visualsearch.events")
	viper.SetDefault("events.queue", "visualsearch.searches")
	viper.SetDefault("events.routingkey", "search.completed")
}

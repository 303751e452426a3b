package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:    "load with defaults (no config file)",
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Server.MaxUploadBytes != 100*1024*1024 {
					t.Errorf("Server.MaxUploadBytes = %d, want 104857600", cfg.Server.MaxUploadBytes)
				}
				if cfg.Search.Mode != ModeMock {
					t.Errorf("Search.Mode = %s, want mock", cfg.Search.Mode)
				}
				if !cfg.Search.UseMock() {
					t.Error("Search.UseMock() = false, want true")
				}
				if cfg.Search.Timeout != 0 {
					t.Errorf("Search.Timeout = %v, want 0", cfg.Search.Timeout)
				}
				if cfg.History.Enabled {
					t.Error("History.Enabled = true, want false")
				}
				if cfg.Events.Enabled {
					t.Error("Events.Enabled = true, want false")
				}
				if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
					t.Errorf("Metrics = %+v, want enabled on /metrics", cfg.Metrics)
				}
			},
		},
		{
			name: "load live mode from environment variables",
			env: map[string]string{
				"APP_SERVER_PORT":     "9090",
				"APP_SEARCH_MODE":     "LIVE",
				"APP_SEARCH_ENDPOINT": "https://search.example.com/v1/match",
				"APP_SEARCH_APIKEY":   "secret",
				"APP_SEARCH_TIMEOUT":  "45s",
				"APP_HISTORY_ENABLED": "true",
				"APP_HISTORY_HOST":    "historydb",
				"APP_SERVER_APIKEYS":  "key-a,key-b",
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Search.Mode != ModeLive {
					t.Errorf("Search.Mode = %s, want live", cfg.Search.Mode)
				}
				if cfg.Search.UseMock() {
					t.Error("Search.UseMock() = true, want false")
				}
				if cfg.Search.Endpoint != "https://search.example.com/v1/match" {
					t.Errorf("Search.Endpoint = %s", cfg.Search.Endpoint)
				}
				if cfg.Search.APIKey != "secret" {
					t.Errorf("Search.APIKey = %s, want secret", cfg.Search.APIKey)
				}
				if cfg.Search.Timeout != 45*time.Second {
					t.Errorf("Search.Timeout = %v, want 45s", cfg.Search.Timeout)
				}
				if !cfg.History.Enabled || cfg.History.Host != "historydb" {
					t.Errorf("History = %+v, want enabled on historydb", cfg.History)
				}
				if len(cfg.Server.APIKeys) != 2 || cfg.Server.APIKeys[1] != "key-b" {
					t.Errorf("Server.APIKeys = %v, want [key-a key-b]", cfg.Server.APIKeys)
				}
			},
		},
		{
			name:    "invalid search mode",
			env:     map[string]string{"APP_SEARCH_MODE": "turbo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.env {
					os.Unsetenv(k)
				}
			}()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"server port", "server.port", 8080},
		{"server maxuploadbytes", "server.maxuploadbytes", 104857600},
		{"search mode", "search.mode", "mock"},
		{"search endpoint", "search.endpoint", ""},
		{"search apikey", "search.apikey", ""},
		{"logging level", "logging.level", "info"},
		{"logging file", "logging.file", ""},
		{"metrics enabled", "metrics.enabled", true},
		{"metrics path", "metrics.path", "/metrics"},
		{"history enabled", "history.enabled", false},
		{"history port", "history.port", 5432},
		{"history name", "history.name", "visualsearch"},
		{"events enabled", "events.enabled", false},
		{"events port", "events.port", 5672},
		{"events exchange", "events.exchange", "visualsearch.events"},
		{"events routingkey", "events.routingkey", "search.completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.want {
				t.Errorf("viper.Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if viper.GetDuration("server.shutdowntimeout") != 30*time.Second {
		t.Errorf("server.shutdowntimeout = %v, want 30s", viper.GetDuration("server.shutdowntimeout"))
	}
	if viper.GetDuration("history.maxidletime") != 10*time.Minute {
		t.Errorf("history.maxidletime = %v, want 10m", viper.GetDuration("history.maxidletime"))
	}
}

func TestSearchConfig_MissingLiveSettings(t *testing.T) {
	tests := []struct {
		name   string
		cfg    SearchConfig
		want   int
		substr string
	}{
		{name: "both missing", cfg: SearchConfig{Mode: ModeLive}, want: 2, substr: "APP_SEARCH_ENDPOINT"},
		{name: "endpoint missing", cfg: SearchConfig{Mode: ModeLive, APIKey: "k"}, want: 1, substr: "APP_SEARCH_ENDPOINT"},
		{name: "apikey blank", cfg: SearchConfig{Mode: ModeLive, Endpoint: "http://x", APIKey: "  "}, want: 1, substr: "APP_SEARCH_APIKEY"},
		{name: "complete", cfg: SearchConfig{Mode: ModeLive, Endpoint: "http://x", APIKey: "k"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.MissingLiveSettings()
			if len(got) != tt.want {
				t.Fatalf("MissingLiveSettings() = %v, want %d entries", got, tt.want)
			}
			if tt.substr != "" && !strings.Contains(strings.Join(got, ","), tt.substr) {
				t.Errorf("MissingLiveSettings() = %v, want mention of %s", got, tt.substr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: 8080, MaxUploadBytes: 1024},
		Search: SearchConfig{Mode: ModeMock},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	badPort := valid
	badPort.Server.Port = 0
	if err := badPort.Validate(); err == nil {
		t.Error("Validate() with port 0 returned nil error")
	}

	badUpload := valid
	badUpload.Server.MaxUploadBytes = 0
	if err := badUpload.Validate(); err == nil {
		t.Error("Validate() with zero upload limit returned nil error")
	}
}

func TestHistoryConfig_DSN(t *testing.T) {
	h := HistoryConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=n sslmode=disable"
	if got := h.DSN(); got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
}

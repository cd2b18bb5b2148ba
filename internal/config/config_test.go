package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SessionTimeout != 5*time.Minute {
		t.Errorf("SessionTimeout = %v, want 5m", cfg.SessionTimeout)
	}
	if cfg.ToolTimeout != 15*time.Second {
		t.Errorf("ToolTimeout = %v, want 15s", cfg.ToolTimeout)
	}
	if cfg.MaxRequestBodySize != defaultMaxRequestBodySize {
		t.Errorf("MaxRequestBodySize = %d, want %d", cfg.MaxRequestBodySize, defaultMaxRequestBodySize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TIMEOUT", "90s")
	t.Setenv("SEARCH_BACKEND_URL", "http://localhost:5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.SessionTimeout != 90*time.Second {
		t.Errorf("SessionTimeout = %v, want 90s", cfg.SessionTimeout)
	}
	if cfg.SearchBackendURL != "http://localhost:5000" {
		t.Errorf("SearchBackendURL = %q", cfg.SearchBackendURL)
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("KEEPALIVE_INTERVAL", "often")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeepaliveInterval != 10*time.Second {
		t.Errorf("KeepaliveInterval = %v, want default 10s", cfg.KeepaliveInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"zero session timeout", func(c *Config) { c.SessionTimeout = 0 }, true},
		{"negative tool timeout", func(c *Config) { c.ToolTimeout = -time.Second }, true},
		{"zero body limit", func(c *Config) { c.MaxRequestBodySize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:               "8080",
				SessionTimeout:     time.Minute,
				ToolTimeout:        time.Second,
				KeepaliveInterval:  time.Second,
				MaxRequestBodySize: 1,
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"https://app.example.com", false},
	}

	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontendURL}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.frontendURL, got, tt.want)
		}
	}
}

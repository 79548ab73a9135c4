package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func defaultsOnly(t *testing.T) *AppConfig {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaultsOnly(t)

	if cfg.Session.TTL != time.Hour {
		t.Fatalf("expected 1h session ttl, got %s", cfg.Session.TTL)
	}
	if cfg.Session.Driver != SessionDriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Session.Driver)
	}
	if cfg.Payment.MinAmount != 100 {
		t.Fatalf("expected min amount 100, got %d", cfg.Payment.MinAmount)
	}
	want := []int{500, 1000, 2500, 5000, 10000}
	if len(cfg.Payment.PresetAmounts) != len(want) {
		t.Fatalf("expected presets %v, got %v", want, cfg.Payment.PresetAmounts)
	}
	for i := range want {
		if cfg.Payment.PresetAmounts[i] != want[i] {
			t.Fatalf("expected presets %v, got %v", want, cfg.Payment.PresetAmounts)
		}
	}
	if cfg.Gateway.Timeout != 15*time.Second {
		t.Fatalf("expected 15s gateway timeout, got %s", cfg.Gateway.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "unknown driver", mutate: func(c *AppConfig) { c.Session.Driver = "file" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *AppConfig) { c.Session.Driver = SessionDriverPostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *AppConfig) {
			c.Session.Driver = SessionDriverPostgres
			c.Postgres.DSN = "postgres://localhost/portal"
		}},
		{name: "missing gateway", mutate: func(c *AppConfig) { c.Gateway.BaseURL = "" }, wantErr: true},
		{name: "production with dev secrets", mutate: func(c *AppConfig) { c.Environment = "production" }, wantErr: true},
		{name: "production with secrets", mutate: func(c *AppConfig) {
			c.Environment = "production"
			c.Session.CookieSecret = "cookie"
			c.Security.CSRFSecret = "csrf"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultsOnly(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PORTAL_SESSION_TTL", "30m")
	t.Setenv("PORTAL_GATEWAY_BASEURL", "https://api.example.org/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("expected env ttl 30m, got %s", cfg.Session.TTL)
	}
	if cfg.Gateway.BaseURL != "https://api.example.org/api/" {
		t.Fatalf("expected env base url, got %q", cfg.Gateway.BaseURL)
	}
}

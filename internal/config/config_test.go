package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "shopizi")
	t.Setenv("DB_NAME", "shopizi")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.DB.Driver)
	}
	if cfg.Probe.SimpleTimeout != 10*time.Second {
		t.Errorf("expected 10s simple timeout, got %v", cfg.Probe.SimpleTimeout)
	}
	if cfg.Probe.FullTimeout != 30*time.Second {
		t.Errorf("expected 30s full timeout, got %v", cfg.Probe.FullTimeout)
	}
	if cfg.Probe.MaxRedirects != 5 {
		t.Errorf("expected 5 redirects, got %d", cfg.Probe.MaxRedirects)
	}
	if cfg.Worker.ConnectivityInterval != 0 {
		t.Errorf("expected connectivity worker disabled, got %v", cfg.Worker.ConnectivityInterval)
	}
	if cfg.Redis.Enabled() {
		t.Error("expected redis disabled without REDIS_HOST")
	}
}

func TestLoadSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/shopizi.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.DB.Driver)
	}
}

func TestLoadRejectsIncompleteDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PROBE_SIMPLE_TIMEOUT", "2s")
	t.Setenv("PROBE_RATE_LIMIT", "7")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("CORS_ALLOWED_HOSTS", "Admin.Example.com, ,shop.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Probe.SimpleTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Probe.SimpleTimeout)
	}
	if cfg.Probe.RateLimit != 7 {
		t.Errorf("expected rate limit 7, got %d", cfg.Probe.RateLimit)
	}
	if !cfg.Redis.Enabled() {
		t.Error("expected redis enabled")
	}
	if len(cfg.CORSAllowedHosts) != 2 || cfg.CORSAllowedHosts[0] != "admin.example.com" {
		t.Errorf("unexpected CORS hosts: %v", cfg.CORSAllowedHosts)
	}
}

func TestLoadRejectsNegativeDuration(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PROBE_FULL_TIMEOUT", "-1s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestRequireJWT(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireJWT(); err == nil {
		t.Error("expected error without secret")
	}
	cfg.JWTSecret = "secret"
	if err := cfg.RequireJWT(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

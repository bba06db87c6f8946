package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMOTE_API_URL", "http://api.local/lbf")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")
	cfg := Load()
	if cfg.RemoteAPIURL != "http://api.local/lbf" {
		t.Fatalf("RemoteAPIURL = %q", cfg.RemoteAPIURL)
	}
	if cfg.LoginRoute != "/" || cfg.LandingRoute != "/c/inicio" || cfg.AdminRoute != "/admin" {
		t.Fatalf("routes = %q %q %q", cfg.LoginRoute, cfg.LandingRoute, cfg.AdminRoute)
	}
	if cfg.SessionFile != "/run/user/1000/pos-backoffice/session.json" {
		t.Fatalf("SessionFile = %q", cfg.SessionFile)
	}
	if cfg.Host != "127.0.0.1" || cfg.Addr() != "127.0.0.1:8081" {
		t.Fatalf("listen address = %q; the terminal must bind to loopback by default", cfg.Addr())
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.SessionBackend != "file" {
		t.Fatalf("session settings = %v %q", cfg.SessionTTL, cfg.SessionBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REMOTE_API_URL", "http://api.local")
	t.Setenv("ROUTE_LANDING", "/home")
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("AUDIT_ENABLED", "yes")
	t.Setenv("RABBITMQ_URL", "amqp://broker/")
	cfg := Load()
	if cfg.LandingRoute != "/home" || cfg.SessionBackend != "redis" || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:8081" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if !cfg.AuditEnabled || cfg.AMQPURL != "amqp://broker/" {
		t.Fatalf("audit = %v %q", cfg.AuditEnabled, cfg.AMQPURL)
	}
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT_CAPACITY", "0")
	t.Setenv("LOGIN_RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("LOGIN_RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("Capacity = %d", cfg.Capacity)
	}
	if cfg.TTL != 50*time.Second {
		t.Fatalf("TTL = %v", cfg.TTL)
	}
}

func TestAuditConfigUseDB(t *testing.T) {
	if (AuditConfig{}).UseDB() {
		t.Fatal("no DB_HOST must mean file sink")
	}
	t.Setenv("DB_HOST", "db")
	if !LoadAuditConfig().UseDB() {
		t.Fatal("DB_HOST set must select MySQL")
	}
}

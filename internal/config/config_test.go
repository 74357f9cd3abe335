package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("CACHE_BACKEND", "")
	cfg := Load()
	if cfg.Port != "8090" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "http://localhost:3001" {
		t.Fatalf("expected default api base url, got %s", cfg.APIBaseURL)
	}
	if cfg.SlotStepMinutes != 15 || cfg.DayStartHour != 7 || cfg.DayEndHour != 20 {
		t.Fatalf("expected default calendar window, got %+v", cfg)
	}
	if cfg.CacheBackend != "memory" {
		t.Fatalf("expected memory cache backend, got %s", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected default cache ttl, got %s", cfg.CacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_BASE_URL", "https://api.example.test")
	t.Setenv("API_TIMEOUT", "30s")
	t.Setenv("VIEWER_TZ", "Europe/Berlin")
	t.Setenv("SLOT_STEP_MINUTES", "30")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "https://api.example.test" {
		t.Fatalf("expected api base url override, got %s", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("expected api timeout override, got %s", cfg.APITimeout)
	}
	if cfg.SlotStepMinutes != 30 {
		t.Fatalf("expected slot step override, got %d", cfg.SlotStepMinutes)
	}
	if cfg.CacheBackend != "redis" || cfg.RedisAddr != "redis.internal:6380" || !cfg.RedisTLS {
		t.Fatalf("expected redis overrides, got %+v", cfg)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("expected viewer tz resolved, got %s", cfg.Location())
	}
}

func TestLocationFallback(t *testing.T) {
	t.Setenv("VIEWER_TZ", "Not/AZone")
	cfg := Load()
	if cfg.Location() != time.Local {
		t.Fatalf("expected fallback to local zone")
	}
}

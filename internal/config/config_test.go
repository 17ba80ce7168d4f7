package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_PORT", "")
	cfg := Load()
	if cfg.StoreDriver != DriverMongo {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverMongo)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.MongoDB != "hotel" || cfg.MongoCollection != "reservation" {
		t.Errorf("mongo target = %s.%s, want hotel.reservation", cfg.MongoDB, cfg.MongoCollection)
	}
}

func TestLoadSQLDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_USER", "hotel")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "hotel")
	t.Setenv("LOG_LEVEL", "WARN")
	cfg := Load()
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want disable", cfg.DBSSLMode)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want 10s", cfg.TTL)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"on", false, true},
		{"NO", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("X_FLAG", tt.val)
		if got := envBool("X_FLAG", tt.def); got != tt.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}

func TestLoadEventsConfigFallbacks(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	cfg := LoadEventsConfig()
	if cfg.URL != "amqp://u:p@broker:5672/" {
		t.Errorf("URL = %q, want AMQP_URL value", cfg.URL)
	}
	if cfg.Queue != "reservation.events" {
		t.Errorf("Queue = %q, want reservation.events", cfg.Queue)
	}
}

func TestLoadRedisConfigHostPort(t *testing.T) {
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	if got := LoadRedisConfig().Addr; got != "cache:6380" {
		t.Errorf("Addr = %q, want cache:6380", got)
	}
}

func TestEnvOrFallsBackOnBadValues(t *testing.T) {
	t.Setenv("X_INT", " 42 ")
	if got := envInt("X_INT", 7); got != 42 {
		t.Errorf("envInt(\" 42 \") = %d, want 42", got)
	}
	t.Setenv("X_INT", "forty")
	if got := envInt("X_INT", 7); got != 7 {
		t.Errorf("envInt(\"forty\") = %d, want 7", got)
	}
	t.Setenv("X_DUR", "90s")
	if got := envDur("X_DUR", time.Second); got != 90*time.Second {
		t.Errorf("envDur(\"90s\") = %v, want 1m30s", got)
	}
	t.Setenv("X_DUR", "soon")
	if got := envDur("X_DUR", time.Second); got != time.Second {
		t.Errorf("envDur(\"soon\") = %v, want 1s", got)
	}
}

package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coinvest-go/pkg/logger"
)

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	contents := "STORAGE=memory\nHTTP_PORT=9999\nKAFKA_BROKERS=k1:9092, k2:9092\nREDIS_LOCK_TTL=3s\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Chdir(nested)
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("STORAGE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_LOCK_TTL", "")
	os.Unsetenv("STORAGE")
	os.Unsetenv("KAFKA_BROKERS")
	os.Unsetenv("REDIS_LOCK_TTL")

	cfg, err := Load(logger.New(io.Discard, logger.LevelCritical, "text"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "7000" {
		t.Fatalf("expected env to win, got %s", cfg.HTTPPort)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("expected memory storage, got %s", cfg.Storage)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.LockTTL != 3*time.Second {
		t.Fatalf("expected lock ttl 3s, got %s", cfg.Redis.LockTTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis disabled without address")
	}
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE", "sqlite")

	if _, err := Load(logger.New(io.Discard, logger.LevelCritical, "text")); err == nil {
		t.Fatalf("expected error for unknown storage")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable", TimeZone: "UTC"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := cfg.GetDSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	cfg.DSN = "postgres://x"
	if got := cfg.GetDSN(); got != "postgres://x" {
		t.Fatalf("expected explicit DSN, got %q", got)
	}
}

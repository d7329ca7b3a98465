package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
database:
  host: db
  name: uyizlang
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listings.CacheTTLSeconds != 60 {
		t.Fatalf("cache ttl = %d", cfg.Listings.CacheTTLSeconds)
	}
	if cfg.Events.Enabled() || cfg.Events.Topic != "listing.created" {
		t.Fatalf("events = %+v", cfg.Events)
	}
	if cfg.CoreConfig().Telegram.AdminID != 42 {
		t.Fatalf("core config not inlined: %+v", cfg.CoreConfig().Telegram)
	}
	if cfg.Database.MaxConnections != 10 {
		t.Fatalf("pool = %d", cfg.Database.MaxConnections)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: file\n  admin_id: 1\n")
	t.Setenv("ADMIN_ID", "77")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/bot?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LISTINGS_CACHE_TTL_SECONDS", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.AdminID != 77 {
		t.Fatalf("admin = %d", cfg.Telegram.AdminID)
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers = %q", cfg.Events.Brokers)
	}
	if cfg.Listings.CacheTTLSeconds != 15 {
		t.Fatalf("cache ttl = %d", cfg.Listings.CacheTTLSeconds)
	}
	if cfg.Database.DSN() != "postgres://u:p@localhost:5432/bot?sslmode=disable" {
		t.Fatalf("dsn = %q", cfg.Database.DSN())
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: x\n  admin_id: 1\n")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error without database target")
	}
}

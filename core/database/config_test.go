package database

import "testing"

func TestDSNFromParts(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "uyizlang", SSLMode: "disable"}
	want := "postgres://bot:p%40ss@db:5432/uyizlang?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

func TestDSNPrefersURL(t *testing.T) {
	cfg := Config{URL: "postgres://u:p@remote:6543/app", Host: "ignored"}
	if got := cfg.DSN(); got != cfg.URL {
		t.Fatalf("DSN = %q, want URL", got)
	}
	host, port, name := cfg.Target()
	if host != "remote" || port != "6543" || name != "app" {
		t.Fatalf("Target = %s %s %s", host, port, name)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := Config{URL: "postgres://localhost/app", MaxIdleConnections: 50}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.MaxConnections != 10 || cfg.MaxIdleConnections != 10 {
		t.Fatalf("pool = %d/%d", cfg.MaxConnections, cfg.MaxIdleConnections)
	}
	if cfg.ConnMaxLifetimeSec != 3600 || cfg.MigrationsDir != "migrations" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestNormalizeRequiresTarget(t *testing.T) {
	var cfg Config
	if err := cfg.Normalize(); err == nil {
		t.Fatal("expected error without url or host")
	}
}

func TestAppliedBetween(t *testing.T) {
	files := []string{"000001_users.up.sql", "000002_listings.up.sql", "000003_indexes.up.sql"}
	if got := appliedBetween(files, 1, 3); len(got) != 2 || got[0] != "000002_listings.up.sql" {
		t.Fatalf("appliedBetween(1, 3) = %v", got)
	}
	if got := appliedBetween(files, 3, 3); len(got) != 0 {
		t.Fatalf("appliedBetween(3, 3) = %v, want none", got)
	}
	if got := appliedBetween(files, 0, 1); len(got) != 1 || got[0] != "000001_users.up.sql" {
		t.Fatalf("appliedBetween(0, 1) = %v", got)
	}
	if v := fileVersion("000002_listings.up.sql"); v != 2 {
		t.Fatalf("fileVersion = %d", v)
	}
}

func TestUpMigrationsListsRepoFiles(t *testing.T) {
	files := upMigrations("../../migrations")
	if len(files) != 2 || files[0] != "000001_create_users.up.sql" {
		t.Fatalf("upMigrations = %v", files)
	}
}

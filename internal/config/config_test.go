package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqldrift.yaml")

	content := `version: 1
mode: db
source: root:pw@prod-db~shop
target: root:pw@staging-db~shop
output: ./migrate.sql
concurrency:
  max_connections: 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Mode != "db" {
		t.Errorf("expected mode db, got %s", cfg.Mode)
	}
	if cfg.Source != "root:pw@prod-db~shop" {
		t.Errorf("unexpected source: %s", cfg.Source)
	}
	if cfg.Concurrency.MaxConnections != 4 {
		t.Errorf("expected max_connections 4, got %d", cfg.Concurrency.MaxConnections)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingDefaultConfig(t *testing.T) {
	// An absent file at the default path is not an error: flags alone
	// are a complete configuration.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != "file" {
		t.Errorf("expected default mode file, got %s", cfg.Mode)
	}
	if cfg.Concurrency.MaxConnections != 8 {
		t.Errorf("expected default max_connections 8, got %d", cfg.Concurrency.MaxConnections)
	}
	if cfg.Logging.RetentionDays != 30 {
		t.Errorf("expected default retention 30, got %d", cfg.Logging.RetentionDays)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqldrift.yaml")

	content := `version: 99
mode: file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid version")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqldrift.yaml")

	if err := os.WriteFile(path, []byte("version: [not closed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadResolvesSecrets(t *testing.T) {
	t.Setenv("SQLDRIFT_TEST_PW", "hunter2")

	dir := t.TempDir()
	path := filepath.Join(dir, "sqldrift.yaml")

	content := `version: 1
mode: db
source: "root:${ENV:SQLDRIFT_TEST_PW}@prod-db~shop"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "root:hunter2@prod-db~shop" {
		t.Errorf("secret not resolved in place: %s", cfg.Source)
	}
}

func TestResolveEnvSecret(t *testing.T) {
	t.Setenv("TEST_SECRET", "mysecret")
	val, err := ResolveValue("${ENV:TEST_SECRET}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "mysecret" {
		t.Errorf("expected mysecret, got %s", val)
	}
}

func TestResolveEnvSecretUnset(t *testing.T) {
	t.Setenv("TEST_SECRET_UNSET", "")
	_, err := ResolveValue("${ENV:TEST_SECRET_UNSET}")
	if err == nil {
		t.Fatal("expected error for unset environment variable")
	}
}

func TestResolvePlainValue(t *testing.T) {
	val, err := ResolveValue("plaintext")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "plaintext" {
		t.Errorf("expected plaintext, got %s", val)
	}
}

func TestMaxConnectionsCapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqldrift.yaml")

	content := `version: 1
concurrency:
  max_connections: 100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Concurrency.MaxConnections != 32 {
		t.Errorf("expected max_connections capped at 32, got %d", cfg.Concurrency.MaxConnections)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sqldrift.yaml")

	cfg := &Config{
		Version: CurrentVersion,
		Mode:    "db",
		Source:  "root:pw@db~shop",
		Output:  "./migrate.sql",
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Mode != "db" || loaded.Source != "root:pw@db~shop" || loaded.Output != "./migrate.sql" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: voicelytics
  password: secret
  name: voicelytics
  sslMode: require
minio:
  endpoint: minio.internal:9000
  accessKey: ak
  secretKey: sk
  bucketName: recordings
openai:
  apiKey: sk-test
  model: gpt-4o-mini
rateLimit:
  capacity: 60
  refillRate: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("wrong port: %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("wrong driver: %s", cfg.Database.Driver)
	}
	if cfg.RateLimit.Capacity != 60 || cfg.RateLimit.RefillRate != 10 {
		t.Fatalf("rate limit not read: %+v", cfg.RateLimit)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("driver should default to mysql, got %s", cfg.Database.Driver)
	}
	if cfg.RateLimit.Capacity != 30 || cfg.RateLimit.RefillRate != 5 {
		t.Fatalf("rate limit defaults not applied: %+v", cfg.RateLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestMySQLDSN(t *testing.T) {
	var cfg Config
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 3306
	cfg.Database.Name = "voicelytics"

	want := "app:pw@tcp(localhost:3306)/voicelytics?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestPostgresDSNDefaultSSLMode(t *testing.T) {
	var cfg Config
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.Name = "voicelytics"

	want := "host=localhost port=5432 user=app password=pw dbname=voicelytics sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}

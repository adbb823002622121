package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
site:
  name: "Clínica"
  base_url: "https://vet.example"
  descriptions:
    es: "Descripción"
page:
  resolve_timeout: 2s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Site.Name != "Clínica" || cfg.Site.Descriptions[models.LocaleES] != "Descripción" {
		t.Errorf("unexpected site config: %+v", cfg.Site)
	}
	if cfg.Page.ResolveTimeout != 2*time.Second {
		t.Errorf("resolve_timeout = %v", cfg.Page.ResolveTimeout)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
content:
  root: "./site/content"
database:
  driver: sqlite
  path: "./data/content.db"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "site", "content"); cfg.Content.Root != want {
		t.Errorf("content root = %s, want %s", cfg.Content.Root, want)
	}
	if want := filepath.Join(dir, "data", "content.db"); cfg.Database.Path != want {
		t.Errorf("database path = %s, want %s", cfg.Database.Path, want)
	}
	if cfg.Database.DSN() != cfg.Database.Path {
		t.Errorf("sqlite dsn = %s", cfg.Database.DSN())
	}
}

func TestLoad_environmentOverrides(t *testing.T) {
	t.Setenv("VETCONTENT_PORT", "9191")
	t.Setenv("VETCONTENT_DATABASE_DRIVER", "postgres")
	t.Setenv("VETCONTENT_DATABASE_URL", "postgres://vet@localhost/content")
	t.Setenv("VETCONTENT_BASE_URL", "https://staging.vet.example")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, environment should win", cfg.Server.Port)
	}
	if cfg.Database.Driver != storage.DriverPostgres || cfg.Database.DSN() != "postgres://vet@localhost/content" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Site.BaseURL != "https://staging.vet.example" {
		t.Errorf("base url = %s", cfg.Site.BaseURL)
	}
}

func TestLoad_noFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Content.Root != "content" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := map[string]string{
		"unknown driver":    "database:\n  driver: mysql\n",
		"postgres no url":   "database:\n  driver: postgres\n",
		"limits":            "search:\n  default_limit: 20\n  max_limit: 5\n",
		"fuzziness":         "search:\n  fuzziness: 3\n",
		"port out of range": "server:\n  port: 70000\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	_, err := Load(writeConfig(t, "database:\n  driver: mysql\n"))
	if !errors.Is(err, storage.ErrUnknownDriver) {
		t.Errorf("err = %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("default server: got %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 30*time.Second || cfg.Page.ResolveTimeout != 5*time.Second {
		t.Errorf("default timeouts: got %v, %v", cfg.Server.RequestTimeout, cfg.Page.ResolveTimeout)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 50 || cfg.Search.Fuzziness != 2 {
		t.Errorf("default search: got %+v", cfg.Search)
	}
	if len(cfg.Content.Extensions) != 2 || cfg.Content.Extensions[0] != ".md" || cfg.Content.CacheSize != 256 {
		t.Errorf("default content: got %+v", cfg.Content)
	}
	if cfg.Database.Driver != storage.DriverSQLite || !cfg.Database.Enabled() {
		t.Errorf("default database: got %+v", cfg.Database)
	}
	if len(cfg.Site.Descriptions) != 2 {
		t.Errorf("default descriptions: got %v", cfg.Site.Descriptions)
	}
}

func TestDatabaseConfig_None(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  driver: none\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Enabled() {
		t.Error("driver none should disable the database")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:   ServerConfig{Host: "localhost", Port: 9090},
		Database: DatabaseConfig{Driver: DriverNone},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Database.Enabled() {
		t.Errorf("loaded: got %+v", loaded)
	}
}

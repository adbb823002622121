// Package config provides configuration loading and structs for the vetcontent server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/storage"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug" env:"VETCONTENT_DEBUG"`
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Database DatabaseConfig `yaml:"database"`
	Page     PageConfig     `yaml:"page"`
	Search   SearchConfig   `yaml:"search"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host" env:"VETCONTENT_HOST"`
	Port           int           `yaml:"port" env:"VETCONTENT_PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SiteConfig describes the public site for canonical URLs, feeds and sitemaps.
type SiteConfig struct {
	Name         string                   `yaml:"name"`
	BaseURL      string                   `yaml:"base_url" env:"VETCONTENT_BASE_URL"`
	Descriptions map[models.Locale]string `yaml:"descriptions"`
	DefaultImage string                   `yaml:"default_image"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Root       string   `yaml:"root" env:"VETCONTENT_CONTENT_ROOT"`
	Extensions []string `yaml:"extensions"`
	// CacheSize bounds the loaded-unit cache; negative disables it.
	CacheSize int `yaml:"cache_size"`
}

// DatabaseConfig selects the database holding editor-managed content.
// Driver "none" runs with the content tree only.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"VETCONTENT_DATABASE_DRIVER"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url" env:"VETCONTENT_DATABASE_URL"`
}

// DriverNone disables the database source.
const DriverNone = "none"

// Enabled reports whether a database source is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Driver != DriverNone
}

// DSN returns the connection string for the configured driver.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == storage.DriverPostgres {
		return d.URL
	}
	return d.Path
}

// PageConfig holds route resolution settings.
type PageConfig struct {
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	Fuzziness    int `yaml:"fuzziness"`
}

// WatchConfig holds content tree watch settings.
type WatchConfig struct {
	Enabled   bool  `yaml:"enabled" env:"VETCONTENT_WATCH"`
	Recursive *bool `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies environment overrides and defaults,
// and expands paths. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir = filepath.Dir(path)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Content.Root = expandPath(cfg.Content.Root, configDir)
	if cfg.Database.Driver == storage.DriverSQLite {
		cfg.Database.Path = expandPath(cfg.Database.Path, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case DriverNone, storage.DriverSQLite:
	case storage.DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: %w", c.Database.Driver, storage.ErrUnknownDriver))
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		errs = append(errs, fmt.Errorf("search.max_limit %d below default_limit %d", c.Search.MaxLimit, c.Search.DefaultLimit))
	}
	if c.Search.Fuzziness < 0 || c.Search.Fuzziness > 2 {
		errs = append(errs, fmt.Errorf("search.fuzziness %d must be between 0 and 2", c.Search.Fuzziness))
	}
	return errors.Join(errs...)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

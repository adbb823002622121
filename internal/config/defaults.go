package config

import (
	"time"

	"github.com/hyperjump/vetcontent/internal/content"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/storage"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = "VetTech"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "http://localhost:8080"
	}
	if cfg.Site.Descriptions == nil {
		cfg.Site.Descriptions = map[models.Locale]string{
			models.LocaleES: "Tecnología y consultoría para clínicas veterinarias",
			models.LocaleEN: "Technology and consulting for veterinary clinics",
		}
	}
	if cfg.Content.Root == "" {
		cfg.Content.Root = "./content"
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = append([]string(nil), content.DefaultExtensions...)
	}
	if cfg.Content.CacheSize == 0 {
		cfg.Content.CacheSize = 256
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = storage.DriverSQLite
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/content.db"
	}
	if cfg.Page.ResolveTimeout == 0 {
		cfg.Page.ResolveTimeout = 5 * time.Second
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 2
	}
}

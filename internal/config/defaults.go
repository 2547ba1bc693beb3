package config

import "github.com/hyperjump/larder/internal/models"

// DefaultMaxFileSize bounds the files and pasted text an import reads.
const DefaultMaxFileSize = 50 << 20

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/larder/data/db/recipes.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/larder/data/indices/recipes.bleve"
	}
	if cfg.Import.DefaultCategory == "" {
		cfg.Import.DefaultCategory = "Uncategorized"
	}
	if cfg.Import.DefaultPolicy == "" {
		cfg.Import.DefaultPolicy = string(models.PolicySkip)
	}
	if cfg.Import.MaxFileSize == 0 {
		cfg.Import.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Import.Workers <= 0 {
		cfg.Import.Workers = 2
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".json", ".yaml", ".yml", ".xml", ".html", ".csv",
			".pdf", ".doc", ".docx", ".odt", ".rtf", ".xlsx", ".ods"}
	}
	if cfg.Watch.Policy == "" {
		cfg.Watch.Policy = cfg.Import.DefaultPolicy
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

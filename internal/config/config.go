// Package config provides configuration loading and structs for the larder server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/larder/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Import   ImportConfig   `yaml:"import"`
	Watch    WatchConfig    `yaml:"watch"`
	Backends BackendsConfig `yaml:"backends"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the recipe database and search index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// ImportConfig holds pipeline settings.
type ImportConfig struct {
	DefaultCategory string `yaml:"default_category"`
	DefaultPolicy   string `yaml:"default_policy"`
	MaxFileSize     int64  `yaml:"max_file_size"`
	Workers         int    `yaml:"workers"`
	// VocabularyPath optionally points at a YAML file of extra field aliases.
	VocabularyPath string `yaml:"vocabulary_path"`
}

// Policy returns the parsed default duplicate policy.
func (c *ImportConfig) Policy() (models.DuplicatePolicy, error) {
	return models.ParseDuplicatePolicy(c.DefaultPolicy)
}

// WatchConfig holds inbox directory settings. Files dropped into a watched
// directory are imported with Policy.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Policy      string   `yaml:"policy"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// BackendsConfig lists extraction backends excluded from every chain.
type BackendsConfig struct {
	Disabled []string `yaml:"disabled"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed, or names an unknown policy.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	if cfg.Import.VocabularyPath != "" {
		cfg.Import.VocabularyPath = expandPath(cfg.Import.VocabularyPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate checks settings that defaults cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Import.Policy(); err != nil {
		return fmt.Errorf("import.default_policy: %w", err)
	}
	if _, err := models.ParseDuplicatePolicy(c.Watch.Policy); err != nil {
		return fmt.Errorf("watch.policy: %w", err)
	}
	if c.Import.MaxFileSize < 0 {
		return fmt.Errorf("import.max_file_size must not be negative")
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
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
	if filepath.IsAbs(path) {
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

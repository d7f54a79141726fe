// Package config loads and validates the dropsort configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dropsort/internal/category"
)

// WatchSettings control the watch daemon
type WatchSettings struct {
	Directory             string   `yaml:"directory"`               // Directory to watch; empty means <home>/Downloads
	DelaySeconds          float64  `yaml:"delay_seconds"`           // Debounce and settle delay
	StabilityProbeSeconds float64  `yaml:"stability_probe_seconds"` // Gap between the two size reads
	TemporaryExtensions   []string `yaml:"temporary_extensions"`    // Extensions of in-progress downloads
}

// Settings control general behavior
type Settings struct {
	DryRun       bool   `yaml:"dry_run"`       // If true, simulate moves
	IgnoreHidden bool   `yaml:"ignore_hidden"` // Skip dotfiles when scanning
	Journal      bool   `yaml:"journal"`       // Record moves in the journal
	JournalPath  string `yaml:"journal_path"`  // Journal location; empty means <config dir>/journal.db
}

// Config is the application configuration structure
type Config struct {
	Watch      WatchSettings       `yaml:"watch"`
	Settings   Settings            `yaml:"settings"`
	Categories map[string][]string `yaml:"categories"` // Category name to extension list
}

// New returns the default configuration
func New() *Config {
	return defaultConfig()
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Watch.Directory = ""
	cfg.Watch.DelaySeconds = 5
	cfg.Watch.StabilityProbeSeconds = 1
	cfg.Watch.TemporaryExtensions = []string{".crdownload", ".part", ".tmp"}

	cfg.Settings.DryRun = false
	cfg.Settings.IgnoreHidden = true
	cfg.Settings.Journal = true
	cfg.Settings.JournalPath = ""

	cfg.Categories = category.BuiltinCategories()

	return cfg
}

// LoadConfig loads configuration from the default location
// (~/.config/dropsort/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	// Try to read the config file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal over the defaults: fields the file does not mention keep
	// their default values, including booleans that default to true.
	// Category entries override the built-in table per category; categories
	// the file does not mention keep their stock extension lists.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Watch.DelaySeconds <= 0 {
		return fmt.Errorf("delay_seconds must be > 0")
	}
	if c.Watch.StabilityProbeSeconds <= 0 {
		return fmt.Errorf("stability_probe_seconds must be > 0")
	}

	for i, ext := range c.Watch.TemporaryExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("temporary extension %d: %q must start with a dot", i, ext)
		}
	}

	for name, exts := range c.Categories {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("category name cannot be empty")
		}
		for _, ext := range exts {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("category %s: extension cannot be empty", name)
			}
		}
	}

	return nil
}

// Delay returns the debounce delay as a duration
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Watch.DelaySeconds * float64(time.Second))
}

// StabilityProbe returns the stability probe interval as a duration
func (c *Config) StabilityProbe() time.Duration {
	return time.Duration(c.Watch.StabilityProbeSeconds * float64(time.Second))
}

// Table builds the immutable category table from the configured mapping
func (c *Config) Table() *category.Table {
	return category.NewTable(c.Categories)
}

// WatchDir resolves the directory to watch, defaulting to the user's
// Downloads folder when unset.
func (c *Config) WatchDir() (string, error) {
	if c.Watch.Directory != "" {
		return c.Watch.Directory, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

// DefaultConfigPath returns ~/.config/dropsort/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dropsort", "config.yaml"), nil
}

// JournalPath resolves the journal location, defaulting to a journal.db
// next to the config file.
func (c *Config) JournalPath() (string, error) {
	if c.Settings.JournalPath != "" {
		return c.Settings.JournalPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dropsort", "journal.db"), nil
}

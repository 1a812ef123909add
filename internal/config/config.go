package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"tagshelf/internal/errors"
)

// Config represents the application configuration structure.
// It defines how the sidecar is launched, what the catalog indexes,
// watch behaviour and logging.
type Config struct {
	Sidecar struct {
		Binary  string `yaml:"binary"`  // exiftool executable name or path
		Timeout int    `yaml:"timeout"` // Seconds to wait for a response, 0 waits forever
	} `yaml:"sidecar"`
	Catalog struct {
		Extensions []string `yaml:"extensions"`  // Image extensions requested from the bulk read
		LabelWidth int      `yaml:"label_width"` // Maximum display label width for folder paths
		Exclude    []string `yaml:"exclude"`     // Glob patterns for directory names skipped during discovery
		Recursive  bool     `yaml:"recursive"`   // Discover nested folders under opened directories
	} `yaml:"catalog"`
	Watch struct {
		DebounceMS int `yaml:"debounce_ms"` // Quiet period before a changed folder is reloaded
	} `yaml:"watch"`
	Log struct {
		Debug bool   `yaml:"debug"` // Enable debug output
		JSON  bool   `yaml:"json"`  // Emit JSON lines
		File  string `yaml:"file"`  // Also append to this file
	} `yaml:"log"`
}

// LoadConfig loads configuration from the default location
// (~/.config/tagshelf/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// DefaultPath returns the default configuration file location
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tagshelf", "config.yaml"), nil
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	tempCfg.Catalog.Recursive = cfg.Catalog.Recursive
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Sidecar.Binary != "" {
		cfg.Sidecar.Binary = tempCfg.Sidecar.Binary
	}
	cfg.Sidecar.Timeout = tempCfg.Sidecar.Timeout

	if len(tempCfg.Catalog.Extensions) > 0 {
		cfg.Catalog.Extensions = normalizeExtensions(tempCfg.Catalog.Extensions)
	}
	if tempCfg.Catalog.LabelWidth != 0 {
		cfg.Catalog.LabelWidth = tempCfg.Catalog.LabelWidth
	}
	if tempCfg.Catalog.Exclude != nil {
		cfg.Catalog.Exclude = tempCfg.Catalog.Exclude
	}
	cfg.Catalog.Recursive = tempCfg.Catalog.Recursive

	if tempCfg.Watch.DebounceMS != 0 {
		cfg.Watch.DebounceMS = tempCfg.Watch.DebounceMS
	}

	cfg.Log = tempCfg.Log

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Sidecar.Binary = "exiftool"
	cfg.Sidecar.Timeout = 0 // Block until the sidecar answers

	cfg.Catalog.Extensions = []string{"jpg", "jpeg", "png", "tga", "tiff", "webp", "gif"}
	cfg.Catalog.LabelWidth = 20
	cfg.Catalog.Exclude = []string{".*", "@eaDir"}
	cfg.Catalog.Recursive = true

	cfg.Watch.DebounceMS = 500

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
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
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	if strings.TrimSpace(c.Sidecar.Binary) == "" {
		return errors.NewConfigError("sidecar binary is required", "sidecar.binary", errors.InvalidConfig, nil)
	}
	if c.Sidecar.Timeout < 0 {
		return errors.NewConfigError("timeout must be >= 0 seconds", "sidecar.timeout", errors.InvalidConfig, nil)
	}
	if len(c.Catalog.Extensions) == 0 {
		return errors.NewConfigError("at least one extension is required", "catalog.extensions", errors.InvalidConfig, nil)
	}
	for i, ext := range c.Catalog.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return errors.NewConfigError(fmt.Sprintf("extension %d is empty", i), "catalog.extensions", errors.InvalidConfig, nil)
		}
	}
	// "..." plus at least one character of the path
	if c.Catalog.LabelWidth < 4 {
		return errors.NewConfigError("label width must be >= 4", "catalog.label_width", errors.InvalidConfig, nil)
	}
	for _, pattern := range c.Catalog.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError("invalid exclude pattern "+pattern, "catalog.exclude", errors.InvalidConfig, err)
		}
	}
	if c.Watch.DebounceMS < 0 {
		return errors.NewConfigError("debounce must be >= 0", "watch.debounce_ms", errors.InvalidConfig, nil)
	}

	return nil
}

// SidecarTimeout returns the configured response timeout
func (c *Config) SidecarTimeout() time.Duration {
	return time.Duration(c.Sidecar.Timeout) * time.Second
}

// Debounce returns the watch debounce interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Sidecar.Binary = "exiftool-test"
	cfg.Catalog.Exclude = []string{".*"}
	cfg.Watch.DebounceMS = 50
	return cfg
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

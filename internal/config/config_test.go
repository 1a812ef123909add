package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tagshelf/internal/config"
	"tagshelf/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
sidecar:
  binary: /opt/exiftool/exiftool
  timeout: 30
catalog:
  extensions: [".JPG", "png", "png"]
  label_width: 32
  exclude: ["thumbs", "*.bak"]
  recursive: false
watch:
  debounce_ms: 250
log:
  debug: true
  json: true
`
	invalidSyntaxYAML = `
catalog:
  extensions: [jpg
  label_width: wide
`
	invalidWidthYAML = `
catalog:
  label_width: 2
`
	invalidGlobYAML = `
catalog:
  exclude: ["[unterminated"]
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid config", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, "/opt/exiftool/exiftool", cfg.Sidecar.Binary)
		assert.Equal(t, 30*time.Second, cfg.SidecarTimeout())
		assert.Equal(t, []string{"jpg", "png"}, cfg.Catalog.Extensions)
		assert.Equal(t, 32, cfg.Catalog.LabelWidth)
		assert.Equal(t, []string{"thumbs", "*.bak"}, cfg.Catalog.Exclude)
		assert.False(t, cfg.Catalog.Recursive)
		assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
		assert.True(t, cfg.Log.Debug)
		assert.True(t, cfg.Log.JSON)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
		require.NoError(t, err, "Loading non-existent file should return default config")

		defaults := config.New()
		assert.Equal(t, defaults, cfg)
		assert.Equal(t, "exiftool", cfg.Sidecar.Binary)
		assert.Equal(t, time.Duration(0), cfg.SidecarTimeout())
		assert.Equal(t, 20, cfg.Catalog.LabelWidth)
		assert.True(t, cfg.Catalog.Recursive)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, "log:\n  file: /tmp/tagshelf.log\n"))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/tagshelf.log", cfg.Log.File)
		assert.Equal(t, config.New().Catalog.Extensions, cfg.Catalog.Extensions)
		assert.True(t, cfg.Catalog.Recursive)
	})

	t.Run("invalid YAML syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("invalid label width", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidWidthYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.True(t, errors.IsInvalidConfig(err))
	})

	t.Run("invalid exclude glob", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidGlobYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog.exclude")
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *config.Config) {}},
		{name: "empty binary", mutate: func(c *config.Config) { c.Sidecar.Binary = " " }, wantErr: true},
		{name: "negative timeout", mutate: func(c *config.Config) { c.Sidecar.Timeout = -1 }, wantErr: true},
		{name: "no extensions", mutate: func(c *config.Config) { c.Catalog.Extensions = nil }, wantErr: true},
		{name: "blank extension", mutate: func(c *config.Config) { c.Catalog.Extensions = []string{"."} }, wantErr: true},
		{name: "negative debounce", mutate: func(c *config.Config) { c.Watch.DebounceMS = -5 }, wantErr: true},
		{name: "no excludes", mutate: func(c *config.Config) { c.Catalog.Exclude = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.New()
	cfg.Catalog.LabelWidth = 48

	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 48, loaded.Catalog.LabelWidth)
	assert.Equal(t, cfg.Catalog.Extensions, loaded.Catalog.Extensions)
}

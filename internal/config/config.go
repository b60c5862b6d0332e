// Package config loads the typesetter's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/literatipub/typeset/internal/assets"
	"github.com/literatipub/typeset/internal/fileutil"
	"github.com/literatipub/typeset/internal/layout"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength    = 255  // host:port
	MaxPathLength    = 4096 // PATH_MAX on Linux
	MaxURLLength     = 2048 // Browser limit
	MaxFontKeyLength = 64   // Catalog keys are short words
	MaxDurationLen   = 32   // "90s", "1h30m"
)

// Numeric ranges.
const (
	MaxRateLimit   = 10000 // uploads per minute per client
	MinUploadMB    = 1
	MaxUploadMB    = 512
	MaxWorkers     = 64
	maxConfigBytes = 1 << 20 // 1MB
)

// configDirName is the directory under the user config dir searched for
// named configs.
const configDirName = "literati-typeset"

// Config holds all configuration for the typesetter service and CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Render   RenderConfig   `yaml:"render"`
	Storage  StorageConfig  `yaml:"storage"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr                string `yaml:"addr"`                // Listen address (default ":8080")
	RateLimit           int    `yaml:"rateLimit"`           // Job submissions per minute per client, 0 = unlimited
	MaxUploadMB         int    `yaml:"maxUploadMB"`         // Manuscript upload limit (default 20)
	AllowPrivateSources bool   `yaml:"allowPrivateSources"` // Let sourceUrl reach loopback and private networks
}

// RenderConfig defines headless browser options.
type RenderConfig struct {
	Timeout    string `yaml:"timeout"`    // Go duration, e.g. "60s"
	Workers    int    `yaml:"workers"`    // Concurrent browsers, 0 = auto
	BrowserBin string `yaml:"browserBin"` // Empty = managed Chromium
	NoSandbox  bool   `yaml:"noSandbox"`  // Required in most containers
}

// StorageConfig defines where artifacts are published.
type StorageConfig struct {
	Dir     string `yaml:"dir"`     // Artifact directory
	BaseURL string `yaml:"baseURL"` // Public prefix for artifact URLs
}

// JobsConfig defines job bookkeeping.
type JobsConfig struct {
	Retention string `yaml:"retention"` // Go duration a finished job stays queryable
}

// DefaultsConfig defines request defaults.
type DefaultsConfig struct {
	Format string `yaml:"format"` // "print" or "ebook"
	Font   string `yaml:"font"`   // Catalog key, unknown keys fall back
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`    // House style name or CSS file path
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			RateLimit:   30,
			MaxUploadMB: 20,
		},
		Render: RenderConfig{
			Timeout: "60s",
		},
		Storage: StorageConfig{
			Dir:     "artifacts",
			BaseURL: "/files",
		},
		Jobs: JobsConfig{
			Retention: "24h",
		},
		Defaults: DefaultsConfig{
			Format: "print",
			Font:   layout.DefaultFontKey,
		},
	}
}

// Validate checks lengths, ranges, durations and names.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"render.timeout", c.Render.Timeout, MaxDurationLen},
		{"render.browserBin", c.Render.BrowserBin, MaxPathLength},
		{"storage.dir", c.Storage.Dir, MaxPathLength},
		{"storage.baseURL", c.Storage.BaseURL, MaxURLLength},
		{"jobs.retention", c.Jobs.Retention, MaxDurationLen},
		{"defaults.font", c.Defaults.Font, MaxFontKeyLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Server.RateLimit < 0 || c.Server.RateLimit > MaxRateLimit {
		return fmt.Errorf("%w: server.rateLimit must be between 0 and %d, got %d", ErrInvalidValue, MaxRateLimit, c.Server.RateLimit)
	}
	if c.Server.MaxUploadMB != 0 && (c.Server.MaxUploadMB < MinUploadMB || c.Server.MaxUploadMB > MaxUploadMB) {
		return fmt.Errorf("%w: server.maxUploadMB must be between %d and %d, got %d", ErrInvalidValue, MinUploadMB, MaxUploadMB, c.Server.MaxUploadMB)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}

	if _, err := parsePositiveDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if _, err := parsePositiveDuration("jobs.retention", c.Jobs.Retention); err != nil {
		return err
	}

	if c.Defaults.Format != "" {
		if _, err := layout.ParseFormat(c.Defaults.Format); err != nil {
			return fmt.Errorf("%w: defaults.format: %v", ErrInvalidValue, err)
		}
	}

	if c.Assets.Style != "" && !fileutil.IsFilePath(c.Assets.Style) {
		if err := assets.ValidateAssetName(c.Assets.Style); err != nil {
			return fmt.Errorf("%w: assets.style: %v", ErrInvalidValue, err)
		}
	}

	return nil
}

// RenderTimeout returns render.timeout, or zero when unset.
// Only meaningful after Validate.
func (c *Config) RenderTimeout() time.Duration {
	d, _ := parsePositiveDuration("render.timeout", c.Render.Timeout)
	return d
}

// JobRetention returns jobs.retention, or zero when unset.
// Only meaningful after Validate.
func (c *Config) JobRetention() time.Duration {
	d, _ := parsePositiveDuration("jobs.retention", c.Jobs.Retention)
	return d
}

// DefaultFormat returns defaults.format, falling back to print.
func (c *Config) DefaultFormat() layout.Format {
	f, err := layout.ParseFormat(c.Defaults.Format)
	if err != nil {
		return layout.FormatPrint
	}
	return f
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	mb := c.Server.MaxUploadMB
	if mb == 0 {
		mb = DefaultConfig().Server.MaxUploadMB
	}
	return int64(mb) << 20
}

// parsePositiveDuration parses an optional duration field.
func parsePositiveDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// unmarshalStrict decodes YAML, rejecting unknown fields and oversized input.
func unmarshalStrict(data []byte, v any) error {
	if len(data) > maxConfigBytes {
		return fmt.Errorf("input exceeds maximum size: %d bytes (max %d)", len(data), maxConfigBytes)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

// SearchPaths returns where a config name is looked up, in order.
// Tries locations in order: current directory, ~/.config/literati-typeset/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, path := range tried {
		if fileutil.FileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

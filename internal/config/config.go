// Package config loads and validates hrefrewrite configuration files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// Config is the hrefrewrite configuration file.
type Config struct {
	Version    string          `yaml:"version"`
	Source     string          `yaml:"source"`
	Output     OutputConfig    `yaml:"output"`
	Mode       Mode            `yaml:"mode"`
	Collisions CollisionPolicy `yaml:"collisions"`
	Documents  DocumentsConfig `yaml:"documents"`
	Render     RenderConfig    `yaml:"render"`
	Ignore     []string        `yaml:"ignore,omitempty"`
	Watch      WatchConfig     `yaml:"watch"`
	Metrics    MetricsConfig   `yaml:"metrics"`
}

// OutputConfig controls where rewritten files are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // remove the output directory before a build
}

// DocumentsConfig decides which files are web documents and which are index documents.
type DocumentsConfig struct {
	Extensions []string `yaml:"extensions"`
	IndexNames []string `yaml:"index_names"`
}

// RenderConfig controls content rendering.
type RenderConfig struct {
	// Markdown renders Markdown documents to HTML. When false, Markdown sources are
	// written to their new path with only their link destinations rewritten.
	Markdown *bool `yaml:"markdown,omitempty"`
	// Layout is an optional html/template file wrapping rendered Markdown.
	Layout string `yaml:"layout,omitempty"`
}

// MarkdownEnabled reports whether Markdown is rendered to HTML.
func (r RenderConfig) MarkdownEnabled() bool {
	return r.Markdown == nil || *r.Markdown
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DebounceDuration parses Debounce. Validation guarantees it parses after Load.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// Load reads, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration bytes after ${VAR} expansion and prepares them like Load.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)).Build()
	}

	for _, w := range Normalize(&cfg) {
		slog.Warn("Config normalization", slog.String("warning", w))
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").Build()
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Source = "./docs"
	example.Output.Directory = "./site"
	example.Output.Clean = true
	example.Ignore = []string{"node_modules", "*.tmp"}
	example.Metrics.Listen = "${HREFREWRITE_METRICS_LISTEN}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

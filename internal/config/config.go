// Package config loads unpack settings: embedded defaults, an optional
// YAML or TOML file on top, then environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/unpack/internal/flatten"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

//go:embed demo.json
var embeddedDemo []byte

// Environment variables that override file settings.
const (
	EnvAddr      = "UNPACK_ADDR"
	EnvRootToken = "UNPACK_ROOT_TOKEN"
	EnvTheme     = "UNPACK_THEME"
	EnvDemoPath  = "UNPACK_DEMO"
)

// Config is the merged configuration.
type Config struct {
	Server ServerConfig      `yaml:"server" toml:"server"`
	Render RenderConfig      `yaml:"render" toml:"render"`
	Theme   formatter.Palette `yaml:"theme" toml:"theme"`
	Demo    DemoConfig        `yaml:"demo" toml:"demo"`
	Flatten FlattenConfig     `yaml:"flatten" toml:"flatten"`
}

type ServerConfig struct {
	Addr                   string `yaml:"addr" toml:"addr"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
}

// ShutdownTimeout returns the graceful shutdown budget.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

type RenderConfig struct {
	RootToken      string `yaml:"root_token" toml:"root_token"`
	HighlightClass string `yaml:"highlight_class" toml:"highlight_class"`
}

// DemoConfig points at the payload shown before any input is given. An
// empty path uses the built-in payload.
type DemoConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// FlattenConfig holds the defaults of the flatten command.
type FlattenConfig struct {
	Input   string `yaml:"input" toml:"input"`
	Output  string `yaml:"output" toml:"output"`
	MaxRows int    `yaml:"max_rows" toml:"max_rows"`
}

// Default returns the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Load merges the file at path (if any) over the defaults and applies the
// environment. The format follows the extension: .toml is TOML, anything
// else YAML.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode TOML config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML config %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv loads a .env file from the working directory when present, then
// applies UNPACK_* overrides.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRootToken)); v != "" {
		c.Render.RootToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDemoPath)); v != "" {
		c.Demo.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		if err := c.applyThemeOverrides(v); err != nil {
			return fmt.Errorf("%s: %w", EnvTheme, err)
		}
	}
	return nil
}

// applyThemeOverrides reads "name=color" pairs separated by commas, e.g.
// "key=#ff0000,string=120".
func (c *Config) applyThemeOverrides(pairs string) error {
	slots := map[string]*string{
		"key":       &c.Theme.Key,
		"renamed":   &c.Theme.Renamed,
		"punct":     &c.Theme.Punct,
		"string":    &c.Theme.String,
		"number":    &c.Theme.Number,
		"boolean":   &c.Theme.Boolean,
		"null":      &c.Theme.Null,
		"highlight": &c.Theme.Highlight,
		"error":     &c.Theme.Error,
	}
	for _, pair := range strings.Split(pairs, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, color, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(color) == "" {
			return fmt.Errorf("expected name=color, got %q", pair)
		}
		slot, ok := slots[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown theme color %q", name)
		}
		*slot = strings.TrimSpace(color)
	}
	return nil
}

// Validate rejects settings the renderers cannot use.
func (c *Config) Validate() error {
	if c.Render.RootToken == "" {
		c.Render.RootToken = pathid.DefaultRoot
	}
	if strings.ContainsAny(c.Render.RootToken, " \t\n.#") {
		return fmt.Errorf("render.root_token %q must be usable as a CSS class", c.Render.RootToken)
	}
	if c.Render.HighlightClass == "" {
		c.Render.HighlightClass = "highlighted"
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Flatten.Input == "" {
		c.Flatten.Input = flatten.InputNDJSON
	}
	if c.Flatten.Input != flatten.InputNDJSON && c.Flatten.Input != flatten.InputJSON {
		return fmt.Errorf("flatten.input %q must be %s or %s", c.Flatten.Input, flatten.InputNDJSON, flatten.InputJSON)
	}
	if c.Flatten.Output == "" {
		c.Flatten.Output = flatten.OutputNDJSON
	}
	if !slices.Contains(flatten.Outputs, c.Flatten.Output) {
		return fmt.Errorf("flatten.output %q must be one of %s", c.Flatten.Output, strings.Join(flatten.Outputs, ", "))
	}
	if c.Flatten.MaxRows < 0 {
		return fmt.Errorf("flatten.max_rows must not be negative")
	}
	return nil
}

// DemoPayload returns the JSON text rendered on startup.
func (c Config) DemoPayload() ([]byte, error) {
	if c.Demo.Path == "" {
		return append([]byte(nil), embeddedDemo...), nil
	}
	data, err := os.ReadFile(c.Demo.Path)
	if err != nil {
		return nil, fmt.Errorf("read demo payload %s: %w", c.Demo.Path, err)
	}
	return data, nil
}

// ResolvePath returns explicit if set, otherwise
// $XDG_CONFIG_HOME/unpack/config.yaml or ~/.config/unpack/config.yaml when
// that file exists, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, "unpack", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "unpack", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

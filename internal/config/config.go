// Package config loads the process configuration shared by the kctheme
// commands: a YAML file, an optional .env file and KCTHEME_* variables, in
// that order of precedence (later wins).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "KCTHEME_"

// Config holds the settings of the preview server and the render commands.
type Config struct {
	Addr          string        `yaml:"addr"`
	Origin        string        `yaml:"origin"`
	Realm         string        `yaml:"realm"`
	MocksDir      string        `yaml:"mocksDir"`
	Templates     string        `yaml:"templates"`
	Locale        string        `yaml:"locale"`
	Renderer      string        `yaml:"renderer"`
	Theme         Theme         `yaml:"theme"`
	Presets       []string      `yaml:"presets"`
	LiveReload    bool          `yaml:"liveReload"`
	Watch         []string      `yaml:"watch"`
	LogLevel      string        `yaml:"logLevel"`
	ShutdownGrace time.Duration `yaml:"shutdownGrace"`
}

// Theme selects the manifest and variant used for rendering.
type Theme struct {
	Name      string   `yaml:"name"`
	Variant   string   `yaml:"variant"`
	Manifests []string `yaml:"manifests"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:          ":8484",
		Origin:        "http://localhost:8080",
		Realm:         "myrealm",
		Locale:        "en",
		Renderer:      "vanilla",
		LiveReload:    true,
		LogLevel:      "info",
		ShutdownGrace: 5 * time.Second,
	}
}

// Load builds the configuration. path may be empty; a missing envFile is
// ignored.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses YAML onto cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	strs := map[string]*string{
		"ADDR":          &c.Addr,
		"ORIGIN":        &c.Origin,
		"REALM":         &c.Realm,
		"MOCKS_DIR":     &c.MocksDir,
		"TEMPLATES":     &c.Templates,
		"LOCALE":        &c.Locale,
		"RENDERER":      &c.Renderer,
		"THEME":         &c.Theme.Name,
		"THEME_VARIANT": &c.Theme.Variant,
		"LOG_LEVEL":     &c.LogLevel,
	}
	for key, target := range strs {
		if value, ok := get(key); ok && value != "" {
			*target = value
		}
	}

	lists := map[string]*[]string{
		"THEME_MANIFESTS": &c.Theme.Manifests,
		"PRESETS":         &c.Presets,
		"WATCH":           &c.Watch,
	}
	for key, target := range lists {
		if value, ok := get(key); ok && value != "" {
			*target = splitList(value)
		}
	}

	if value, ok := get("LIVE_RELOAD"); ok && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %sLIVE_RELOAD: %w", EnvPrefix, err)
		}
		c.LiveReload = enabled
	}
	if value, ok := get("SHUTDOWN_GRACE"); ok && value != "" {
		grace, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %sSHUTDOWN_GRACE: %w", EnvPrefix, err)
		}
		c.ShutdownGrace = grace
	}
	return nil
}

// Validate checks the values that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is required")
	}
	if c.ShutdownGrace < 0 {
		return errors.New("config: shutdownGrace must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package config handles XDG configuration directory, file paths and
// user settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"tasktree/internal/tree"
)

const (
	// AppName is the application directory name.
	AppName = "tasktree"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SettingsFile is the optional user settings filename.
	SettingsFile = "config.yaml"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are read from config.yaml.
	Settings Settings
}

// Settings are the user-tunable options stored in config.yaml.
type Settings struct {
	// FlushInterval is how often pending changes are written to the
	// backend. Default: 1s.
	FlushInterval time.Duration `yaml:"flush_interval"`

	// FlushTimeout bounds one write of pending changes. Zero means no
	// bound. Default: 30s.
	FlushTimeout time.Duration `yaml:"flush_timeout"`

	// Renumber decides when sibling order indexes are rewritten.
	// Values: always, on-delete, never. Default: always.
	Renumber tree.RenumberPolicy `yaml:"renumber"`

	// DefaultList is the list used when --list is not given.
	// Empty means the account's default list.
	DefaultList string `yaml:"default_list"`

	// LogLevel is the minimum level logged to stderr. Default: warn.
	LogLevel slog.Level `yaml:"log_level"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		FlushInterval: time.Second,
		FlushTimeout:  30 * time.Second,
		Renumber:      tree.RenumberAlways,
		LogLevel:      slog.LevelWarn,
	}
}

// New creates a new Config with the default or specified config directory
// and loads config.yaml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/tasktree or $HOME/.config/tasktree.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	settings, err := LoadSettings(filepath.Join(dir, SettingsFile))
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, Settings: settings}, nil
}

// LoadSettings reads settings from path. A missing file yields the
// defaults; fields absent from the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading %s: %w", path, err)
	}
	settings, err := ParseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

// ParseSettings decodes config.yaml content. Unknown keys are rejected.
func ParseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	if settings.FlushInterval < 0 {
		return Settings{}, fmt.Errorf("flush_interval must not be negative: %s", settings.FlushInterval)
	}
	if settings.FlushTimeout < 0 {
		return Settings{}, fmt.Errorf("flush_timeout must not be negative: %s", settings.FlushTimeout)
	}
	return settings, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// LogLevel returns the effective log level: debug when Debug is set,
// otherwise the configured level.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return c.Settings.LogLevel
}

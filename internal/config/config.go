package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	ExcludedLibraries []string          `mapstructure:"excluded-libraries"`
	XBMCProviders     map[string]string `mapstructure:"xbmc-providers"` // "movies"/"shows" -> provider
	Cache             CacheConfig       `mapstructure:"cache"`
	Logging           LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds media server configuration
type ServerConfig struct {
	URL      string `mapstructure:"url"`       // Server URL
	Token    string `mapstructure:"token"`     // X-Plex-Token
	ClientID string `mapstructure:"client_id"` // X-Plex-Client-Identifier, generated on first run
}

// CacheConfig holds the persistent item index location
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // empty = memory only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"` // empty = stderr
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		ExcludedLibraries: []string{},
		XBMCProviders: map[string]string{
			"movies": "imdb",
			"shows":  "tvdb",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:   defaultLogPath(),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "plexsync", "plexsync.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "plexsync", "plexsync.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "plexsync")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "plexsync")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "plexsync", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "plexsync", "cache")
	}
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()

	// Defaults double as the key list AutomaticEnv can override
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.token", cfg.Server.Token)
	v.SetDefault("server.client_id", cfg.Server.ClientID)
	v.SetDefault("excluded-libraries", cfg.ExcludedLibraries)
	v.SetDefault("xbmc-providers", cfg.XBMCProviders)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetEnvPrefix("PLEXSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path, or from config.yaml in the default
// locations when path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	v := newViper(cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Server.ClientID == "" {
		cfg.Server.ClientID = NewClientID()
	}

	return cfg, nil
}

// Save writes cfg as YAML to path, or to the default config location when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(defaultConfigPath(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.token", cfg.Server.Token)
	v.Set("server.client_id", cfg.Server.ClientID)
	v.Set("excluded-libraries", cfg.ExcludedLibraries)
	v.Set("xbmc-providers", cfg.XBMCProviders)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// NewClientID returns a random X-Plex-Client-Identifier
func NewClientID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Validate checks that the server can be reached with the configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if c.Server.Token == "" {
		return errors.New("server.token is required")
	}
	return nil
}

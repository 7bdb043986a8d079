package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Store    StoreConfig
	Policy   PolicyConfig
	Secrets  SecretsConfig
	Log      LogConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// StoreConfig selects the draft store backend: "sqlite" or "memory".
type StoreConfig struct {
	Backend string
}

// PolicyConfig names the workspace policy the NetSuite wizard edits.
type PolicyConfig struct {
	ID string
}

// SecretsConfig holds the secret store directory; empty means the user
// config dir.
type SecretsConfig struct {
	Dir string
}

// LogConfig holds the log file used while the TUI runs. Empty discards.
type LogConfig struct {
	Path  string
	Debug bool
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ListWidth int `mapstructure:"list_width"`
}

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Load reads configuration from file and env. Env var overrides use prefix LINKWISE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "linkwise", "linkwise.db"))
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("policy.id", "default")
	v.SetDefault("secrets.dir", "")
	v.SetDefault("log.path", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("ui.list_width", 60)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LINKWISE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "linkwise"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LINKWISE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot start with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if strings.TrimSpace(c.Policy.ID) == "" {
		return fmt.Errorf("policy.id: required")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("LINKWISE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "linkwise", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("policy.id", cfg.Policy.ID)
	v.Set("secrets.dir", cfg.Secrets.Dir)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("ui.list_width", cfg.UI.ListWidth)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

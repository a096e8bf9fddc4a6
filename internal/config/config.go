// Package config handles loading cadence.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/cadence/internal/paths"
)

// ProjectFile is the name of the per-directory config file.
const ProjectFile = "cadence.toml"

// Storage backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Defaults applied after merging.
const (
	DefaultNamespace  = "cadence"
	DefaultKafkaTopic = "cadence-events"
	DefaultServerAddr = "127.0.0.1:7171"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config represents the cadence.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Events  Events  `toml:"events"`
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`
}

// Storage selects and configures the snapshot backend.
type Storage struct {
	// Backend is one of file, sqlite, redis or postgres.
	Backend string `toml:"backend"`

	// Dir holds file snapshots and the default sqlite database.
	Dir string `toml:"dir"`

	SQLitePath  string `toml:"sqlite-path"`
	RedisURL    string `toml:"redis-url"`
	PostgresURL string `toml:"postgres-url"`

	// Namespace prefixes snapshot keys in shared backends.
	Namespace string `toml:"namespace"`
}

// Events configures mutation event publishing.
type Events struct {
	// KafkaBrokers is a comma-separated broker list. Empty disables publishing.
	KafkaBrokers string `toml:"kafka-brokers"`
	KafkaTopic   string `toml:"kafka-topic"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Overrides are command-line settings that win over both config files.
// Empty fields are ignored.
type Overrides struct {
	StateDir string
	Backend  string
	LogLevel string
}

// Load loads configuration from dir and the global config file, applying
// defaults for anything left unset. Missing files are not an error.
func Load(dir string) (*Config, error) {
	return LoadWithOverrides(dir, Overrides{})
}

// LoadWithOverrides is Load with command-line overrides applied before defaults.
func LoadWithOverrides(dir string, overrides Overrides) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	applyOverrides(merged, overrides)
	if err := applyDefaults(merged); err != nil {
		return nil, err
	}
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	pick := func(value func(*Config) string, key ...string) string {
		return mergeString(projectMeta.IsDefined(key...), value(projectCfg), value(globalCfg))
	}

	merged := Config{}
	merged.Storage.Backend = pick(func(c *Config) string { return c.Storage.Backend }, "storage", "backend")
	merged.Storage.Dir = pick(func(c *Config) string { return c.Storage.Dir }, "storage", "dir")
	merged.Storage.SQLitePath = pick(func(c *Config) string { return c.Storage.SQLitePath }, "storage", "sqlite-path")
	merged.Storage.RedisURL = pick(func(c *Config) string { return c.Storage.RedisURL }, "storage", "redis-url")
	merged.Storage.PostgresURL = pick(func(c *Config) string { return c.Storage.PostgresURL }, "storage", "postgres-url")
	merged.Storage.Namespace = pick(func(c *Config) string { return c.Storage.Namespace }, "storage", "namespace")
	merged.Events.KafkaBrokers = pick(func(c *Config) string { return c.Events.KafkaBrokers }, "events", "kafka-brokers")
	merged.Events.KafkaTopic = pick(func(c *Config) string { return c.Events.KafkaTopic }, "events", "kafka-topic")
	merged.Server.Addr = pick(func(c *Config) string { return c.Server.Addr }, "server", "addr")
	merged.Log.Level = pick(func(c *Config) string { return c.Log.Level }, "log", "level")
	merged.Log.Format = pick(func(c *Config) string { return c.Log.Format }, "log", "format")

	return &merged
}

func applyOverrides(cfg *Config, overrides Overrides) {
	if dir := strings.TrimSpace(overrides.StateDir); dir != "" {
		cfg.Storage.Dir = dir
	}
	if backend := strings.TrimSpace(overrides.Backend); backend != "" {
		cfg.Storage.Backend = backend
	}
	if level := strings.TrimSpace(overrides.LogLevel); level != "" {
		cfg.Log.Level = level
	}
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func applyDefaults(cfg *Config) error {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Dir == "" {
		dir, err := paths.DefaultStateDir()
		if err != nil {
			return err
		}
		cfg.Storage.Dir = dir
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.Dir, "cadence.db")
	}
	if cfg.Storage.Namespace == "" {
		cfg.Storage.Namespace = DefaultNamespace
	}
	if cfg.Events.KafkaTopic == "" {
		cfg.Events.KafkaTopic = DefaultKafkaTopic
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	return nil
}

// Validate checks enumerated settings and backend prerequisites.
func Validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendRedis:
		if cfg.Storage.RedisURL == "" {
			return fmt.Errorf("storage backend %q requires redis-url", cfg.Storage.Backend)
		}
	case BackendPostgres:
		if cfg.Storage.PostgresURL == "" {
			return fmt.Errorf("storage backend %q requires postgres-url", cfg.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want file, sqlite, redis, postgres)", cfg.Storage.Backend)
	}
	return nil
}

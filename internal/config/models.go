package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/swaysplit/internal/logger"
)

// EnvPrefix is the prefix of environment overrides, e.g. SWAYSPLIT_LOG_LEVEL
const EnvPrefix = "SWAYSPLIT"

// Config represents the application configuration
type Config struct {
	// SocketPath is the sway IPC socket; empty means $SWAYSOCK
	SocketPath string `json:"socket_path" yaml:"socket_path" mapstructure:"socket_path"`
	LogLevel   string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty  bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	// ServerPort enables the status API when non-zero
	ServerPort   int  `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	NotifyOnExit bool `json:"notify_on_exit" yaml:"notify_on_exit" mapstructure:"notify_on_exit"`
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		LogLevel:  "info",
		LogPretty: true,
	}
}

// Validate checks the configuration for values the daemon cannot use
func (c *Config) Validate() error {
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", c.LogLevel)
	}
	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}
	return nil
}

// Manager handles configuration
type Manager struct {
	configPath string
	v          *viper.Viper
	config     *Config
	// changes holds keys set through Set, the only values Save adds to the file
	changes    map[string]interface{}
	mu         sync.RWMutex
}

// DefaultPath returns $XDG_CONFIG_HOME/swaysplit/config.yaml
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "swaysplit", "config.yaml"), nil
}

// NewManager creates a new configuration manager. A missing file is not an
// error; defaults are used and nothing is written.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = p
	}

	m := &Manager{
		configPath: actualConfigPath,
		v:          newViper(actualConfigPath),
	}

	if err := m.load(); err != nil {
		return nil, err
	}

	cfg := m.Get()
	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Str("log_level", cfg.LogLevel).
		Int("server_port", cfg.ServerPort).
		Msg("Config loaded")

	return m, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("socket_path", d.SocketPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("notify_on_exit", d.NotifyOnExit)
	return v
}

// load reads the configuration from disk and applies overrides
func (m *Manager) load() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Debug().
			Str("path", m.configPath).
			Msg("Config file not found, using defaults")
	}

	return m.refresh()
}

// refresh rebuilds the cached Config from viper
func (m *Manager) refresh() error {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// GetViper exposes the underlying viper instance for flag binding and key access
func (m *Manager) GetViper() *viper.Viper {
	return m.v
}

// Set changes a single key in memory and validates the result
func (m *Manager) Set(key string, value interface{}) error {
	m.v.Set(key, value)
	if err := m.refresh(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.changes == nil {
		m.changes = make(map[string]interface{})
	}
	m.changes[key] = value
	m.mu.Unlock()
	return nil
}

// ApplyOverrides re-reads flag and environment overrides bound to viper
func (m *Manager) ApplyOverrides() error {
	return m.refresh()
}

// Save writes the config file as YAML: the values already in the file plus
// the keys changed with Set. Flag and environment overrides are not written.
func (m *Manager) Save() error {
	values := make(map[string]interface{})

	data, err := os.ReadFile(m.configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if values == nil {
			values = make(map[string]interface{})
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read config: %w", err)
	}

	m.mu.RLock()
	for key, value := range m.changes {
		values[key] = value
	}
	m.mu.RUnlock()

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Int("keys", len(values)).
		Msg("Saving config")

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Watch reloads the configuration when the file changes and calls onChange
// with the new value. Invalid edits are logged and ignored.
func (m *Manager) Watch(onChange func(*Config)) {
	log := logger.WithComponent("config")

	m.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := m.refresh(); err != nil {
			log.Warn().Err(err).Str("path", e.Name).Msg("Ignoring invalid config change")
			return
		}
		log.Info().Str("path", e.Name).Msg("Config reloaded")
		if onChange != nil {
			onChange(m.Get())
		}
	})
	m.v.WatchConfig()
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

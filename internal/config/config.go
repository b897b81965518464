package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"

	DefaultSnapshotKey = "ignite-timer.cycles-state-1.0.0"
)

// Duration is a time.Duration written as "1s", "30s", "2m" in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", string(text))
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StorageConfig struct {
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	Key        string `toml:"key"`
	NATSURL    string `toml:"nats_url"`
	NATSBucket string `toml:"nats_bucket"`
}

type TimerConfig struct {
	TickInterval      Duration `toml:"tick_interval"`
	ReconcileInterval Duration `toml:"reconcile_interval"`
	InterruptOnLock   bool     `toml:"interrupt_on_lock"`
}

type NotifyConfig struct {
	Desktop *bool `toml:"desktop"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"`
}

type EventsConfig struct {
	NATSURL       string `toml:"nats_url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

type TelegramConfig struct {
	Enabled        bool    `toml:"enabled"`
	AllowedChatIDs []int64 `toml:"allowed_chat_ids"`
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Storage  StorageConfig  `toml:"storage"`
	Timer    TimerConfig    `toml:"timer"`
	Notify   NotifyConfig   `toml:"notify"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Events   EventsConfig   `toml:"events"`
	Telegram TelegramConfig `toml:"telegram"`
}

// SetDefault fills every unset value.
func (c *Config) SetDefault() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStateDir()
	}
	c.Storage.Path = expandHome(c.Storage.Path)
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultSnapshotKey
	}
	if c.Storage.NATSBucket == "" {
		c.Storage.NATSBucket = "cyclewarden"
	}

	if c.Timer.TickInterval == 0 {
		c.Timer.TickInterval = Duration(time.Second)
	}
	if c.Timer.ReconcileInterval == 0 {
		c.Timer.ReconcileInterval = Duration(30 * time.Second)
	}

	if c.Notify.Desktop == nil {
		defaultVal := true
		c.Notify.Desktop = &defaultVal
	}

	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "cyclewarden.cycles"
	}
}

// Validate rejects combinations SetDefault cannot repair.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendSQLite:
	case BackendNATS:
		if c.Storage.NATSURL == "" {
			return fmt.Errorf("storage backend %q requires nats_url", BackendNATS)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Timer.TickInterval.Std() < 100*time.Millisecond {
		return fmt.Errorf("tick_interval %s is too small", c.Timer.TickInterval.Std())
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	c.SetDefault()
	return &c
}

func LoadConfigFromFile(path string) (*Config, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := toml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	config.SetDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.SetDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultPath resolves $XDG_CONFIG_HOME/cyclewarden/config.toml.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "cyclewarden", "config.toml"), nil
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "cyclewarden")
	}
	return filepath.Join("~", ".local", "state", "cyclewarden")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

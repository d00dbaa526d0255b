// Package config loads the neuraldesk configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// PathEnv names the variable holding the configuration file path.
const PathEnv = "NEURALDESK_CONFIG"

// DefaultPath is read when no path is given and PathEnv is unset.
const DefaultPath = "./neuraldesk.yaml"

// Config is the root configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Assistant AssistantConfig `yaml:"assistant"`
	Chat      ChatConfig      `yaml:"chat"`
	Calendar  CalendarConfig  `yaml:"calendar"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"NEURALDESK_STORAGE_BACKEND" env-default:"sqlite"`
	Dir     string `yaml:"dir"     env:"NEURALDESK_STORAGE_DIR"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"NEURALDESK_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"NEURALDESK_LOG_FORMAT" env-default:"json"`
}

// AssistantConfig holds the offline assistant settings.
type AssistantConfig struct {
	UserName    string `yaml:"user_name"    env:"NEURALDESK_USER_NAME"`
	MemoryTurns int    `yaml:"memory_turns" env:"NEURALDESK_MEMORY_TURNS" env-default:"10"`
}

// ChatConfig holds the live chat gateway settings.
type ChatConfig struct {
	Endpoint        string        `yaml:"endpoint"         env:"NEURALDESK_CHAT_ENDPOINT"         env-default:"http://localhost:3000/api/chat"`
	HistoryTurns    int           `yaml:"history_turns"    env:"NEURALDESK_CHAT_HISTORY_TURNS"    env-default:"12"`
	TranscriptTurns int           `yaml:"transcript_turns" env:"NEURALDESK_CHAT_TRANSCRIPT_TURNS" env-default:"50"`
	Timeout         time.Duration `yaml:"timeout"          env:"NEURALDESK_CHAT_TIMEOUT"          env-default:"2m"`
}

// CalendarConfig selects the calendar provider.
type CalendarConfig struct {
	Provider string `yaml:"provider" env:"NEURALDESK_CALENDAR_PROVIDER" env-default:"simulated"`
}

// Calendar providers.
const (
	CalendarSimulated = "simulated"
	CalendarNone      = "none"
)

var (
	backends  = []string{"sqlite", "file", "memory"}
	levels    = []string{"debug", "info", "warn", "error"}
	formats   = []string{"json", "console"}
	providers = []string{CalendarSimulated, CalendarNone}
)

// Load reads configuration from path, or from PathEnv, or from
// DefaultPath, in that order. Priority: ENV > YAML > defaults. A missing
// file is an error only when its path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv(PathEnv)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Storage.Backend) {
		return fmt.Errorf("storage.backend must be one of %v (got %q)", backends, c.Storage.Backend)
	}
	if !slices.Contains(levels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", levels, c.Log.Level)
	}
	if !slices.Contains(formats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v (got %q)", formats, c.Log.Format)
	}
	if c.Assistant.MemoryTurns < 1 {
		return fmt.Errorf("assistant.memory_turns must be >= 1 (got %d)", c.Assistant.MemoryTurns)
	}
	if c.Chat.HistoryTurns < 1 {
		return fmt.Errorf("chat.history_turns must be >= 1 (got %d)", c.Chat.HistoryTurns)
	}
	if c.Chat.TranscriptTurns < 1 {
		return fmt.Errorf("chat.transcript_turns must be >= 1 (got %d)", c.Chat.TranscriptTurns)
	}
	if c.Chat.Timeout < 0 {
		return fmt.Errorf("chat.timeout must be >= 0 (got %s)", c.Chat.Timeout)
	}
	if !slices.Contains(providers, c.Calendar.Provider) {
		return fmt.Errorf("calendar.provider must be one of %v (got %q)", providers, c.Calendar.Provider)
	}
	return nil
}

// DataDir returns the storage directory, defaulting to ~/.neuraldesk.
func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".neuraldesk")
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("config: render: %w", err)
	}
	return string(out), nil
}

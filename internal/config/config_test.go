package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neuraldesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate moves into an empty directory so DefaultPath never exists.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(PathEnv, "")
}

const validYAML = `
storage:
  backend: file
  dir: /tmp/nd
log:
  level: debug
  format: console
assistant:
  user_name: Ada
  memory_turns: 6
chat:
  endpoint: http://gateway.local/api/chat
  history_turns: 10
  transcript_turns: 20
  timeout: 30s
calendar:
  provider: none
`

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Assistant.MemoryTurns)
	assert.Equal(t, 12, cfg.Chat.HistoryTurns)
	assert.Equal(t, 50, cfg.Chat.TranscriptTurns)
	assert.Equal(t, 2*time.Minute, cfg.Chat.Timeout)
	assert.Equal(t, CalendarSimulated, cfg.Calendar.Provider)
	assert.True(t, strings.HasSuffix(cfg.DataDir(), ".neuraldesk"))
}

func TestLoad_YAML(t *testing.T) {
	isolate(t)
	path := writeYAML(t, validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/nd", cfg.DataDir())
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "Ada", cfg.Assistant.UserName)
	assert.Equal(t, 6, cfg.Assistant.MemoryTurns)
	assert.Equal(t, "http://gateway.local/api/chat", cfg.Chat.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, CalendarNone, cfg.Calendar.Provider)
}

func TestLoad_PathFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(PathEnv, writeYAML(t, validYAML))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	isolate(t)
	path := writeYAML(t, validYAML)
	t.Setenv("NEURALDESK_STORAGE_BACKEND", "memory")
	t.Setenv("NEURALDESK_CHAT_HISTORY_TURNS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Chat.HistoryTurns)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("NEURALDESK_STORAGE_BACKEND", "postgres")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage:   StorageConfig{Backend: "sqlite"},
			Log:       LogConfig{Level: "info", Format: "json"},
			Assistant: AssistantConfig{MemoryTurns: 10},
			Chat:      ChatConfig{HistoryTurns: 12, TranscriptTurns: 50},
			Calendar:  CalendarConfig{Provider: CalendarSimulated},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"memory turns", func(c *Config) { c.Assistant.MemoryTurns = 0 }, "assistant.memory_turns"},
		{"history turns", func(c *Config) { c.Chat.HistoryTurns = 0 }, "chat.history_turns"},
		{"transcript turns", func(c *Config) { c.Chat.TranscriptTurns = -1 }, "chat.transcript_turns"},
		{"timeout", func(c *Config) { c.Chat.Timeout = -time.Second }, "chat.timeout"},
		{"provider", func(c *Config) { c.Calendar.Provider = "outlook" }, "calendar.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, *cfg, back)
}

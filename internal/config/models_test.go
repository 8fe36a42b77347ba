package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewManager_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	m, err := NewManager(path)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), m.Get())
	assert.Equal(t, path, m.GetConfigPath())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "config file must not be created on load")
}

func TestNewManager_ReadsFile(t *testing.T) {
	path := writeConfig(t, `
socket_path: /run/user/1000/sway-ipc.sock
log_level: debug
log_pretty: false
server_port: 9191
notify_on_exit: true
`)

	m, err := NewManager(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		SocketPath:   "/run/user/1000/sway-ipc.sock",
		LogLevel:     "debug",
		LogPretty:    false,
		ServerPort:   9191,
		NotifyOnExit: true,
	}, m.Get())
}

func TestNewManager_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("SWAYSPLIT_LOG_LEVEL", "error")
	t.Setenv("SWAYSPLIT_SERVER_PORT", "7070")

	m, err := NewManager(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
}

func TestNewManager_RejectsInvalidFile(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "log_level: [unterminated\n",
		"bad log level": "log_level: chatty\n",
		"bad port":      "server_port: 70000\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewManager(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestManager_SetAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swaysplit", "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Set("server_port", 8181))
	require.NoError(t, m.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, 8181, saved.ServerPort)
	assert.Empty(t, saved.LogLevel)

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, reloaded.Get().ServerPort)
	assert.Equal(t, "info", reloaded.Get().LogLevel)
}

func TestManager_SaveKeepsOverridesOutOfTheFile(t *testing.T) {
	t.Setenv("SWAYSPLIT_SOCKET_PATH", "/run/user/1000/env.sock")
	path := writeConfig(t, "log_level: warn\nnotify_on_exit: true\n")

	m, err := NewManager(path)
	require.NoError(t, err)
	require.Equal(t, "/run/user/1000/env.sock", m.Get().SocketPath)

	require.NoError(t, m.Set("server_port", 8181))
	require.NoError(t, m.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, map[string]interface{}{
		"log_level":      "warn",
		"notify_on_exit": true,
		"server_port":    8181,
	}, saved)
}

func TestManager_SetRejectsInvalidValue(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Error(t, m.Set("log_level", "loud"))
	assert.Equal(t, "info", m.Get().LogLevel)
}

func TestManager_GetReturnsCopy(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg := m.Get()
	cfg.ServerPort = 1

	assert.Zero(t, m.Get().ServerPort)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
	assert.NoError(t, (&Config{LogLevel: "WARN", ServerPort: 65535}).Validate())
	assert.Error(t, (&Config{LogLevel: "verbose"}).Validate())
	assert.Error(t, (&Config{ServerPort: -1}).Validate())
}

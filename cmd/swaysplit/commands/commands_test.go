package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/swaysplit/internal/layout"
	"github.com/bryanchriswhite/swaysplit/internal/window"
)

func sampleDecision() *window.Decision {
	return &window.Decision{
		Command: layout.SplitV,
		State: layout.State{
			Focused: &layout.Window{X: 960, PID: 4242},
			Master:  &layout.Window{X: 0, PID: 1717},
		},
		Time: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func TestPrintDecision_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDecision(&buf, "table", sampleDecision()))

	out := buf.String()
	assert.Contains(t, out, "focused")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "1717")
	assert.Contains(t, out, "Command: splitv\n")
}

func TestPrintDecision_TableEmptyState(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDecision(&buf, "table", &window.Decision{}))

	assert.Contains(t, buf.String(), "Command: none")
}

func TestPrintDecision_Structured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDecision(&buf, "json", sampleDecision()))

	var fromJSON window.Decision
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, layout.SplitV, fromJSON.Command)
	assert.Equal(t, int64(4242), fromJSON.State.Focused.PID)

	buf.Reset()
	require.NoError(t, printDecision(&buf, "yaml", sampleDecision()))

	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "splitv", fromYAML["command"])
}

func TestPrintDecision_UnknownFormat(t *testing.T) {
	err := printDecision(&bytes.Buffer{}, "xml", sampleDecision())
	assert.Error(t, err)
}

func TestParseConfigValue(t *testing.T) {
	v, err := parseConfigValue("server_port", "9090")
	require.NoError(t, err)
	assert.Equal(t, 9090, v)

	v, err = parseConfigValue("notify_on_exit", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = parseConfigValue("log_level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", v)

	_, err = parseConfigValue("server_port", "ninety")
	assert.Error(t, err)
	_, err = parseConfigValue("log_pretty", "maybe")
	assert.Error(t, err)
	_, err = parseConfigValue("colour", "blue")
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = execute(t, "config", "set", "server_port", "9191", "--config", path)
	require.NoError(t, err)

	out, err = execute(t, "config", "get", "server_port", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "9191", strings.TrimSpace(out))

	out, err = execute(t, "config", "show", "--format", "json", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"server_port": 9191`)

	_, err = execute(t, "config", "set", "log_level", "chatty", "--config", path)
	assert.Error(t, err)
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	Info("auth mode selected", KeyMechanism, "GSSAPI", KeyClientAddr, "10.0.1.5")

	out := buf.String()
	assert.Contains(t, out, "auth mode selected")
	assert.Contains(t, out, "mechanism=GSSAPI")
	assert.Contains(t, out, "client_addr=10.0.1.5")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")
	defer InitWithWriter(&buf, "INFO", "text")

	Info("simple auth successful", KeyUser, "alice")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output must be valid JSON")
	assert.Equal(t, "simple auth successful", entry["msg"])
	assert.Equal(t, "alice", entry["user"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")
	defer SetLevel("INFO")

	Debug("should be suppressed")
	Info("should be suppressed too")
	Warn("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "visible warning")
}

func TestInvalidLevelIgnored(t *testing.T) {
	SetLevel("INFO")
	SetLevel("NOISY") // no-op
	assert.Equal(t, LevelInfo, Level(currentLevel.Load()))
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	var testCases = []struct {
		description string
		level       string
		expect      slog.Level
	}{
		{description: "debug", level: "debug", expect: slog.LevelDebug},
		{description: "warn", level: "WARN", expect: slog.LevelWarn},
		{description: "error", level: "Error", expect: slog.LevelError},
		{description: "unknown defaults to info", level: "verbose", expect: slog.LevelInfo},
	}
	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.expect, ParseLevel(testCase.level), testCase.description)
	}
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New("info", FormatJSON, buf)
	logger.Debug("hidden")
	logger.Warn("blame", "label", "0")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	record := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
	assert.EqualValues(t, "blame", record["msg"])
	assert.EqualValues(t, "0", record["label"])
}

func TestNew_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New("debug", "TEXT", buf)
	logger.Debug("released seal scope", "handles", 2)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "timestamp="), out)
	assert.Contains(t, out, "handles=2")
}

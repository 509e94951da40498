package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooga/tsblame/pkg/blame"
	tserr "github.com/nooga/tsblame/pkg/errors"
)

func TestNewConfigFromURL(t *testing.T) {
	dir := t.TempDir()
	var testCases = []struct {
		description string
		name        string
		content     string
		env         map[string]string
		expect      Config
		expectErr   bool
	}{
		{
			description: "yaml document",
			name:        "tsblame.yaml",
			content:     "severity: log\nlogLevel: debug\nlogFormat: text\nnamespace: ci\n",
			expect:      Config{Severity: "log", LogLevel: "debug", LogFormat: "text", Namespace: "ci"},
		},
		{
			description: "json document with defaults",
			name:        "tsblame.json",
			content:     `{"severity": "fatal"}`,
			expect:      Config{Severity: "fatal", LogLevel: "INFO", LogFormat: "json", Namespace: "reports"},
		},
		{
			description: "environment overrides the document",
			name:        "env.yaml",
			content:     "severity: log\n",
			env:         map[string]string{EnvSeverity: "fatal", EnvRecord: "/tmp/blame.db"},
			expect:      Config{Severity: "fatal", LogLevel: "INFO", LogFormat: "json", Namespace: "reports", RecordPath: "/tmp/blame.db"},
		},
		{
			description: "unknown severity",
			name:        "bad.yaml",
			content:     "severity: loud\n",
			expectErr:   true,
		},
		{
			description: "malformed document",
			name:        "broken.json",
			content:     `{"severity": `,
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		for k, v := range testCase.env {
			t.Setenv(k, v)
		}
		URL := filepath.Join(dir, testCase.name)
		require.NoError(t, os.WriteFile(URL, []byte(testCase.content), 0644), testCase.description)
		cfg, err := NewConfigFromURL(context.Background(), URL)
		if testCase.expectErr {
			var configErr *tserr.ConfigError
			assert.True(t, errors.As(err, &configErr), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		testCase.expect.URL = URL
		assert.EqualValues(t, testCase.expect, *cfg, testCase.description)
		for k := range testCase.env {
			require.NoError(t, os.Unsetenv(k))
		}
	}
}

func TestNewConfigFromURL_Missing(t *testing.T) {
	_, err := NewConfigFromURL(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		cfg         Config
		expectErr   bool
	}{
		{description: "defaults", cfg: *New()},
		{description: "bad format", cfg: Config{Severity: "log", LogLevel: "info", LogFormat: "xml", Namespace: "r"}, expectErr: true},
		{description: "bad level", cfg: Config{Severity: "log", LogLevel: "trace", LogFormat: "json", Namespace: "r"}, expectErr: true},
		{description: "record without namespace", cfg: Config{Severity: "log", LogLevel: "info", LogFormat: "json", RecordPath: "x.db"}, expectErr: true},
	}
	for _, testCase := range testCases {
		err := testCase.cfg.Validate()
		assert.EqualValues(t, testCase.expectErr, err != nil, testCase.description)
	}
}

func TestConfig_Apply(t *testing.T) {
	defer blame.SetSeverity(blame.CurrentSeverity())
	cfg := &Config{Severity: "fatal"}
	require.NoError(t, cfg.Apply())
	assert.EqualValues(t, blame.SeverityFatal, blame.CurrentSeverity())

	cfg.Severity = "nope"
	assert.Error(t, cfg.Apply())
	assert.EqualValues(t, blame.SeverityFatal, blame.CurrentSeverity())
}

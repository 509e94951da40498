// Package config loads tsblame settings from a YAML or JSON document and
// the environment.
package config

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/nooga/tsblame/pkg/blame"
	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/logging"
)

// Environment variables that override the loaded document.
const (
	EnvSeverity  = "TSBLAME_SEVERITY"
	EnvLogLevel  = "TSBLAME_LOG_LEVEL"
	EnvLogFormat = "TSBLAME_LOG_FORMAT"
	EnvRecord    = "TSBLAME_RECORD"
)

// Config defines tsblame settings.
type Config struct {
	URL        string `json:"-" yaml:"-"`
	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
	LogLevel   string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat  string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty"` // report bucket
	RecordPath string `json:"recordPath,omitempty" yaml:"recordPath,omitempty"`
}

// New returns the default configuration with environment overrides.
func New() *Config {
	cfg := &Config{}
	cfg.Init()
	return cfg
}

// Init fills in defaults and applies environment overrides.
func (c *Config) Init() {
	c.Severity = getenv(EnvSeverity, c.Severity)
	c.LogLevel = getenv(EnvLogLevel, c.LogLevel)
	c.LogFormat = getenv(EnvLogFormat, c.LogFormat)
	c.RecordPath = getenv(EnvRecord, c.RecordPath)
	if c.Severity == "" {
		c.Severity = blame.SeveritySilent.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = logging.INFO
	}
	if c.LogFormat == "" {
		c.LogFormat = logging.FormatJSON
	}
	if c.Namespace == "" {
		c.Namespace = "reports"
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if _, err := blame.ParseSeverity(c.Severity); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return &tserr.ConfigError{Msg: "unsupported log format " + c.LogFormat}
	}
	switch strings.ToUpper(c.LogLevel) {
	case logging.DEBUG, logging.INFO, logging.WARN, logging.ERROR:
	default:
		return &tserr.ConfigError{Msg: "unsupported log level " + c.LogLevel}
	}
	if c.RecordPath != "" && c.Namespace == "" {
		return &tserr.ConfigError{Msg: "recording requires a namespace"}
	}
	return nil
}

// Apply installs the configured severity process-wide.
func (c *Config) Apply() error {
	severity, err := blame.ParseSeverity(c.Severity)
	if err != nil {
		return err
	}
	blame.SetSeverity(severity)
	return nil
}

// Logger builds the configured logger writing to dest.
func (c *Config) Logger(dest io.Writer) *slog.Logger {
	return logging.New(c.LogLevel, c.LogFormat, dest)
}

// NewConfigFromURL downloads and decodes a YAML or JSON configuration.
func NewConfigFromURL(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download config %v", URL)
	}
	cfg := &Config{}
	if strings.HasSuffix(URL, "yaml") || strings.HasSuffix(URL, "yml") {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, &tserr.ConfigError{Msg: "malformed config " + URL, Cause: err}
	}
	cfg.URL = URL
	cfg.Init()
	return cfg, cfg.Validate()
}

func getenv(key string, deflt string) string {
	v := os.Getenv(key)
	if v == "" {
		return deflt
	}
	return v
}

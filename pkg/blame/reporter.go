package blame

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// Report is a blame event that reached a root.
type Report struct {
	Label    string
	Polarity Polarity
	Path     Path
	Source   Source
	Message  string
}

// String formats the report as "{label} <polarity> <path> <message>".
func (r Report) String() string {
	return fmt.Sprintf("{%s} %s %s %s", r.Label, r.Polarity, r.Path.Pretty(), r.Message)
}

// Err converts the report into the error returned under fatal severity.
func (r Report) Err() *tserr.BlameError {
	return &tserr.BlameError{
		Label:    r.Label,
		Polarity: r.Polarity.String(),
		Path:     r.Path.Pretty(),
		Msg:      r.Message,
	}
}

// Reporter is the terminal action of a root. A non-nil error aborts the
// access that triggered the blame and is returned to its caller.
type Reporter interface {
	Report(r Report) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r Report) error

func (f ReporterFunc) Report(r Report) error { return f(r) }

// Severity selects what the default reporter does with a report.
type Severity int32

const (
	SeveritySilent Severity = iota
	SeverityLog
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeveritySilent:
		return "silent"
	case SeverityLog:
		return "log"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int32(s))
}

// ParseSeverity accepts silent, log or fatal in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "":
		return SeveritySilent, nil
	case "log":
		return SeverityLog, nil
	case "fatal":
		return SeverityFatal, nil
	}
	return SeveritySilent, &tserr.ConfigError{Msg: fmt.Sprintf("unknown severity %q", s)}
}

var severity atomic.Int32

// SetSeverity installs the process-wide severity.
func SetSeverity(s Severity) {
	severity.Store(int32(s))
}

// CurrentSeverity returns the process-wide severity. It is silent unless
// configured otherwise.
func CurrentSeverity() Severity {
	return Severity(severity.Load())
}

// SeverityReporter acts on the process-wide severity: drop, log at warn
// level, or fail with a *errors.BlameError.
type SeverityReporter struct {
	Logger *slog.Logger
}

func NewSeverityReporter(logger *slog.Logger) *SeverityReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeverityReporter{Logger: logger}
}

func (s *SeverityReporter) Report(r Report) error {
	switch CurrentSeverity() {
	case SeverityLog:
		s.Logger.LogAttrs(context.Background(), slog.LevelWarn, r.String(),
			slog.String("label", r.Label),
			slog.String("polarity", r.Polarity.String()),
			slog.String("path", r.Path.Pretty()),
			slog.String("source", string(r.Source)),
			slog.String("message", r.Message),
		)
	case SeverityFatal:
		return r.Err()
	}
	return nil
}

// Tee hands every report to all reporters in order and returns the first
// error.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(r Report) error {
		var first error
		for _, rep := range reporters {
			if err := rep.Report(r); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// Recorder keeps every report in memory.
type Recorder struct {
	Reports []Report
}

func (rec *Recorder) Report(r Report) error {
	rec.Reports = append(rec.Reports, r)
	return nil
}

// Strings returns the formatted reports, nil when there are none.
func (rec *Recorder) Strings() []string {
	var res []string
	for _, r := range rec.Reports {
		res = append(res, r.String())
	}
	return res
}

// Reset drops the recorded reports.
func (rec *Recorder) Reset() {
	rec.Reports = nil
}

package errors

import (
	"fmt"
	"io"
	"strings"
)

// TsblameError is the interface implemented by all errors raised by the
// contract engine and its collaborators.
type TsblameError interface {
	error // Embed the standard error interface
	Kind() string // e.g., "Blame", "Invariant", "Config", "Syntax"
	// Message returns the specific error message without location info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// BlameError is a contract violation that reached a root whose severity
// aborts the access. It is returned, never panicked.
type BlameError struct {
	Label    string // Root label of the blame tree
	Polarity string // "+ POSITIVE +" or "- NEGATIVE -"
	Path     string // Pretty-printed blame path
	Msg      string
	Cause    error
}

func (e *BlameError) Error() string {
	return fmt.Sprintf("Blame Error {%s}: %s %s %s", e.Label, e.Polarity, e.Path, e.Msg)
}
func (e *BlameError) Kind() string    { return "Blame" }
func (e *BlameError) Message() string { return e.Msg }
func (e *BlameError) Unwrap() error   { return e.Cause }

// InvariantError reports misuse of the engine: unknown type kinds or path
// tags, out-of-range intersection branches, unresolved lazy names. These are
// programming or configuration errors and are raised with panic.
type InvariantError struct {
	Msg   string
	Cause error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("Invariant Error: %s", e.Msg)
}
func (e *InvariantError) Kind() string    { return "Invariant" }
func (e *InvariantError) Message() string { return e.Msg }
func (e *InvariantError) Unwrap() error   { return e.Cause }

// Invariantf builds an InvariantError, ready to be panicked.
func Invariantf(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports a configuration that cannot be used, such as a lazy
// type cache with requested names that were never registered.
type ConfigError struct {
	Msg     string
	Missing []string // Unregistered type names, when applicable
	Cause   error
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("Config Error: %s: %s", e.Msg, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("Config Error: %s", e.Msg)
}
func (e *ConfigError) Kind() string    { return "Config" }
func (e *ConfigError) Message() string { return e.Msg }
func (e *ConfigError) Unwrap() error   { return e.Cause }

// RuntimeError is raised by host value operations: reading a property of
// null, calling a non-function and the like.
type RuntimeError struct {
	Msg   string
	Cause error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Runtime Error: %s", e.Msg)
}
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Msg }
func (e *RuntimeError) Unwrap() error   { return e.Cause }

// Runtimef builds a RuntimeError.
func Runtimef(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// SyntaxError represents an error while reading type-expression source.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints syntax errors to w in a user-friendly format,
// including the source line and a position marker.
func DisplayErrors(w io.Writer, errs []*SyntaxError) {
	for _, err := range errs {
		pos := err.Pos()
		if pos.Source == nil {
			fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Msg)
			continue
		}
		lines := pos.Source.Lines()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Msg)
			continue
		}

		sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")
		fmt.Fprintf(w, "%s Error in %s at %d:%d: %s\n", err.Kind(), pos.Source.DisplayPath(), pos.Line, pos.Column, err.Msg)
		fmt.Fprintf(w, "  %s\n", sourceLine)
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", pos.Column-1))
		fmt.Fprintln(w)
	}
}

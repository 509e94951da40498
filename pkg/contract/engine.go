// Package contract wraps host values in monitored proxies that check them
// against contract types and route violations into a blame tree.
package contract

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// Engine wraps values and owns the seal table of polymorphic calls.
// An Engine is not safe for concurrent use.
type Engine struct {
	reporter blame.Reporter
	logger   *slog.Logger
	labels   int

	seals map[uuid.UUID]*types.BoundTypeVariable // live handle -> owner
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the terminal action of every root created by the
// engine.
func WithReporter(r blame.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. Without options roots report through the
// process-wide severity and log with slog.Default.
func New(opts ...Option) *Engine {
	e := &Engine{
		seals: make(map[uuid.UUID]*types.BoundTypeVariable),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.reporter == nil {
		e.reporter = blame.NewSeverityReporter(e.logger)
	}
	return e
}

// NewRoot creates a blame tree labelled label and returns its root.
func (e *Engine) NewRoot(label string) blame.Node {
	return blame.NewTree(label, e.reporter).Root()
}

// SimpleWrap wraps v symmetrically under t, below a fresh root labelled by
// the engine's counter.
func (e *Engine) SimpleWrap(v values.Value, t types.Type) (values.Value, error) {
	label := strconv.Itoa(e.labels)
	e.labels++
	return e.Wrap(v, e.NewRoot(label), t, t)
}

// Release drops every seal handle. Tokens minted before the call no
// longer unseal; use it once the wrapped values are out of reach.
func (e *Engine) Release() {
	if n := len(e.seals); n > 0 {
		e.seals = make(map[uuid.UUID]*types.BoundTypeVariable)
		e.logger.Debug("released seals", "handles", n)
	}
}

// Sealed reports the number of live seal handles.
func (e *Engine) Sealed() int {
	return len(e.seals)
}

var defaultEngine = New()

// Default returns the process-wide engine.
func Default() *Engine { return defaultEngine }

// SetDefault replaces the process-wide engine.
func SetDefault(e *Engine) { defaultEngine = e }

// Wrap wraps v with the process-wide engine.
func Wrap(v values.Value, n blame.Node, a, b types.Type) (values.Value, error) {
	return defaultEngine.Wrap(v, n, a, b)
}

// SimpleWrap wraps v under t with the process-wide engine.
func SimpleWrap(v values.Value, t types.Type) (values.Value, error) {
	return defaultEngine.SimpleWrap(v, t)
}

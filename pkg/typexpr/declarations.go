// Package typexpr evaluates the declaration text emitted by the contract
// compiler: lazy type registrations, wrapped globals and module types.
package typexpr

import (
	"github.com/pkg/errors"

	"github.com/nooga/tsblame/pkg/contract"
	"github.com/nooga/tsblame/pkg/source"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// Declaration binds a name to a contract type.
type Declaration struct {
	Name string
	Type types.Type
}

// Declarations is the result of evaluating declaration text.
type Declarations struct {
	Cache    *types.LazyTypeCache
	Names    []string      // T.set registrations, in order
	Globals  []Declaration // name = Blame.simple_wrap(name, type)
	Modules  []Declaration // M['name'] = type
	Exports  types.Type    // module.exports wrapper, nil when absent
	Verified bool          // the text called T.verify()
}

// Options tune Evaluate.
type Options struct {
	// Cache receives the registrations; a new cache is used when nil.
	Cache *types.LazyTypeCache
	// Verify checks the cache after evaluation even when the text does not
	// call T.verify().
	Verify bool
}

// Evaluate parses and evaluates src.
func Evaluate(src *source.SourceFile, opts Options) (*Declarations, error) {
	cache := opts.Cache
	if cache == nil {
		cache = types.NewLazyTypeCache()
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	decls := &Declarations{Cache: cache}
	p := &parser{src: src, tokens: tokens, decls: decls}
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	if opts.Verify && !decls.Verified {
		if err := cache.Verify(); err != nil {
			return nil, err
		}
		decls.Verified = true
	}
	return decls, nil
}

// EvaluateString evaluates inline declaration text.
func EvaluateString(text string, opts Options) (*Declarations, error) {
	return Evaluate(source.NewInlineSource(text), opts)
}

// Module returns the type declared for module name.
func (d *Declarations) Module(name string) (types.Type, bool) {
	for _, m := range d.Modules {
		if m.Name == name {
			return m.Type, true
		}
	}
	return nil, false
}

// Lookup resolves a name registered with T.set.
func (d *Declarations) Lookup(name string) (types.Type, bool) {
	return d.Cache.Lookup(name)
}

// Bind wraps every declared global found on env and writes the wrapped
// value back. When exports are declared, env.module.exports and
// env.exports are replaced by the wrapped exports. Globals missing from env
// are skipped.
func (d *Declarations) Bind(engine *contract.Engine, env values.Value) error {
	for _, g := range d.Globals {
		if !values.HasOwnProperty(env, g.Name) {
			continue
		}
		v, err := values.GetProperty(env, g.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to read global %v", g.Name)
		}
		wrapped, err := engine.SimpleWrap(v, g.Type)
		if err != nil {
			return err
		}
		if err := values.SetProperty(env, g.Name, wrapped); err != nil {
			return errors.Wrapf(err, "failed to bind global %v", g.Name)
		}
	}
	if d.Exports == nil {
		return nil
	}
	module, err := values.GetProperty(env, "module")
	if err != nil {
		return errors.Wrap(err, "failed to read module")
	}
	if !module.IsObjectLike() || module.IsNull() {
		return errors.Errorf("module exports are declared but env.module is %v", module.TypeName())
	}
	exports, err := values.GetProperty(module, "exports")
	if err != nil {
		return errors.Wrap(err, "failed to read module.exports")
	}
	wrapped, err := engine.SimpleWrap(exports, d.Exports)
	if err != nil {
		return err
	}
	if err := values.SetProperty(module, "exports", wrapped); err != nil {
		return errors.Wrap(err, "failed to bind module.exports")
	}
	return values.SetProperty(env, "exports", wrapped)
}

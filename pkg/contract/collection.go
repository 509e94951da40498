package contract

import (
	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// arrayWrapper checks element reads and writes. Every access allocates an
// anonymous array segment, index or not.
type arrayWrapper struct {
	values.PassThrough
	engine *Engine
	node   blame.Node
	a, b   *types.ArrayType
}

func (w *arrayWrapper) Get(target values.Value, name string) (values.Value, error) {
	get := w.node.Get("", true)
	if name == "toJSON" {
		return jsonHook(target), nil
	}
	res, err := values.GetProperty(target, name)
	if err != nil {
		return values.Undefined, err
	}
	if types.IsIndex(name) {
		return w.engine.Wrap(res, get, w.a.Elem, w.b.Elem)
	}
	// Methods keep the original array as receiver.
	if res.IsCallable() {
		return values.Bind(res, target), nil
	}
	return res, nil
}

func (w *arrayWrapper) Set(target values.Value, name string, v values.Value) error {
	set := w.node.Set("", true)
	if types.IsIndex(name) {
		wrapped, err := w.engine.Wrap(v, set, w.b.Elem, w.a.Elem)
		if err != nil {
			return err
		}
		return values.SetProperty(target, name, wrapped)
	}
	return values.SetProperty(target, name, v)
}

// dictWrapper checks every property. Frozen own properties are left alone.
type dictWrapper struct {
	values.PassThrough
	engine *Engine
	node   blame.Node
	a, b   *types.DictionaryType
}

func (w *dictWrapper) Get(target values.Value, name string) (values.Value, error) {
	get := w.node.Get(name, false)
	if name == "toJSON" {
		return jsonHook(target), nil
	}
	res, err := values.GetProperty(target, name)
	if err != nil {
		return values.Undefined, err
	}
	if desc, ok := values.OwnProperty(target, name); ok && desc.Frozen() {
		return res, nil
	}
	return w.engine.Wrap(res, get, w.a.Elem, w.b.Elem)
}

func (w *dictWrapper) Set(target values.Value, name string, v values.Value) error {
	set := w.node.Set(name, false)
	wrapped, err := w.engine.Wrap(v, set, w.b.Elem, w.a.Elem)
	if err != nil {
		return err
	}
	return values.SetProperty(target, name, wrapped)
}

// objectWrapper checks declared properties; everything else passes.
type objectWrapper struct {
	values.PassThrough
	engine *Engine
	node   blame.Node
	a, b   *types.ObjectType
}

// declared returns the (a, b) pair for name. A property only the consumer
// declares is checked symmetrically.
func (w *objectWrapper) declared(name string) (types.Type, types.Type, bool) {
	at, ok := w.a.Lookup(name)
	if !ok {
		return nil, nil, false
	}
	bt, ok := w.b.Lookup(name)
	if !ok {
		bt = at
	}
	return at, bt, true
}

func (w *objectWrapper) Get(target values.Value, name string) (values.Value, error) {
	get := w.node.Get(name, false)
	res, err := values.GetProperty(target, name)
	if err != nil {
		return values.Undefined, err
	}
	at, bt, ok := w.declared(name)
	if !ok {
		return res, nil
	}
	if desc, own := values.OwnProperty(target, name); own && desc.Frozen() {
		return res, nil
	}
	return w.engine.Wrap(res, get, at, bt)
}

func (w *objectWrapper) Set(target values.Value, name string, v values.Value) error {
	set := w.node.Set(name, false)
	at, bt, ok := w.declared(name)
	if !ok {
		return values.SetProperty(target, name, v)
	}
	wrapped, err := w.engine.Wrap(v, set, bt, at)
	if err != nil {
		return err
	}
	return values.SetProperty(target, name, wrapped)
}

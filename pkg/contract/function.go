package contract

import (
	"fmt"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// jsonHook returns the toJSON function exposed by wrappers: it hands back
// the unwrapped target.
func jsonHook(target values.Value) values.Value {
	return values.NewNativeFunction("toJSON", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		return target, nil
	})
}

// functionWrapper checks calls against a function type. Each call gets its
// own application in the function node.
type functionWrapper struct {
	values.PassThrough
	engine *Engine
	node   blame.Node
	a, b   *types.FunctionType
}

func (w *functionWrapper) Get(target values.Value, name string) (values.Value, error) {
	if name == "toJSON" {
		return jsonHook(target), nil
	}
	return values.GetProperty(target, name)
}

func (w *functionWrapper) Apply(target, this values.Value, args []values.Value) (values.Value, error) {
	dom, cod := w.node.Application()
	wrapped, ok, err := w.engine.wrapArguments(dom, w.a, w.b, args)
	if err != nil {
		return values.Undefined, err
	}
	if !ok {
		return values.Call(target, this, args)
	}
	ret, err := values.Call(target, this, wrapped)
	if err != nil {
		return values.Undefined, err
	}
	return w.engine.Wrap(ret, cod, w.a.Return, w.b.Return)
}

func (w *functionWrapper) Construct(target values.Value, args []values.Value) (values.Value, error) {
	proto, err := values.GetProperty(target, "prototype")
	if err != nil {
		return values.Undefined, err
	}
	instance := values.NewObjectWithPrototype(proto)

	dom, cod := w.node.Application()
	wrapped, ok, err := w.engine.wrapArguments(dom, w.a, w.b, args)
	if err != nil {
		return values.Undefined, err
	}
	if !ok {
		if _, err := values.Call(target, instance, args); err != nil {
			return values.Undefined, err
		}
		return instance, nil
	}

	checked, err := w.engine.Wrap(instance, cod, w.a.Construct, w.b.Construct)
	if err != nil {
		return checked, err
	}
	if _, err := values.Call(target, instance, wrapped); err != nil {
		return values.Undefined, err
	}
	return checked, nil
}

// wrapArguments checks the arity and wraps every argument below dom with
// the pair swapped. It reports false when the arity was blamed; the caller
// then forwards the original arguments.
func (e *Engine) wrapArguments(dom blame.Node, a, b *types.FunctionType, args []values.Value) ([]values.Value, bool, error) {
	n := len(args)
	minArgs := len(a.Required)
	maxArgs := minArgs + len(a.Optional)
	if n < minArgs {
		err := dom.Flat().Blame(fmt.Sprintf("not enough arguments, expected >=%d, got: %d", minArgs, n))
		return nil, false, err
	}
	if n > maxArgs && a.Rest == nil {
		err := dom.Flat().Blame(fmt.Sprintf("too many arguments, expected <=%d, got: %d", maxArgs, n))
		return nil, false, err
	}

	wrapped := make([]values.Value, 0, n)
	add := func(v values.Value, bt, at types.Type) error {
		w, err := e.Wrap(v, dom, bt, at)
		wrapped = append(wrapped, w)
		return err
	}
	i := 0
	for ; i < minArgs; i++ {
		if err := add(args[i], b.Required[i], a.Required[i]); err != nil {
			return nil, false, err
		}
	}
	for j := 0; j < len(a.Optional) && i < n; j, i = j+1, i+1 {
		if err := add(args[i], types.Nullable(b.Optional[j]), types.Nullable(a.Optional[j])); err != nil {
			return nil, false, err
		}
	}
	for ; i < n; i++ {
		if err := add(args[i], b.Rest, a.Rest); err != nil {
			return nil, false, err
		}
	}
	return wrapped, true, nil
}

// forallWrapper instantiates the forall afresh for every call, so seals
// minted by one call cannot be opened by another.
type forallWrapper struct {
	values.PassThrough
	engine *Engine
	node   blame.Node
	a, b   *types.ForallType
}

func (w *forallWrapper) Get(target values.Value, name string) (values.Value, error) {
	if name == "toJSON" {
		return jsonHook(target), nil
	}
	return values.GetProperty(target, name)
}

func (w *forallWrapper) Apply(target, this values.Value, args []values.Value) (values.Value, error) {
	fn, err := w.engine.instantiate(target, w.node, w.a, w.b)
	if err != nil {
		return values.Undefined, err
	}
	return values.Call(fn, this, args)
}

func (w *forallWrapper) Construct(target values.Value, args []values.Value) (values.Value, error) {
	fn, err := w.engine.instantiate(target, w.node, w.a, w.b)
	if err != nil {
		return values.Undefined, err
	}
	return values.Construct(fn, args)
}

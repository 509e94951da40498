package contract

import (
	"fmt"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// Wrap checks v against the pair (a, b) below n. a is the type seen by the
// consumer, b by the producer. Composite values come back as proxies that
// check later uses; mismatches are blamed and v is returned as is. The
// error is non-nil only when the root reporter aborts.
func (e *Engine) Wrap(v values.Value, n blame.Node, a, b types.Type) (values.Value, error) {
	// Host objects break when intercepted.
	if v.IsHost() {
		return v, nil
	}

	if types.Compatible(a, b) {
		switch a := a.(type) {
		case *types.BaseType:
			return e.wrapBase(v, n, a)
		case *types.FunctionType:
			return e.wrapFunction(v, n, a, b.(*types.FunctionType))
		case *types.ForallType:
			return e.wrapForall(v, n, a, b.(*types.ForallType))
		case *types.ArrayType:
			return e.wrapArray(v, n, a, b.(*types.ArrayType))
		case *types.DictionaryType:
			return e.wrapDictionary(v, n, a, b.(*types.DictionaryType))
		case *types.ObjectType:
			return e.wrapObject(v, n, a, b.(*types.ObjectType))
		case *types.HybridType:
			return e.wrapHybrid(v, n, a, b.(*types.HybridType))
		case *types.UnionType:
			return e.wrapUnion(v, n, a, b.(*types.UnionType))
		case *types.LazyType, *types.BoundLazyType:
			return e.Wrap(v, n, types.Resolve(a), types.Resolve(b))
		}
		if a.Kind() == types.KindAny {
			return v, nil
		}
	}

	ka, kb := a.Kind(), b.Kind()
	switch {
	case ka == types.KindAny && kb == types.KindBoundTypeVariable:
		return e.seal(v, n, b.(*types.BoundTypeVariable))
	case ka == types.KindBoundTypeVariable && kb == types.KindAny:
		return e.unseal(v, n, a.(*types.BoundTypeVariable))
	}

	err := n.Flat().Blame(fmt.Sprintf("Non-compatible types A:%s,kind: %s\nB:%s,kind: %s\n", a, ka, b, kb))
	return v, err
}

func (e *Engine) wrapBase(v values.Value, n blame.Node, a *types.BaseType) (values.Value, error) {
	flat := n.Flat()
	if !a.Contract(v) {
		return v, flat.Blame(fmt.Sprintf("not of type %s: type is %s", a.Name, v.TypeName()))
	}
	return v, nil
}

func (e *Engine) wrapFunction(v values.Value, n blame.Node, a, b *types.FunctionType) (values.Value, error) {
	if !v.IsCallable() {
		return v, n.Flat().Blame("not of type Fun: type is " + v.TypeName())
	}
	return values.NewProxy(v, &functionWrapper{engine: e, node: n.Fun(), a: a, b: b}), nil
}

func (e *Engine) wrapForall(v values.Value, n blame.Node, a, b *types.ForallType) (values.Value, error) {
	if !v.IsCallable() {
		return e.instantiate(v, n, a, b)
	}
	return values.NewProxy(v, &forallWrapper{engine: e, node: n, a: a, b: b}), nil
}

// instantiate replaces the forall variable with a fresh bound variable on
// the consumer side and with Any on the producer side, then wraps.
func (e *Engine) instantiate(v values.Value, n blame.Node, a, b *types.ForallType) (values.Value, error) {
	fresh := types.NewBoundTypeVariable(a.TypeVar + "'")
	aBody := types.Substitute(a.Body, a.TypeVar, fresh)
	bBody := types.Substitute(b.Body, b.TypeVar, types.Any)
	return e.Wrap(v, n, aBody, bBody)
}

func (e *Engine) wrapArray(v values.Value, n blame.Node, a, b *types.ArrayType) (values.Value, error) {
	if !v.IsArray() && !v.IsObjectLike() {
		return v, n.Flat().Blame("not of type Array: type is " + v.TypeName())
	}
	if v.IsNull() {
		return v, nil
	}
	return values.NewProxy(v, &arrayWrapper{engine: e, node: n.Obj(), a: a, b: b}), nil
}

func (e *Engine) wrapDictionary(v values.Value, n blame.Node, a, b *types.DictionaryType) (values.Value, error) {
	if !v.IsObjectLike() || v.IsNull() {
		return v, n.Flat().Blame("not of Indexable type")
	}
	return values.NewProxy(v, &dictWrapper{engine: e, node: n.Obj(), a: a, b: b}), nil
}

func (e *Engine) wrapObject(v values.Value, n blame.Node, a, b *types.ObjectType) (values.Value, error) {
	if !v.IsObjectLike() {
		return v, n.Flat().Blame("not of type Obj: type is " + v.TypeName())
	}
	if v.IsNull() {
		return v, nil
	}
	return values.NewProxy(v, &objectWrapper{engine: e, node: n.Obj(), a: a, b: b}), nil
}

// wrapHybrid wraps v in every branch in turn, each wrap applying to the
// result of the previous one, so one access passes every branch once.
func (e *Engine) wrapHybrid(v values.Value, n blame.Node, a, b *types.HybridType) (values.Value, error) {
	inter := n.Inter(a.Types)
	cur := v
	for i := range a.Types {
		var err error
		if cur, err = e.Wrap(cur, inter.Branch(i), a.Types[i], b.Types[i]); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (e *Engine) wrapUnion(v values.Value, n blame.Node, a, b *types.UnionType) (values.Value, error) {
	if v.IsAbsent() {
		return v, nil
	}
	if len(a.Types) == 0 {
		panic(tserr.Invariantf("empty union type"))
	}
	return e.Wrap(v, n, a.Types[0], b.Types[0])
}

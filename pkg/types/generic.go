package types

import (
	tserr "github.com/nooga/tsblame/pkg/errors"
)

// Substitute replaces every free occurrence of the type variable name in t
// with replacement. It never mutates t; unchanged subtrees are shared.
func Substitute(t Type, name string, replacement Type) Type {
	switch t := t.(type) {
	case anyType, *BaseType, *BoundTypeVariable:
		return t

	case *TypeVariable:
		if t.Name == name {
			return replacement
		}
		return t

	case *ForallType:
		// The forall rebinds name, so nothing below it is free.
		if t.TypeVar == name {
			return t
		}
		return NewForallType(t.TypeVar, Substitute(t.Body, name, replacement))

	case *FunctionType:
		sub := func(p Type) Type { return Substitute(p, name, replacement) }
		var rest Type
		if t.Rest != nil {
			rest = sub(t.Rest)
		}
		return &FunctionType{
			Required:  mapTypes(t.Required, sub),
			Optional:  mapTypes(t.Optional, sub),
			Rest:      rest,
			Return:    sub(t.Return),
			Construct: sub(t.Construct),
		}

	case *ArrayType:
		return NewArrayType(Substitute(t.Elem, name, replacement))

	case *DictionaryType:
		return NewDictionaryType(Substitute(t.Elem, name, replacement))

	case *ObjectType:
		return t.mapProperties(func(p Type) Type { return Substitute(p, name, replacement) })

	case *HybridType:
		return &HybridType{Types: mapTypes(t.Types, func(p Type) Type { return Substitute(p, name, replacement) })}

	case *UnionType:
		return &UnionType{Types: mapTypes(t.Types, func(p Type) Type { return Substitute(p, name, replacement) })}

	case *LazyType:
		// The target may not be registered yet; defer to resolution.
		return &BoundLazyType{Lazy: t, Pending: []Substitution{{Var: name, Replacement: replacement}}}

	case *BoundLazyType:
		if t.Binds(name) {
			return t
		}
		return t.with(Substitution{Var: name, Replacement: replacement})

	default:
		panic(tserr.Invariantf("substitute: unrecognised type %T", t))
	}
}

func mapTypes(ts []Type, fn func(Type) Type) []Type {
	res := make([]Type, len(ts))
	for i, t := range ts {
		res[i] = fn(t)
	}
	return res
}

// Resolve looks a Lazy or BoundLazy type up in its cache and applies
// pending substitutions in order. Other types are returned unchanged.
func Resolve(t Type) Type {
	switch lt := t.(type) {
	case *LazyType:
		return lt.cache.Resolve(lt.Name)
	case *BoundLazyType:
		resolved := lt.Lazy.cache.Resolve(lt.Lazy.Name)
		for _, s := range lt.Pending {
			resolved = Substitute(resolved, s.Var, s.Replacement)
		}
		return resolved
	}
	return t
}

// Unfold resolves t until a non-lazy type appears.
func Unfold(t Type) Type {
	for i := 0; ; i++ {
		switch t.Kind() {
		case KindLazy, KindBoundLazy:
			if i > 1024 {
				panic(tserr.Invariantf("lazy type %s does not unfold to a concrete type", t))
			}
			t = Resolve(t)
		default:
			return t
		}
	}
}

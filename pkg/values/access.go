package values

import (
	"math"
	"strconv"
	"unicode/utf8"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

func errorNotA(v Value, what string) error {
	return tserr.Runtimef("%s is not a %s", v.Inspect(), what)
}

func parseIndex(name string) int {
	n, _ := strconv.Atoi(name)
	return n
}

// GetProperty reads name from v, walking the prototype chain and running
// proxy traps.
func GetProperty(v Value, name string) (Value, error) {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return Undefined, tserr.Runtimef("Cannot read property '%s' of %s", name, v.ToString())
	case TypeProxy:
		p := v.AsProxy()
		return p.handler.Get(p.target, name)
	case TypeBoolean, TypeNumber:
		return GetProperty(DefaultObjectPrototype, name)
	case TypeString:
		s := v.AsString()
		if name == "length" {
			return NumberValue(float64(utf8.RuneCountInString(s))), nil
		}
		if IsIndex(name) {
			runes := []rune(s)
			if i := parseIndex(name); i < len(runes) {
				return NewString(string(runes[i])), nil
			}
			return Undefined, nil
		}
		return GetProperty(DefaultObjectPrototype, name)
	case TypeArray:
		arr := v.AsArray()
		if name == "length" {
			return NumberValue(float64(arr.length)), nil
		}
		if IsIndex(name) {
			return arr.Get(parseIndex(name)), nil
		}
	case TypeFunction:
		fn := v.AsFunction()
		if _, own := fn.props[name]; !own {
			switch name {
			case "name":
				return NewString(fn.name), nil
			case "length":
				return NumberValue(float64(fn.arity)), nil
			}
		}
	case TypeBoundFunction:
		if name == "name" {
			return NewString("bound " + v.AsBoundFunction().target.Unwrap().functionName()), nil
		}
	case TypeRegExp, TypeBuffer:
		if res, ok := hostGet(v, name); ok {
			return res, nil
		}
	}

	obj := v.objectOf()
	if obj == nil {
		return Undefined, nil
	}
	if p, ok := obj.props[name]; ok {
		return p.Value, nil
	}
	if obj.prototype.IsAbsent() {
		return Undefined, nil
	}
	return GetProperty(obj.prototype, name)
}

// SetProperty assigns val to name on v. Assignments that the object refuses
// (read-only or frozen properties, primitives) are ignored silently.
func SetProperty(v Value, name string, val Value) error {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return tserr.Runtimef("Cannot set property '%s' of %s", name, v.ToString())
	case TypeProxy:
		p := v.AsProxy()
		return p.handler.Set(p.target, name, val)
	case TypeBoolean, TypeNumber, TypeString:
		return nil
	case TypeArray:
		arr := v.AsArray()
		if name == "length" {
			if val.IsNumber() {
				if n := val.AsNumber(); n >= 0 && n < math.MaxUint32 {
					arr.SetLength(int(n))
				}
			}
			return nil
		}
		if IsIndex(name) {
			arr.Set(parseIndex(name), val)
			return nil
		}
	case TypeBuffer:
		buf := v.AsBuffer()
		if IsIndex(name) {
			if i := parseIndex(name); i < len(buf.data) && val.IsNumber() && !buf.frozenAll {
				buf.data[i] = byte(int(val.AsNumber()))
			}
			return nil
		}
	}
	v.objectOf().put(name, val)
	return nil
}

// GetIndex reads element i of an array-like value.
func GetIndex(v Value, i int) (Value, error) {
	return GetProperty(v, strconv.Itoa(i))
}

// SetIndex writes element i of an array-like value.
func SetIndex(v Value, i int, val Value) error {
	return SetProperty(v, strconv.Itoa(i), val)
}

// Call applies fn with the given receiver. Proxies always reach their
// handler, even over non-callable targets.
func Call(fn Value, this Value, args []Value) (Value, error) {
	switch fn.typ {
	case TypeFunction:
		return fn.AsFunction().fn(this, args)
	case TypeBoundFunction:
		b := fn.AsBoundFunction()
		return Call(b.target, b.this, append(append([]Value(nil), b.args...), args...))
	case TypeProxy:
		p := fn.AsProxy()
		return p.handler.Apply(p.target, this, args)
	}
	return Undefined, errorNotA(fn, "function")
}

// Construct invokes fn as a constructor: a fresh instance inheriting from
// fn.prototype is passed as the receiver and returned unless fn returns an
// object of its own.
func Construct(fn Value, args []Value) (Value, error) {
	switch fn.typ {
	case TypeFunction:
		proto, err := GetProperty(fn, "prototype")
		if err != nil {
			return Undefined, err
		}
		instance := NewObjectWithPrototype(proto)
		res, err := fn.AsFunction().fn(instance, args)
		if err != nil {
			return Undefined, err
		}
		if !res.IsAbsent() && res.IsObjectLike() {
			return res, nil
		}
		return instance, nil
	case TypeBoundFunction:
		b := fn.AsBoundFunction()
		return Construct(b.target, append(append([]Value(nil), b.args...), args...))
	case TypeProxy:
		p := fn.AsProxy()
		return p.handler.Construct(p.target, args)
	}
	return Undefined, errorNotA(fn, "constructor")
}

// OwnProperty returns the own property descriptor of name, looking through
// proxies to the innermost target without running traps.
func OwnProperty(v Value, name string) (Property, bool) {
	v = v.Unwrap()
	switch v.typ {
	case TypeString:
		s := v.AsString()
		if name == "length" {
			return Property{Value: NumberValue(float64(utf8.RuneCountInString(s)))}, true
		}
		if IsIndex(name) {
			runes := []rune(s)
			if i := parseIndex(name); i < len(runes) {
				return Property{Value: NewString(string(runes[i])), Enumerable: true}, true
			}
		}
		return Property{}, false
	case TypeArray:
		arr := v.AsArray()
		if name == "length" {
			return Property{Value: NumberValue(float64(arr.length)), Writable: !arr.frozenAll}, true
		}
		if IsIndex(name) {
			if el, ok := arr.lookup(parseIndex(name)); ok {
				mutable := !arr.frozenAll
				return Property{Value: el, Writable: mutable, Enumerable: true, Configurable: mutable}, true
			}
			return Property{}, false
		}
	case TypeFunction:
		fn := v.AsFunction()
		if _, own := fn.props[name]; !own {
			switch name {
			case "name":
				return Property{Value: NewString(fn.name), Configurable: true}, true
			case "length":
				return Property{Value: NumberValue(float64(fn.arity)), Configurable: true}, true
			}
		}
	}
	obj := v.objectOf()
	if obj == nil {
		return Property{}, false
	}
	return obj.Own(name)
}

// HasOwnProperty reports whether v has an own property called name.
func HasOwnProperty(v Value, name string) bool {
	_, ok := OwnProperty(v, name)
	return ok
}

// OwnKeys lists own enumerable-or-not property names of the innermost
// target: array indices first, then named properties in insertion order.
func OwnKeys(v Value) []string {
	v = v.Unwrap()
	switch v.typ {
	case TypeArray:
		arr := v.AsArray()
		return append(arr.indexKeys(), arr.keys...)
	case TypeString:
		n := utf8.RuneCountInString(v.AsString())
		keys := make([]string, n)
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	obj := v.objectOf()
	if obj == nil {
		return nil
	}
	return obj.Keys()
}

// DefineProperty defines an own property with explicit attributes on the
// innermost target. It reports false when the object refuses.
func DefineProperty(v Value, name string, p Property) bool {
	obj := v.Unwrap().objectOf()
	if obj == nil {
		return false
	}
	return obj.DefineOwnProperty(name, p)
}

// Freeze makes v and, for arrays, its elements read-only.
func Freeze(v Value) {
	if obj := v.Unwrap().objectOf(); obj != nil {
		obj.Freeze()
	}
}

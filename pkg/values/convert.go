package values

import (
	"fmt"
	"time"
	"unsafe"
)

// FromGo converts decoded JSON or YAML data into host values. Objects keep
// their keys sorted so conversion is deterministic.
func FromGo(x interface{}) Value {
	switch x := x.(type) {
	case nil:
		return Null
	case Value:
		return x
	case bool:
		return BooleanValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case uint64:
		return NumberValue(float64(x))
	case string:
		return NewString(x)
	case time.Time:
		return NewDate(x)
	case []byte:
		return NewBuffer(x)
	case []interface{}:
		elems := make([]Value, len(x))
		for i, el := range x {
			elems[i] = FromGo(el)
		}
		return NewArray(elems...)
	case map[string]interface{}:
		obj := NewObject()
		for _, k := range sortedKeys(x) {
			obj.AsObject().put(k, FromGo(x[k]))
		}
		return obj
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = v
		}
		return FromGo(m)
	}
	return NewString(fmt.Sprint(x))
}

// ToGo converts a host value back into plain Go data, looking through
// proxies without running traps. Functions become their inspected form.
func ToGo(v Value) interface{} {
	return toGo(v, map[unsafe.Pointer]bool{})
}

func toGo(v Value, seen map[unsafe.Pointer]bool) interface{} {
	v = v.Unwrap()
	switch v.typ {
	case TypeUndefined, TypeNull:
		return nil
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		return v.AsNumber()
	case TypeString:
		return v.AsString()
	case TypeDate:
		return v.AsDate().time
	case TypeBuffer:
		return v.AsBuffer().data
	case TypeRegExp, TypeFunction, TypeBoundFunction:
		return v.Inspect()
	}
	if seen[v.obj] {
		return "[Circular]"
	}
	seen[v.obj] = true
	defer delete(seen, v.obj)
	if v.typ == TypeArray {
		elems := v.AsArray().Elements()
		res := make([]interface{}, len(elems))
		for i, el := range elems {
			res[i] = toGo(el, seen)
		}
		return res
	}
	obj := v.objectOf()
	res := make(map[string]interface{}, len(obj.keys))
	for _, k := range obj.keys {
		res[k] = toGo(obj.props[k].Value, seen)
	}
	return res
}

// Visitor is called for every value reached by Walk with its dotted path.
type Visitor func(path string, v Value) error

// Walk visits v and every property reachable from it through the regular
// access path, so contracts on the way are exercised. Functions are visited
// but not called; cycles are cut.
func Walk(v Value, visit Visitor) error {
	return walk("", v, visit, map[unsafe.Pointer]bool{})
}

func walk(path string, v Value, visit Visitor, seen map[unsafe.Pointer]bool) error {
	if err := visit(path, v); err != nil {
		return err
	}
	if v.IsAbsent() || !v.IsObjectLike() || v.IsCallable() || v.Unwrap().IsHost() {
		return nil
	}
	inner := v.Unwrap()
	if seen[inner.obj] {
		return nil
	}
	seen[inner.obj] = true
	for _, k := range OwnKeys(v) {
		child, err := GetProperty(v, k)
		if err != nil {
			return err
		}
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		if err := walk(childPath, child, visit, seen); err != nil {
			return err
		}
	}
	return nil
}

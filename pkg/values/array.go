package values

import (
	"math"
	"strconv"
	"strings"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// maxListLength bounds the array-likes copied into Go slices.
const maxListLength = 1 << 24

// IsIndex reports whether name is a canonical array index: a decimal
// integer without sign, padding or leading zeros, below 2^32-1.
func IsIndex(name string) bool {
	if name == "" || len(name) > 10 {
		return false
	}
	if len(name) > 1 && name[0] == '0' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(name, 10, 64)
	return err == nil && n < math.MaxUint32
}

// lengthOf reads "length" through the regular access path so arrays behind
// a proxy are measured by their handler.
func lengthOf(v Value) (int, error) {
	l, err := GetProperty(v, "length")
	if err != nil {
		return 0, err
	}
	if !l.IsNumber() {
		return 0, nil
	}
	n := l.AsNumber()
	if math.IsNaN(n) || n < 0 {
		return 0, nil
	}
	return int(n), nil
}

// ListFromArrayLike reads elements 0..length-1 of v.
func ListFromArrayLike(v Value) ([]Value, error) {
	if v.IsAbsent() {
		return nil, nil
	}
	n, err := lengthOf(v)
	if err != nil {
		return nil, err
	}
	if n > maxListLength {
		return nil, tserr.Runtimef("array length %d is too large to list", n)
	}
	list := make([]Value, n)
	for i := range list {
		if list[i], err = GetIndex(v, i); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func installArrayMethods(proto *PlainObject) {
	define := func(name string, arity int, fn NativeFunc) {
		proto.DefineOwnProperty(name, Property{Value: NewNativeFunction(name, arity, fn), Writable: true, Configurable: true})
	}
	define("push", 1, func(this Value, args []Value) (Value, error) {
		n, err := lengthOf(this)
		if err != nil {
			return Undefined, err
		}
		for _, arg := range args {
			if err := SetIndex(this, n, arg); err != nil {
				return Undefined, err
			}
			n++
		}
		return NumberValue(float64(n)), nil
	})
	define("pop", 0, func(this Value, args []Value) (Value, error) {
		n, err := lengthOf(this)
		if err != nil || n == 0 {
			return Undefined, err
		}
		last, err := GetIndex(this, n-1)
		if err != nil {
			return Undefined, err
		}
		return last, SetProperty(this, "length", NumberValue(float64(n-1)))
	})
	define("join", 1, func(this Value, args []Value) (Value, error) {
		sep := ","
		if s := argOrUndefined(args, 0); !s.IsUndefined() {
			sep = s.ToString()
		}
		list, err := ListFromArrayLike(this)
		if err != nil {
			return Undefined, err
		}
		parts := make([]string, len(list))
		for i, el := range list {
			if !el.IsAbsent() {
				parts[i] = el.ToString()
			}
		}
		return NewString(strings.Join(parts, sep)), nil
	})
	define("indexOf", 1, func(this Value, args []Value) (Value, error) {
		list, err := ListFromArrayLike(this)
		if err != nil {
			return Undefined, err
		}
		needle := argOrUndefined(args, 0)
		for i, el := range list {
			if el.StrictlyEquals(needle) {
				return NumberValue(float64(i)), nil
			}
		}
		return NumberValue(-1), nil
	})
}

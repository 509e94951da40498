package values

import (
	"unsafe"
)

// NativeFunc is the Go implementation behind a function value. Returning a
// non-nil error aborts the call, the way a thrown exception would.
type NativeFunc func(this Value, args []Value) (Value, error)

// FunctionObject is a callable backed by a NativeFunc.
type FunctionObject struct {
	Object
	arity int
	name  string
	fn    NativeFunc
}

func (f *FunctionObject) Name() string { return f.name }
func (f *FunctionObject) Arity() int   { return f.arity }

// BoundFunctionObject fixes the receiver and leading arguments of a target.
type BoundFunctionObject struct {
	Object
	target Value
	this   Value
	args   []Value
}

func (b *BoundFunctionObject) Target() Value { return b.target }
func (b *BoundFunctionObject) This() Value   { return b.this }

// NewFunction creates a function value. Like ordinary script functions it
// carries an own "prototype" object used when it is constructed.
func NewFunction(name string, arity int, fn NativeFunc) Value {
	fnObj := &FunctionObject{Object: newObject(DefaultFunctionPrototype), arity: arity, name: name, fn: fn}
	fnObj.DefineOwnProperty("prototype", Property{Value: NewObject(), Writable: true})
	return Value{typ: TypeFunction, obj: unsafe.Pointer(fnObj)}
}

// NewNativeFunction creates a function without a "prototype" property, as
// built-in methods are.
func NewNativeFunction(name string, arity int, fn NativeFunc) Value {
	fnObj := &FunctionObject{Object: newObject(DefaultFunctionPrototype), arity: arity, name: name, fn: fn}
	return Value{typ: TypeFunction, obj: unsafe.Pointer(fnObj)}
}

// Bind returns fn with its receiver fixed to this.
func Bind(fn Value, this Value, args ...Value) Value {
	bound := &BoundFunctionObject{
		Object: newObject(DefaultFunctionPrototype),
		target: fn,
		this:   this,
		args:   append([]Value(nil), args...),
	}
	return Value{typ: TypeBoundFunction, obj: unsafe.Pointer(bound)}
}

func argOrUndefined(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func installObjectMethods(proto *PlainObject) {
	define := func(name string, arity int, fn NativeFunc) {
		proto.DefineOwnProperty(name, Property{Value: NewNativeFunction(name, arity, fn), Writable: true, Configurable: true})
	}
	define("hasOwnProperty", 1, func(this Value, args []Value) (Value, error) {
		return BooleanValue(HasOwnProperty(this, argOrUndefined(args, 0).ToString())), nil
	})
	define("toString", 0, func(this Value, args []Value) (Value, error) {
		return NewString(this.ToString()), nil
	})
	define("valueOf", 0, func(this Value, args []Value) (Value, error) {
		return this, nil
	})
}

func installFunctionMethods(proto *PlainObject) {
	define := func(name string, arity int, fn NativeFunc) {
		proto.DefineOwnProperty(name, Property{Value: NewNativeFunction(name, arity, fn), Writable: true, Configurable: true})
	}
	define("call", 1, func(this Value, args []Value) (Value, error) {
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return Call(this, argOrUndefined(args, 0), rest)
	})
	define("apply", 2, func(this Value, args []Value) (Value, error) {
		list, err := ListFromArrayLike(argOrUndefined(args, 1))
		if err != nil {
			return Undefined, err
		}
		return Call(this, argOrUndefined(args, 0), list)
	})
	define("bind", 1, func(this Value, args []Value) (Value, error) {
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return Bind(this, argOrUndefined(args, 0), rest...), nil
	})
}

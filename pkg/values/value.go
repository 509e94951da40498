package values

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeNumber
	TypeString

	TypeObject
	TypeArray
	TypeFunction
	TypeBoundFunction

	// Host kinds that are passed through contracts unwrapped.
	TypeRegExp
	TypeDate
	TypeBuffer

	TypeProxy
)

// String returns a human-readable name of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	case TypeBoundFunction:
		return "bound function"
	case TypeRegExp:
		return "regexp"
	case TypeDate:
		return "date"
	case TypeBuffer:
		return "buffer"
	case TypeProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

type StringObject struct {
	value string
}

// Value is a dynamically typed host value. Composite payloads live behind
// obj; primitives are packed into payload.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

func NewDate(t time.Time) Value {
	return Value{typ: TypeDate, obj: unsafe.Pointer(&DateObject{Object: newObject(DefaultDatePrototype), time: t})}
}

func NewBuffer(data []byte) Value {
	return Value{typ: TypeBuffer, obj: unsafe.Pointer(&BufferObject{Object: newObject(DefaultBufferPrototype), data: data})}
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsProxy() bool     { return v.typ == TypeProxy }

// IsAbsent reports null or undefined.
func (v Value) IsAbsent() bool {
	return v.typ == TypeUndefined || v.typ == TypeNull
}

// IsHost reports the host kinds that must never be intercepted.
func (v Value) IsHost() bool {
	return v.typ == TypeRegExp || v.typ == TypeDate || v.typ == TypeBuffer
}

// IsCallable reports whether the value can be applied. A proxy is callable
// when its target is.
func (v Value) IsCallable() bool {
	switch v.typ {
	case TypeFunction, TypeBoundFunction:
		return true
	case TypeProxy:
		return v.AsProxy().target.IsCallable()
	}
	return false
}

// IsArray follows Array.isArray: a proxy over an array is an array.
func (v Value) IsArray() bool {
	switch v.typ {
	case TypeArray:
		return true
	case TypeProxy:
		return v.AsProxy().target.IsArray()
	}
	return false
}

// TypeName returns the result of the typeof operator.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeFunction, TypeBoundFunction:
		return "function"
	case TypeObject, TypeArray, TypeRegExp, TypeDate, TypeBuffer:
		return "object"
	case TypeProxy:
		return v.AsProxy().target.TypeName()
	default:
		return fmt.Sprintf("<unknown type: %d>", v.typ)
	}
}

// IsObjectLike reports typeof "object" or "function", null included.
func (v Value) IsObjectLike() bool {
	n := v.TypeName()
	return n == "object" || n == "function"
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

func (v Value) AsObject() *PlainObject {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return (*PlainObject)(v.obj)
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return (*ArrayObject)(v.obj)
}

func (v Value) AsFunction() *FunctionObject {
	if v.typ != TypeFunction {
		panic("value is not a function")
	}
	return (*FunctionObject)(v.obj)
}

func (v Value) AsBoundFunction() *BoundFunctionObject {
	if v.typ != TypeBoundFunction {
		panic("value is not a bound function")
	}
	return (*BoundFunctionObject)(v.obj)
}

func (v Value) AsRegExp() *RegExpObject {
	if v.typ != TypeRegExp {
		panic("value is not a regexp")
	}
	return (*RegExpObject)(v.obj)
}

func (v Value) AsDate() *DateObject {
	if v.typ != TypeDate {
		panic("value is not a date")
	}
	return (*DateObject)(v.obj)
}

func (v Value) AsBuffer() *BufferObject {
	if v.typ != TypeBuffer {
		panic("value is not a buffer")
	}
	return (*BufferObject)(v.obj)
}

func (v Value) AsProxy() *ProxyObject {
	if v.typ != TypeProxy {
		panic("value is not a proxy")
	}
	return (*ProxyObject)(v.obj)
}

// Unwrap strips every proxy layer and returns the innermost target.
func (v Value) Unwrap() Value {
	for v.typ == TypeProxy {
		v = v.AsProxy().target
	}
	return v
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToString converts the value to a string without running any proxy trap.
func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.AsNumber())
	case TypeString:
		return v.AsString()
	case TypeObject:
		return "[object Object]"
	case TypeArray:
		elems := v.AsArray().Elements()
		parts := make([]string, len(elems))
		for i, el := range elems {
			if !el.IsAbsent() {
				parts[i] = el.ToString()
			}
		}
		return strings.Join(parts, ",")
	case TypeFunction, TypeBoundFunction:
		return v.Inspect()
	case TypeRegExp:
		re := v.AsRegExp()
		return "/" + re.source + "/" + re.flags
	case TypeDate:
		return v.AsDate().time.Format(time.RFC1123)
	case TypeBuffer:
		return string(v.AsBuffer().data)
	case TypeProxy:
		return v.AsProxy().target.ToString()
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// Inspect returns a developer-friendly representation of Value, similar to a REPL.
// Proxies are inspected through their target so no trap fires.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeFunction:
		fn := v.AsFunction()
		if fn.name != "" {
			return fmt.Sprintf("[Function: %s]", fn.name)
		}
		return "[Function (anonymous)]"
	case TypeBoundFunction:
		return "[Function: bound " + v.AsBoundFunction().target.Unwrap().functionName() + "]"
	case TypeObject:
		obj := v.AsObject()
		parts := make([]string, 0, len(obj.keys))
		for _, k := range obj.keys {
			parts = append(parts, k+": "+obj.props[k].Value.Inspect())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeArray:
		arr := v.AsArray().Elements()
		elems := make([]string, len(arr))
		for i, el := range arr {
			elems[i] = el.Inspect()
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case TypeDate:
		return v.AsDate().time.Format(time.RFC3339)
	case TypeBuffer:
		return fmt.Sprintf("<Buffer %x>", v.AsBuffer().data)
	case TypeProxy:
		return v.AsProxy().target.Inspect()
	default:
		return v.ToString()
	}
}

func (v Value) functionName() string {
	if v.typ == TypeFunction {
		return v.AsFunction().name
	}
	return ""
}

// IsFalsey checks if the value is considered falsey according to ECMAScript rules.
func (v Value) IsFalsey() bool {
	switch v.typ {
	case TypeNull, TypeUndefined:
		return true
	case TypeBoolean:
		return !v.AsBoolean()
	case TypeNumber:
		f := v.AsNumber()
		return f == 0 || math.IsNaN(f)
	case TypeString:
		return v.AsString() == ""
	default:
		return false
	}
}

// StrictlyEquals compares two values using `===`. Composite values compare
// by identity, so a proxy never equals its target.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeNumber:
		vf, of := v.AsNumber(), other.AsNumber()
		if math.IsNaN(vf) || math.IsNaN(of) {
			return false
		}
		return vf == of
	case TypeString:
		return v.AsString() == other.AsString()
	default:
		return v.obj == other.obj
	}
}

// SameIdentity reports whether both values share the same heap object, or
// are equal primitives.
func (v Value) SameIdentity(other Value) bool {
	if v.typ == TypeNumber && other.typ == TypeNumber {
		return v.payload == other.payload
	}
	return v.StrictlyEquals(other)
}

// sortedKeys returns map keys sorted, used for deterministic conversion.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

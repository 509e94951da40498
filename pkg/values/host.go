package values

import (
	"encoding/hex"
	"strings"
	"time"
	"unsafe"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// RegExpObject is a pattern-matching host object. Contracts pass it through
// untouched.
type RegExpObject struct {
	Object
	source string
	flags  string
	re     *regexp2.Regexp
}

// NewRegExp compiles pattern with ECMAScript semantics. Supported flags are
// i, m, s and g.
func NewRegExp(pattern, flags string) (Value, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g':
		default:
			return Undefined, errors.Errorf("invalid regular expression flag %q", f)
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return Undefined, errors.Wrapf(err, "invalid regular expression /%s/", pattern)
	}
	reObj := &RegExpObject{Object: newObject(DefaultRegExpPrototype), source: pattern, flags: flags, re: re}
	return Value{typ: TypeRegExp, obj: unsafe.Pointer(reObj)}, nil
}

func (r *RegExpObject) Source() string { return r.source }
func (r *RegExpObject) Flags() string  { return r.flags }

// Test reports whether s contains a match.
func (r *RegExpObject) Test(s string) (bool, error) {
	return r.re.MatchString(s)
}

// DateObject wraps a point in time.
type DateObject struct {
	Object
	time time.Time
}

func (d *DateObject) Time() time.Time { return d.time }

// BufferObject is raw binary data.
type BufferObject struct {
	Object
	data []byte
}

func (b *BufferObject) Bytes() []byte { return b.data }

func installHostMethods() {
	define := func(proto Value, name string, arity int, fn NativeFunc) {
		proto.AsObject().DefineOwnProperty(name, Property{Value: NewNativeFunction(name, arity, fn), Writable: true, Configurable: true})
	}
	define(DefaultRegExpPrototype, "test", 1, func(this Value, args []Value) (Value, error) {
		if this.Type() != TypeRegExp {
			return Undefined, errorNotA(this, "RegExp")
		}
		ok, err := this.AsRegExp().Test(argOrUndefined(args, 0).ToString())
		if err != nil {
			return Undefined, errors.Wrap(err, "regexp match")
		}
		return BooleanValue(ok), nil
	})
	define(DefaultDatePrototype, "getTime", 0, func(this Value, args []Value) (Value, error) {
		if this.Type() != TypeDate {
			return Undefined, errorNotA(this, "Date")
		}
		return NumberValue(float64(this.AsDate().time.UnixMilli())), nil
	})
	define(DefaultDatePrototype, "toISOString", 0, func(this Value, args []Value) (Value, error) {
		if this.Type() != TypeDate {
			return Undefined, errorNotA(this, "Date")
		}
		return NewString(this.AsDate().time.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})
	define(DefaultBufferPrototype, "toString", 1, func(this Value, args []Value) (Value, error) {
		if this.Type() != TypeBuffer {
			return Undefined, errorNotA(this, "Buffer")
		}
		data := this.AsBuffer().data
		if enc := argOrUndefined(args, 0); enc.IsString() && strings.EqualFold(enc.AsString(), "hex") {
			return NewString(hex.EncodeToString(data)), nil
		}
		return NewString(string(data)), nil
	})
}

// hostGet resolves the built-in data properties of host objects.
func hostGet(v Value, name string) (Value, bool) {
	switch v.typ {
	case TypeRegExp:
		re := v.AsRegExp()
		switch name {
		case "source":
			return NewString(re.source), true
		case "flags":
			return NewString(re.flags), true
		case "global":
			return BooleanValue(strings.ContainsRune(re.flags, 'g')), true
		}
	case TypeBuffer:
		buf := v.AsBuffer()
		if name == "length" {
			return NumberValue(float64(len(buf.data))), true
		}
		if IsIndex(name) {
			i := parseIndex(name)
			if i < len(buf.data) {
				return NumberValue(float64(buf.data[i])), true
			}
			return Undefined, true
		}
	}
	return Undefined, false
}

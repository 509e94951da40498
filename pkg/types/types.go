package types

import (
	"fmt"
	"strings"
	"sync/atomic"

	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/values"
)

// Kind is the structural tag of a Type, used for wrap dispatch.
type Kind int

const (
	KindAny Kind = iota
	KindBase
	KindFunction
	KindForall
	KindTypeVariable
	KindBoundTypeVariable
	KindArray
	KindDictionary
	KindObject
	KindHybrid
	KindLazy
	KindBoundLazy
	KindUnion
)

var kindNames = [...]string{
	KindAny:               "AnyType",
	KindBase:              "BaseType",
	KindFunction:          "FunctionType",
	KindForall:            "ForallType",
	KindTypeVariable:      "TypeVariable",
	KindBoundTypeVariable: "BoundTypeVariable",
	KindArray:             "ArrayType",
	KindDictionary:        "DictionaryType",
	KindObject:            "ObjectType",
	KindHybrid:            "HybridType",
	KindLazy:              "LazyType",
	KindBoundLazy:         "BoundLazyType",
	KindUnion:             "UnionType",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		panic(tserr.Invariantf("unrecognised type kind %d", int(k)))
	}
	return kindNames[k]
}

// Type is the interface implemented by all contract types. Types are
// immutable once built; substitution always produces new values.
type Type interface {
	// String returns the human-readable description used in blame messages.
	String() string
	// Kind returns the structural tag.
	Kind() Kind
	// Equals checks if this type is structurally equivalent to another type.
	Equals(other Type) bool

	// typeNode() is a marker method to ensure only types defined in this package
	// can be assigned to the Type interface.
	typeNode()
}

// --- Any ---

type anyType struct{}

func (anyType) String() string         { return "Any" }
func (anyType) Kind() Kind             { return KindAny }
func (anyType) Equals(other Type) bool { return other == Any }
func (anyType) typeNode()              {}

// Any accepts every value and is never wrapped.
var Any Type = anyType{}

// --- Base Types ---

// Predicate decides whether a raw value satisfies a base type.
type Predicate func(v values.Value) bool

// BaseType is a first-order type checked by a predicate at wrap time.
type BaseType struct {
	Name     string
	Contract Predicate
}

func NewBaseType(name string, contract Predicate) *BaseType {
	return &BaseType{Name: name, Contract: contract}
}

func (b *BaseType) String() string { return b.Name }
func (b *BaseType) Kind() Kind     { return KindBase }
func (b *BaseType) typeNode()      {}
func (b *BaseType) Equals(other Type) bool {
	o, ok := other.(*BaseType)
	return ok && o.Name == b.Name
}

func typeofIs(name string) Predicate {
	return func(v values.Value) bool { return v.TypeName() == name }
}

// Pre-defined base types
var (
	Num  = NewBaseType("Num", typeofIs("number"))
	Bool = NewBaseType("Bool", typeofIs("boolean"))
	Str  = NewBaseType("Str", typeofIs("string"))
	Void = NewBaseType("Void", typeofIs("undefined"))
	Obj  = NewBaseType("Obj", typeofIs("object"))
	Fun  = NewBaseType("Fun", typeofIs("function"))
	Null = NewBaseType("Null", func(v values.Value) bool { return v.IsAbsent() })
	Arr  = NewBaseType("Arr", func(v values.Value) bool { return v.IsArray() })
)

// --- Function Types ---

// FunctionType describes a callable with required, optional and rest
// parameters, a return type and the type of instances it constructs.
type FunctionType struct {
	Required  []Type
	Optional  []Type
	Rest      Type // nil when the function takes no rest parameter
	Return    Type
	Construct Type
}

// NewFunctionType copies the parameter slices; a nil return or construct
// type means Any.
func NewFunctionType(required, optional []Type, rest, ret, construct Type) *FunctionType {
	if ret == nil {
		ret = Any
	}
	if construct == nil {
		construct = Any
	}
	return &FunctionType{
		Required:  append([]Type(nil), required...),
		Optional:  append([]Type(nil), optional...),
		Rest:      rest,
		Return:    ret,
		Construct: construct,
	}
}

// MinArgs is the number of required parameters.
func (ft *FunctionType) MinArgs() int { return len(ft.Required) }

// MaxArgs is the number of declared positional parameters; -1 with a rest
// parameter.
func (ft *FunctionType) MaxArgs() int {
	if ft.Rest != nil {
		return -1
	}
	return len(ft.Required) + len(ft.Optional)
}

func paramString(t Type) string {
	switch t.Kind() {
	case KindFunction, KindForall:
		return "(" + t.String() + ")"
	}
	return t.String()
}

func (ft *FunctionType) String() string {
	params := make([]string, 0, len(ft.Required)+len(ft.Optional)+1)
	for _, p := range ft.Required {
		params = append(params, paramString(p))
	}
	for _, p := range ft.Optional {
		params = append(params, paramString(p)+"?")
	}
	if ft.Rest != nil {
		params = append(params, paramString(ft.Rest)+"*")
	}
	var sb strings.Builder
	if len(params) == 0 {
		sb.WriteString("()")
	} else {
		sb.WriteString(strings.Join(params, " -> "))
	}
	sb.WriteString(" -> ")
	sb.WriteString(paramString(ft.Return))
	if ft.Construct.Kind() != KindAny {
		sb.WriteString("  C:")
		sb.WriteString(ft.Construct.String())
	}
	return sb.String()
}

func (ft *FunctionType) Kind() Kind { return KindFunction }
func (ft *FunctionType) typeNode()  {}
func (ft *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok {
		return false
	}
	if ft == o {
		return true
	}
	if !equalSlices(ft.Required, o.Required) || !equalSlices(ft.Optional, o.Optional) {
		return false
	}
	if (ft.Rest == nil) != (o.Rest == nil) {
		return false
	}
	if ft.Rest != nil && !ft.Rest.Equals(o.Rest) {
		return false
	}
	return ft.Return.Equals(o.Return) && ft.Construct.Equals(o.Construct)
}

// --- Polymorphism ---

// ForallType binds TypeVar in Body.
type ForallType struct {
	TypeVar string
	Body    Type
}

func NewForallType(typeVar string, body Type) *ForallType {
	return &ForallType{TypeVar: typeVar, Body: body}
}

func (f *ForallType) String() string { return fmt.Sprintf("forall %s. %s", f.TypeVar, f.Body) }
func (f *ForallType) Kind() Kind     { return KindForall }
func (f *ForallType) typeNode()      {}
func (f *ForallType) Equals(other Type) bool {
	o, ok := other.(*ForallType)
	return ok && o.TypeVar == f.TypeVar && f.Body.Equals(o.Body)
}

// TypeVariable is a free occurrence of a forall-bound name.
type TypeVariable struct {
	Name string
}

func NewTypeVariable(name string) *TypeVariable {
	return &TypeVariable{Name: name}
}

func (tv *TypeVariable) String() string { return tv.Name }
func (tv *TypeVariable) Kind() Kind     { return KindTypeVariable }
func (tv *TypeVariable) typeNode()      {}
func (tv *TypeVariable) Equals(other Type) bool {
	o, ok := other.(*TypeVariable)
	return ok && o.Name == tv.Name
}

var boundCounter atomic.Uint64

// BoundTypeVariable is the opaque variable minted for one instantiation of a
// forall. Two bound variables are equal only if they are the same instance.
type BoundTypeVariable struct {
	Name string
	id   uint64
}

// NewBoundTypeVariable mints a fresh bound variable for name.
func NewBoundTypeVariable(name string) *BoundTypeVariable {
	return &BoundTypeVariable{Name: name, id: boundCounter.Add(1)}
}

// ID is unique per minted variable.
func (bv *BoundTypeVariable) ID() uint64 { return bv.id }

func (bv *BoundTypeVariable) String() string { return bv.Name }
func (bv *BoundTypeVariable) Kind() Kind     { return KindBoundTypeVariable }
func (bv *BoundTypeVariable) typeNode()      {}
func (bv *BoundTypeVariable) Equals(other Type) bool {
	o, ok := other.(*BoundTypeVariable)
	return ok && o == bv
}

func equalSlices(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

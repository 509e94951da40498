package types

import (
	"github.com/nooga/tsblame/pkg/values"
)

// --- Array Types ---

// ArrayType constrains the elements read and written through canonical
// index names.
type ArrayType struct {
	Elem Type
}

func NewArrayType(elem Type) *ArrayType {
	return &ArrayType{Elem: elem}
}

func (at *ArrayType) String() string { return "[" + at.Elem.String() + "]" }
func (at *ArrayType) Kind() Kind     { return KindArray }
func (at *ArrayType) typeNode()      {}
func (at *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && at.Elem.Equals(o.Elem)
}

// --- Dictionary Types ---

// DictionaryType constrains every property of an indexable value.
type DictionaryType struct {
	Elem Type
}

func NewDictionaryType(elem Type) *DictionaryType {
	return &DictionaryType{Elem: elem}
}

func (dt *DictionaryType) String() string { return "{" + dt.Elem.String() + "}" }
func (dt *DictionaryType) Kind() Kind     { return KindDictionary }
func (dt *DictionaryType) typeNode()      {}
func (dt *DictionaryType) Equals(other Type) bool {
	o, ok := other.(*DictionaryType)
	return ok && dt.Elem.Equals(o.Elem)
}

// IsIndex reports whether name is a canonical array index.
func IsIndex(name string) bool {
	return values.IsIndex(name)
}

package types

import (
	"strings"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// --- Object Types ---

// ObjectType maps declared property names to types. Property order is the
// declaration order and is kept for descriptions.
type ObjectType struct {
	names      []string
	Properties map[string]Type
}

// Property is one declared property, used to build object types in order.
type Property struct {
	Name string
	Type Type
}

// NewObjectType builds an object type. Declaring the same name twice is an
// invariant violation.
func NewObjectType(props ...Property) *ObjectType {
	ot := &ObjectType{Properties: make(map[string]Type, len(props))}
	for _, p := range props {
		ot.add(p.Name, p.Type)
	}
	return ot
}

func (ot *ObjectType) add(name string, t Type) {
	if _, exists := ot.Properties[name]; exists {
		panic(tserr.Invariantf("duplicate property %q in object type", name))
	}
	ot.names = append(ot.names, name)
	ot.Properties[name] = t
}

// Names returns declared property names in declaration order.
func (ot *ObjectType) Names() []string {
	return append([]string(nil), ot.names...)
}

// Lookup returns the declared type of name.
func (ot *ObjectType) Lookup(name string) (Type, bool) {
	t, ok := ot.Properties[name]
	return t, ok
}

func (ot *ObjectType) String() string {
	parts := make([]string, len(ot.names))
	for i, name := range ot.names {
		parts[i] = name + ": " + ot.Properties[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (ot *ObjectType) Kind() Kind { return KindObject }
func (ot *ObjectType) typeNode()  {}
func (ot *ObjectType) Equals(other Type) bool {
	o, ok := other.(*ObjectType)
	if !ok || len(o.Properties) != len(ot.Properties) {
		return false
	}
	for name, t := range ot.Properties {
		ot2, exists := o.Properties[name]
		if !exists || !t.Equals(ot2) {
			return false
		}
	}
	return true
}

// mapProperties rebuilds the object with every property type passed
// through fn, keeping declaration order.
func (ot *ObjectType) mapProperties(fn func(Type) Type) *ObjectType {
	res := &ObjectType{Properties: make(map[string]Type, len(ot.names))}
	for _, name := range ot.names {
		res.add(name, fn(ot.Properties[name]))
	}
	return res
}

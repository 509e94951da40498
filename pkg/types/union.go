package types

// --- Union Types ---

// UnionType is only enforced as a nullable: absent values pass, anything
// else is checked against the first branch.
type UnionType struct {
	Types []Type
}

func NewUnionType(types ...Type) *UnionType {
	return &UnionType{Types: append([]Type(nil), types...)}
}

// Nullable is t + Null, the type optional parameters are wrapped under.
func Nullable(t Type) *UnionType {
	return NewUnionType(t, Null)
}

func (ut *UnionType) String() string { return joinTypes(ut.Types, " + ") }
func (ut *UnionType) Kind() Kind     { return KindUnion }
func (ut *UnionType) typeNode()      {}
func (ut *UnionType) Equals(other Type) bool {
	o, ok := other.(*UnionType)
	return ok && equalSlices(ut.Types, o.Types)
}

package types

// --- Hybrid (Intersection) Types ---

// HybridType requires a value to satisfy every branch at once. It encodes
// overloaded signatures.
type HybridType struct {
	Types []Type
}

func NewHybridType(types ...Type) *HybridType {
	return &HybridType{Types: append([]Type(nil), types...)}
}

func (ht *HybridType) String() string { return joinTypes(ht.Types, " && ") }
func (ht *HybridType) Kind() Kind     { return KindHybrid }
func (ht *HybridType) typeNode()      {}
func (ht *HybridType) Equals(other Type) bool {
	o, ok := other.(*HybridType)
	return ok && equalSlices(ht.Types, o.Types)
}

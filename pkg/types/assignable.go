package types

// Compatible is the shallow, kind-specific check that decides whether a
// value can be wrapped from a to b. Both types must have the same kind
// (Lazy and BoundLazy count as one); otherwise it reports false.
func Compatible(a, b Type) bool {
	if na, ok := LazyName(a); ok {
		nb, ok := LazyName(b)
		return ok && na == nb
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case anyType:
		return true
	case *BaseType:
		return a.Name == b.(*BaseType).Name
	case *FunctionType:
		bf := b.(*FunctionType)
		return len(a.Required) == len(bf.Required) &&
			len(a.Optional) == len(bf.Optional) &&
			(a.Rest == nil) == (bf.Rest == nil)
	case *ForallType:
		return a.TypeVar == b.(*ForallType).TypeVar
	case *ArrayType, *DictionaryType:
		return true
	case *ObjectType:
		return compatibleObjects(a, b.(*ObjectType))
	case *HybridType:
		return len(a.Types) == len(b.(*HybridType).Types)
	case *UnionType:
		return len(a.Types) == len(b.(*UnionType).Types)
	}
	return false
}

// compatibleObjects accepts when either side declares nothing or the two
// declare at least one common property.
func compatibleObjects(a, b *ObjectType) bool {
	if len(a.Properties) == 0 || len(b.Properties) == 0 {
		return true
	}
	for name := range a.Properties {
		if _, ok := b.Properties[name]; ok {
			return true
		}
	}
	return false
}

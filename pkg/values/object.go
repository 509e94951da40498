package values

import (
	"slices"
	"strconv"
	"unsafe"
)

// Property is an own property together with its attributes.
type Property struct {
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Frozen reports a non-writable, non-configurable property. Contracts never
// intercept such properties.
func (p Property) Frozen() bool {
	return !p.Writable && !p.Configurable
}

// Object holds the own properties and prototype shared by every object kind.
type Object struct {
	prototype  Value
	keys       []string
	props      map[string]*Property
	frozenAll  bool // set by Freeze; applies to elements of arrays too
	extensible bool
}

func newObject(proto Value) Object {
	return Object{prototype: proto, props: make(map[string]*Property), extensible: true}
}

// Prototype returns the [[Prototype]] of the object.
func (o *Object) Prototype() Value {
	return o.prototype
}

// Own returns an own property.
func (o *Object) Own(name string) (Property, bool) {
	p, ok := o.props[name]
	if !ok {
		return Property{}, false
	}
	return *p, true
}

// Keys returns own property names in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// DefineOwnProperty creates or replaces an own property with the given
// attributes. It reports false when the existing property is not
// configurable or the object is not extensible.
func (o *Object) DefineOwnProperty(name string, p Property) bool {
	if existing, ok := o.props[name]; ok {
		if !existing.Configurable {
			return false
		}
		*existing = p
		return true
	}
	if !o.extensible {
		return false
	}
	o.keys = append(o.keys, name)
	o.props[name] = &p
	return true
}

// put performs an ordinary assignment: existing writable properties are
// updated, new ones are created as plain data properties.
func (o *Object) put(name string, v Value) bool {
	if existing, ok := o.props[name]; ok {
		if !existing.Writable {
			return false
		}
		existing.Value = v
		return true
	}
	return o.DefineOwnProperty(name, Property{Value: v, Writable: true, Enumerable: true, Configurable: true})
}

// Freeze makes every own property read-only and prevents extension.
func (o *Object) Freeze() {
	for _, p := range o.props {
		p.Writable = false
		p.Configurable = false
	}
	o.extensible = false
	o.frozenAll = true
}

// PlainObject is an ordinary object.
type PlainObject struct {
	Object
}

// maxDenseGap bounds how many holes an assignment past the end fills
// eagerly. Elements further out are kept in a sparse map.
const maxDenseGap = 1 << 16

// ArrayObject is an array with a dense prefix, a sparse tail and optional
// named properties. Indices in sparse are >= len(elements) and < length.
type ArrayObject struct {
	Object
	elements []Value
	sparse   map[int]Value
	length   int
}

func (a *ArrayObject) Length() int {
	return a.length
}

// Get returns the element at i, or Undefined for holes and out of range.
func (a *ArrayObject) Get(i int) Value {
	v, _ := a.lookup(i)
	return v
}

func (a *ArrayObject) lookup(i int) (Value, bool) {
	if i < 0 || i >= a.length {
		return Undefined, false
	}
	if i < len(a.elements) {
		return a.elements[i], true
	}
	v, ok := a.sparse[i]
	if !ok {
		return Undefined, false
	}
	return v, true
}

// Set stores v at i. Small gaps past the end are filled with undefined;
// distant indices are stored sparsely.
func (a *ArrayObject) Set(i int, v Value) bool {
	if a.frozenAll || i < 0 {
		return false
	}
	switch {
	case i < len(a.elements):
		a.elements[i] = v
	case i-len(a.elements) <= maxDenseGap:
		a.elements = slices.Grow(a.elements, i+1-len(a.elements))
		for len(a.elements) < i {
			a.elements = append(a.elements, a.takeSparse(len(a.elements)))
		}
		delete(a.sparse, i)
		a.elements = append(a.elements, v)
		for {
			next, ok := a.sparse[len(a.elements)]
			if !ok {
				break
			}
			delete(a.sparse, len(a.elements))
			a.elements = append(a.elements, next)
		}
	default:
		if a.sparse == nil {
			a.sparse = make(map[int]Value)
		}
		a.sparse[i] = v
	}
	if i >= a.length {
		a.length = i + 1
	}
	return true
}

func (a *ArrayObject) takeSparse(i int) Value {
	v, ok := a.sparse[i]
	if !ok {
		return Undefined
	}
	delete(a.sparse, i)
	return v
}

// SetLength truncates the array or extends it with holes.
func (a *ArrayObject) SetLength(n int) bool {
	if a.frozenAll || n < 0 {
		return false
	}
	if n < len(a.elements) {
		a.elements = a.elements[:n]
	}
	for i := range a.sparse {
		if i >= n {
			delete(a.sparse, i)
		}
	}
	a.length = n
	return true
}

// Elements returns a copy of the elements. Holes read as undefined; when
// the array is mostly holes only the stored elements are returned.
func (a *ArrayObject) Elements() []Value {
	if a.length-len(a.elements) > maxDenseGap {
		res := append([]Value(nil), a.elements...)
		for _, i := range a.sparseIndices() {
			res = append(res, a.sparse[i])
		}
		return res
	}
	res := make([]Value, a.length)
	for i := range res {
		res[i] = a.Get(i)
	}
	return res
}

func (a *ArrayObject) sparseIndices() []int {
	indices := make([]int, 0, len(a.sparse))
	for i := range a.sparse {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}

func (a *ArrayObject) indexKeys() []string {
	keys := make([]string, len(a.elements), len(a.elements)+len(a.sparse))
	for i := range a.elements {
		keys[i] = strconv.Itoa(i)
	}
	for _, i := range a.sparseIndices() {
		keys = append(keys, strconv.Itoa(i))
	}
	return keys
}

// Define the shared prototypes. They are populated in init.
var (
	DefaultObjectPrototype   Value
	DefaultArrayPrototype    Value
	DefaultFunctionPrototype Value
	DefaultRegExpPrototype   Value
	DefaultDatePrototype     Value
	DefaultBufferPrototype   Value
)

func init() {
	// The default prototype is an object whose own prototype is Null.
	DefaultObjectPrototype = newPlainObject(Null)
	DefaultFunctionPrototype = newPlainObject(DefaultObjectPrototype)
	DefaultArrayPrototype = newPlainObject(DefaultObjectPrototype)
	DefaultRegExpPrototype = newPlainObject(DefaultObjectPrototype)
	DefaultDatePrototype = newPlainObject(DefaultObjectPrototype)
	DefaultBufferPrototype = newPlainObject(DefaultObjectPrototype)

	installObjectMethods(DefaultObjectPrototype.AsObject())
	installFunctionMethods(DefaultFunctionPrototype.AsObject())
	installArrayMethods(DefaultArrayPrototype.AsObject())
	installHostMethods()
}

func newPlainObject(proto Value) Value {
	plainObj := &PlainObject{Object: newObject(proto)}
	return Value{typ: TypeObject, obj: unsafe.Pointer(plainObj)}
}

// NewObject creates an empty ordinary object inheriting from the default
// object prototype.
func NewObject() Value {
	return newPlainObject(DefaultObjectPrototype)
}

// NewObjectWithPrototype creates an empty object inheriting from proto. A
// proto that is not object-like falls back to the default prototype.
func NewObjectWithPrototype(proto Value) Value {
	if proto.IsAbsent() || !proto.IsObjectLike() {
		proto = DefaultObjectPrototype
	}
	return newPlainObject(proto)
}

// NewArray creates an array holding elems.
func NewArray(elems ...Value) Value {
	arr := &ArrayObject{Object: newObject(DefaultArrayPrototype), elements: append([]Value(nil), elems...), length: len(elems)}
	return Value{typ: TypeArray, obj: unsafe.Pointer(arr)}
}

// objectOf returns the property storage of any object kind, or nil for
// primitives and proxies.
func (v Value) objectOf() *Object {
	switch v.typ {
	case TypeObject:
		return &v.AsObject().Object
	case TypeArray:
		return &v.AsArray().Object
	case TypeFunction:
		return &v.AsFunction().Object
	case TypeBoundFunction:
		return &v.AsBoundFunction().Object
	case TypeRegExp:
		return &v.AsRegExp().Object
	case TypeDate:
		return &v.AsDate().Object
	case TypeBuffer:
		return &v.AsBuffer().Object
	}
	return nil
}

package types

import (
	"sort"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// --- Lazy Types ---

// LazyTypeCache holds named types registered by the declaration compiler.
// References are handed out with Get before the target is known; Verify
// checks, once setup is over, that every requested name was registered.
// The cache is written during setup only and is read-only afterwards.
type LazyTypeCache struct {
	types     map[string]Type
	order     []string
	requested map[string]struct{}
}

func NewLazyTypeCache() *LazyTypeCache {
	return &LazyTypeCache{
		types:     make(map[string]Type),
		requested: make(map[string]struct{}),
	}
}

// Get returns a lazy reference to name and records the request.
func (c *LazyTypeCache) Get(name string) *LazyType {
	c.requested[name] = struct{}{}
	return &LazyType{Name: name, cache: c}
}

// Set registers t under name. The first registration wins.
func (c *LazyTypeCache) Set(name string, t Type) {
	if _, exists := c.types[name]; exists {
		return
	}
	c.types[name] = t
	c.order = append(c.order, name)
}

// Lookup returns the registered type without recording a request.
func (c *LazyTypeCache) Lookup(name string) (Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Names lists registered names in registration order.
func (c *LazyTypeCache) Names() []string {
	return append([]string(nil), c.order...)
}

// Verify reports every requested name that was never registered.
func (c *LazyTypeCache) Verify() error {
	var missing []string
	for name := range c.requested {
		if _, ok := c.types[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &tserr.ConfigError{Msg: "unregistered type names", Missing: missing}
}

// Resolve returns the type registered under name. Resolving an unknown
// name means setup was never verified and panics.
func (c *LazyTypeCache) Resolve(name string) Type {
	t, ok := c.types[name]
	if !ok {
		panic(tserr.Invariantf("lazy type %q resolved but never registered", name))
	}
	return t
}

// LazyType is a named forward reference into a LazyTypeCache.
type LazyType struct {
	Name  string
	cache *LazyTypeCache
}

func (lt *LazyType) String() string { return lt.Name }
func (lt *LazyType) Kind() Kind     { return KindLazy }
func (lt *LazyType) typeNode()      {}
func (lt *LazyType) Equals(other Type) bool {
	o, ok := other.(*LazyType)
	return ok && o.Name == lt.Name && o.cache == lt.cache
}

// Substitution is one pending type-variable replacement.
type Substitution struct {
	Var         string
	Replacement Type
}

// BoundLazyType is a lazy reference with substitutions to apply once the
// target is resolved.
type BoundLazyType struct {
	Lazy    *LazyType
	Pending []Substitution
}

func (bl *BoundLazyType) String() string { return bl.Lazy.Name }
func (bl *BoundLazyType) Kind() Kind     { return KindBoundLazy }
func (bl *BoundLazyType) typeNode()      {}
func (bl *BoundLazyType) Equals(other Type) bool {
	o, ok := other.(*BoundLazyType)
	if !ok || !bl.Lazy.Equals(o.Lazy) || len(bl.Pending) != len(o.Pending) {
		return false
	}
	for i, s := range bl.Pending {
		if s.Var != o.Pending[i].Var || !s.Replacement.Equals(o.Pending[i].Replacement) {
			return false
		}
	}
	return true
}

// Binds reports whether a substitution for name is already pending.
func (bl *BoundLazyType) Binds(name string) bool {
	for _, s := range bl.Pending {
		if s.Var == name {
			return true
		}
	}
	return false
}

// with returns a new BoundLazyType carrying one more substitution.
func (bl *BoundLazyType) with(s Substitution) *BoundLazyType {
	pending := make([]Substitution, len(bl.Pending), len(bl.Pending)+1)
	copy(pending, bl.Pending)
	return &BoundLazyType{Lazy: bl.Lazy, Pending: append(pending, s)}
}

// LazyName returns the referenced name of a Lazy or BoundLazy type.
func LazyName(t Type) (string, bool) {
	switch lt := t.(type) {
	case *LazyType:
		return lt.Name, true
	case *BoundLazyType:
		return lt.Lazy.Name, true
	}
	return "", false
}

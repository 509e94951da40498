package values

import (
	"unsafe"
)

// Handler intercepts the operations performed on a proxy. Every access to
// a proxy goes through GetProperty, SetProperty, Call or Construct, which
// dispatch to the handler; the handler decides how to reach the target.
type Handler interface {
	Get(target Value, name string) (Value, error)
	Set(target Value, name string, v Value) error
	Apply(target Value, this Value, args []Value) (Value, error)
	Construct(target Value, args []Value) (Value, error)
}

// ProxyObject is a value whose operations are routed through a Handler.
type ProxyObject struct {
	target  Value
	handler Handler
}

func (p *ProxyObject) Target() Value    { return p.target }
func (p *ProxyObject) Handler() Handler { return p.handler }

// NewProxy creates a proxy over target.
func NewProxy(target Value, handler Handler) Value {
	return Value{typ: TypeProxy, obj: unsafe.Pointer(&ProxyObject{target: target, handler: handler})}
}

// PassThrough forwards every operation to the target. Handlers embed it and
// override the traps they care about.
type PassThrough struct{}

func (PassThrough) Get(target Value, name string) (Value, error) {
	return GetProperty(target, name)
}

func (PassThrough) Set(target Value, name string, v Value) error {
	return SetProperty(target, name, v)
}

func (PassThrough) Apply(target Value, this Value, args []Value) (Value, error) {
	return Call(target, this, args)
}

func (PassThrough) Construct(target Value, args []Value) (Value, error) {
	return Construct(target, args)
}

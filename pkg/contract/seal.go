package contract

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// seal hides v behind an opaque token owned by owner. The token is only
// meant to be handed back to a position typed by the same instantiation.
// Its handle stays live until Engine.Release, so tokens may outlive the
// call that minted them.
func (e *Engine) seal(v values.Value, n blame.Node, owner *types.BoundTypeVariable) (values.Value, error) {
	handle := uuid.New()
	e.seals[handle] = owner

	holder := values.NewObject()
	if err := values.SetProperty(holder, "v", v); err != nil {
		return v, err
	}
	return values.NewProxy(holder, &sealedWrapper{engine: e, node: n, handle: handle, owner: owner, value: v}), nil
}

// unseal opens a token produced by seal. Owners are compared by identity:
// each instantiation mints its own BoundTypeVariable, so two calls never
// share an owner even when the variable names match. Anything else, a
// released token or a token of another instantiation is blamed; the value
// is returned anyway.
func (e *Engine) unseal(v values.Value, n blame.Node, owner *types.BoundTypeVariable) (values.Value, error) {
	notToken := func() (values.Value, error) {
		return v, n.Flat().Blame(fmt.Sprintf("%s is not a sealed token!! (%s)", describe(v), owner))
	}
	if !v.IsProxy() {
		return notToken()
	}
	sw, ok := v.AsProxy().Handler().(*sealedWrapper)
	if !ok || sw.engine != e {
		return notToken()
	}
	if _, live := e.seals[sw.handle]; !live {
		return notToken()
	}
	if sw.owner != owner {
		return sw.value, n.Flat().Blame(fmt.Sprintf("Token: %s sealed by a different forall", sw.value.ToString()))
	}
	return sw.value, nil
}

// describe renders v for messages, showing sealed values as the value they
// hide.
func describe(v values.Value) string {
	if v.IsProxy() {
		if sw, ok := v.AsProxy().Handler().(*sealedWrapper); ok {
			return sw.value.ToString()
		}
	}
	return v.ToString()
}

// sealedWrapper refuses every use of a sealed value with a seal blame. The
// operation still runs on the original value so the program can go on.
type sealedWrapper struct {
	engine *Engine
	node   blame.Node
	handle uuid.UUID
	owner  *types.BoundTypeVariable
	value  values.Value
}

// Handle identifies the token in the engine's seal table.
func (w *sealedWrapper) Handle() uuid.UUID { return w.handle }

func (w *sealedWrapper) Get(target values.Value, name string) (values.Value, error) {
	if err := w.node.Seal().Blame("Access to sealed parameter not permitted " + name); err != nil {
		return values.Undefined, err
	}
	switch name {
	case "v":
		return w.value, nil
	case "valueOf", "toString", "hasOwnProperty":
		fn, err := values.GetProperty(w.value, name)
		if err != nil || !fn.IsCallable() {
			return fn, err
		}
		return values.Bind(fn, w.value), nil
	}
	return values.GetProperty(w.value, name)
}

func (w *sealedWrapper) Set(target values.Value, name string, v values.Value) error {
	if err := w.node.Seal().Blame("Access to sealed parameter not permitted: " + name); err != nil {
		return err
	}
	return values.SetProperty(w.value, name, v)
}

func (w *sealedWrapper) Apply(target, this values.Value, args []values.Value) (values.Value, error) {
	if err := w.node.Seal().Blame("Applying a sealed parameter not permitted"); err != nil {
		return values.Undefined, err
	}
	return values.Call(w.value, this, args)
}

func (w *sealedWrapper) Construct(target values.Value, args []values.Value) (values.Value, error) {
	if err := w.node.Seal().Blame("Applying a sealed parameter not permitted"); err != nil {
		return values.Undefined, err
	}
	return values.Construct(w.value, args)
}

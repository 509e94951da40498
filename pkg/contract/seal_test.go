package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

// forall X. (X) -> X
func polyIdentity() *types.ForallType {
	x := types.NewTypeVariable("X")
	return types.NewForallType("X", types.NewFunctionType([]types.Type{x}, nil, nil, x, nil))
}

func TestEngine_ForallRoundTrip(t *testing.T) {
	engine, rec := newRecordedEngine()
	var seen values.Value
	target := fn("id", func(this values.Value, args []values.Value) (values.Value, error) {
		seen = args[0]
		return args[0], nil
	})
	wrapped, err := engine.SimpleWrap(target, polyIdentity())
	require.NoError(t, err)

	res, err := values.Call(wrapped, values.Undefined, []values.Value{values.NumberValue(5)})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.AsNumber())
	assert.True(t, seen.IsProxy(), "the argument is sealed inside the call")
	assert.Empty(t, rec.Reports)
	assert.EqualValues(t, 1, engine.Sealed())
	engine.Release()
	assert.EqualValues(t, 0, engine.Sealed())
}

// forall X. (X) -> (() -> X)
func polyConst() *types.ForallType {
	x := types.NewTypeVariable("X")
	thunk := types.NewFunctionType(nil, nil, nil, x, nil)
	return types.NewForallType("X", types.NewFunctionType([]types.Type{x}, nil, nil, thunk, nil))
}

func TestEngine_TokenOutlivesCall(t *testing.T) {
	engine, rec := newRecordedEngine()
	konst := fn("konst", func(this values.Value, args []values.Value) (values.Value, error) {
		held := args[0]
		return fn("thunk", func(this values.Value, args []values.Value) (values.Value, error) {
			return held, nil
		}), nil
	})
	wrapped, err := engine.SimpleWrap(konst, polyConst())
	require.NoError(t, err)

	thunk, err := values.Call(wrapped, values.Undefined, []values.Value{values.NumberValue(7)})
	require.NoError(t, err)
	res, err := values.Call(thunk, values.Undefined, nil)
	require.NoError(t, err)
	assert.False(t, res.IsProxy())
	assert.EqualValues(t, 7, res.AsNumber())
	assert.Empty(t, rec.Reports)

	res, err = values.Call(thunk, values.Undefined, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.AsNumber())
	assert.Empty(t, rec.Reports)
}

func TestEngine_SealedUse(t *testing.T) {
	callback := fn("cb", func(this values.Value, args []values.Value) (values.Value, error) {
		return values.NumberValue(1), nil
	})

	var testCases = []struct {
		description string
		arg         values.Value
		use         func(token values.Value) error
		expect      []string
	}{
		{
			description: "property read",
			arg:         values.NewObject(),
			use: func(token values.Value) error {
				_, err := values.GetProperty(token, "foo")
				return err
			},
			expect: []string{"{0} + POSITIVE + DOM Access to sealed parameter not permitted foo"},
		},
		{
			description: "property write",
			arg:         values.NewObject(),
			use: func(token values.Value) error {
				return values.SetProperty(token, "foo", values.True)
			},
			expect: []string{"{0} + POSITIVE + DOM Access to sealed parameter not permitted: foo"},
		},
		{
			description: "application",
			arg:         callback,
			use: func(token values.Value) error {
				_, err := values.Call(token, values.Undefined, nil)
				return err
			},
			expect: []string{"{0} + POSITIVE + DOM Applying a sealed parameter not permitted"},
		},
	}
	for _, testCase := range testCases {
		engine, rec := newRecordedEngine()
		use := testCase.use
		target := fn("f", func(this values.Value, args []values.Value) (values.Value, error) {
			return args[0], use(args[0])
		})
		wrapped, err := engine.SimpleWrap(target, polyIdentity())
		require.NoError(t, err, testCase.description)
		res, err := values.Call(wrapped, values.Undefined, []values.Value{testCase.arg})
		require.NoError(t, err, testCase.description)
		assert.True(t, res.SameIdentity(testCase.arg), testCase.description)
		assert.EqualValues(t, testCase.expect, rec.Strings(), testCase.description)
	}
}

func TestEngine_SealAllowList(t *testing.T) {
	engine, _ := newRecordedEngine()
	owner := types.NewBoundTypeVariable("X'")
	token, err := engine.Wrap(values.NumberValue(7), engine.NewRoot("s"), types.Any, owner)
	require.NoError(t, err)

	v, err := values.GetProperty(token, "v")
	require.NoError(t, err)
	assert.EqualValues(t, 7, v.AsNumber())

	valueOf, err := values.GetProperty(token, "valueOf")
	require.NoError(t, err)
	res, err := values.Call(valueOf, values.Undefined, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.AsNumber())
	assert.EqualValues(t, 1, engine.Sealed())

	engine.Release()
	assert.EqualValues(t, 0, engine.Sealed())
}

func TestEngine_Unseal(t *testing.T) {
	engine, rec := newRecordedEngine()
	owner := types.NewBoundTypeVariable("X'")
	other := types.NewBoundTypeVariable("X'")

	token, err := engine.Wrap(values.NumberValue(7), engine.NewRoot("s"), types.Any, owner)
	require.NoError(t, err)

	res, err := engine.Wrap(token, engine.NewRoot("u"), owner, types.Any)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.AsNumber())
	assert.Empty(t, rec.Reports)

	res, err = engine.Wrap(token, engine.NewRoot("u"), other, types.Any)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.AsNumber())

	res, err = engine.Wrap(values.NumberValue(3), engine.NewRoot("u"), owner, types.Any)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.AsNumber())

	foreign, err := New(WithReporter(rec)).Wrap(values.NumberValue(8), engine.NewRoot("f"), types.Any, owner)
	require.NoError(t, err)
	_, err = engine.Wrap(foreign, engine.NewRoot("u"), owner, types.Any)
	require.NoError(t, err)

	engine.Release()
	_, err = engine.Wrap(token, engine.NewRoot("u"), owner, types.Any)
	require.NoError(t, err)

	assert.EqualValues(t, []string{
		"{u} + POSITIVE +  Token: 7 sealed by a different forall",
		"{u} + POSITIVE +  3 is not a sealed token!! (X')",
		"{u} + POSITIVE +  8 is not a sealed token!! (X')",
		"{u} + POSITIVE +  7 is not a sealed token!! (X')",
	}, rec.Strings())
}

func TestEngine_NestedForall(t *testing.T) {
	engine, rec := newRecordedEngine()
	var wrapped, outer values.Value
	depth := 0
	target := fn("f", func(this values.Value, args []values.Value) (values.Value, error) {
		if depth > 0 {
			// The inner call leaks the token of the outer one.
			return outer, nil
		}
		depth++
		outer = args[0]
		if _, err := values.Call(wrapped, values.Undefined, []values.Value{values.NumberValue(9)}); err != nil {
			return values.Undefined, err
		}
		return args[0], nil
	})
	var err error
	wrapped, err = engine.SimpleWrap(target, polyIdentity())
	require.NoError(t, err)

	res, err := values.Call(wrapped, values.Undefined, []values.Value{values.NumberValue(5)})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.AsNumber())
	assert.EqualValues(t, []string{"{0} + POSITIVE + COD Token: 5 sealed by a different forall"}, rec.Strings())
	assert.EqualValues(t, 2, engine.Sealed())
}

// Reads from a polymorphic array expect tokens of the instantiation.
func TestEngine_ForallNotCallable(t *testing.T) {
	x := types.NewTypeVariable("X")
	ty := types.NewForallType("X", types.NewArrayType(x))

	engine, rec := newRecordedEngine()
	wrapped, err := engine.SimpleWrap(values.NewArray(values.NumberValue(1)), ty)
	require.NoError(t, err)
	el, err := values.GetProperty(wrapped, "0")
	require.NoError(t, err)
	assert.EqualValues(t, 1, el.AsNumber())
	assert.EqualValues(t, []string{"{0} + POSITIVE + GET_ARRAY[] 1 is not a sealed token!! (X')"}, rec.Strings())
}

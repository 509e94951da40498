package blame

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/types"
)

func newRecordedTree(label string) (*Tree, *Recorder) {
	rec := &Recorder{}
	return NewTree(label, rec), rec
}

func TestPath_Rendering(t *testing.T) {
	path := Path{
		{Tag: TagGet, ID: 3, Prop: "f"},
		{Tag: TagApplication, ID: 0, Domain: true},
		{Tag: TagGet, ID: 1, IsArray: true},
		{Tag: TagSet, ID: 2, Prop: "x"},
		{Tag: TagApplication, ID: 4},
	}
	assert.EqualValues(t, "GET[f]/DOM/GET_ARRAY[]/SET[x]/COD", path.Pretty())
	assert.EqualValues(t, "GET[][3]/APP[0]/GET[][1]/SET[][2]/APP[4]", path.Key())
	assert.EqualValues(t, "GET[f]/DOM", path.Truncate().Pretty())

	mutation := Path{{Tag: TagGet, Prop: "a"}, {Tag: TagSet, Prop: "b"}, {Tag: TagApplication, Domain: true}}
	assert.EqualValues(t, 3, len(mutation.Truncate()))

	assert.EqualValues(t, "FLAT[x]", Segment{Tag: TagFlat, Description: "x"}.Pretty())
	assert.EqualValues(t, "INTER", Segment{Tag: TagIntersection}.Pretty())
	assert.Panics(t, func() { _ = Segment{Tag: Tag(42)}.Pretty() })
}

func TestTree_FlatAtRoot(t *testing.T) {
	tree, rec := newRecordedTree("0")
	require.NoError(t, tree.Root().Flat().Blame("not of type Num: type is string"))
	require.Len(t, rec.Reports, 1)
	assert.EqualValues(t, Positive, rec.Reports[0].Polarity)
	assert.EqualValues(t, "{0} + POSITIVE +  not of type Num: type is string", rec.Reports[0].String())

	require.NoError(t, tree.Root().Seal().Blame("Access to sealed parameter not permitted x"))
	assert.EqualValues(t, Negative, rec.Reports[1].Polarity)
	assert.EqualValues(t, SourceSeal, rec.Reports[1].Source)
}

func TestTree_Function(t *testing.T) {
	var testCases = []struct {
		description string
		run         func(fn Node) error
		expect      []string
	}{
		{
			description: "positive domain blame is re-emitted as negative",
			run: func(fn Node) error {
				dom, _ := fn.Application()
				return dom.Flat().Blame("bad argument")
			},
			expect: []string{"{f} - NEGATIVE - DOM bad argument"},
		},
		{
			description: "negative domain blame is re-emitted as positive",
			run: func(fn Node) error {
				dom, _ := fn.Application()
				return dom.Seal().Blame("sealed")
			},
			expect: []string{"{f} + POSITIVE + DOM sealed"},
		},
		{
			description: "positive codomain blame is forwarded while the domain is clean",
			run: func(fn Node) error {
				_, cod := fn.Application()
				return cod.Flat().Blame("bad result")
			},
			expect: []string{"{f} + POSITIVE + COD bad result"},
		},
		{
			description: "positive codomain blame is dropped after domain blame in the same call",
			run: func(fn Node) error {
				dom, cod := fn.Application()
				if err := dom.Flat().Blame("bad argument"); err != nil {
					return err
				}
				return cod.Flat().Blame("bad result")
			},
			expect: []string{"{f} - NEGATIVE - DOM bad argument"},
		},
		{
			description: "domain blame in one call does not silence another call",
			run: func(fn Node) error {
				dom, _ := fn.Application()
				_, cod := fn.Application()
				if err := dom.Flat().Blame("bad argument"); err != nil {
					return err
				}
				return cod.Flat().Blame("bad result")
			},
			expect: []string{"{f} - NEGATIVE - DOM bad argument", "{f} + POSITIVE + COD bad result"},
		},
	}
	for _, testCase := range testCases {
		tree, rec := newRecordedTree("f")
		require.NoError(t, testCase.run(tree.Root().Fun()), testCase.description)
		assert.EqualValues(t, testCase.expect, rec.Strings(), testCase.description)
	}
}

func TestTree_Object(t *testing.T) {
	tree, rec := newRecordedTree("o")
	obj := tree.Root().Obj()
	require.NoError(t, obj.Get("a", false).Flat().Blame("read"))
	assert.False(t, obj.RaisedNegative())
	require.NoError(t, obj.Set("b", false).Flat().Blame("write"))
	assert.True(t, obj.RaisedNegative())
	require.NoError(t, obj.Get("", true).Flat().Blame("element"))

	assert.EqualValues(t, []string{
		"{o} + POSITIVE + GET[a] read",
		"{o} - NEGATIVE - SET[b] write",
		"{o} + POSITIVE + GET_ARRAY[] element",
	}, rec.Strings())
	assert.EqualValues(t, SourceObject, rec.Reports[0].Source)
}

func TestTree_IntersectionCorrelation(t *testing.T) {
	numFn := types.NewFunctionType([]types.Type{types.Num}, nil, nil, types.Num, nil)
	strFn := types.NewFunctionType([]types.Type{types.Str}, nil, nil, types.Str, nil)
	tree, rec := newRecordedTree("0")
	inter := tree.Root().Inter([]types.Type{numFn, strFn})

	dom0, _ := inter.Branch(0).Fun().Application()
	require.NoError(t, dom0.Flat().Blame("not of type Num: type is boolean"))
	assert.Empty(t, rec.Reports, "a single branch must not escalate")

	dom1, _ := inter.Branch(1).Fun().Application()
	require.NoError(t, dom1.Flat().Blame("not of type Str: type is boolean"))
	require.Len(t, rec.Reports, 1)
	assert.EqualValues(t, "{0} - NEGATIVE - DOM INTER{ ID=0/DOM not of type Num: type is boolean\nID=1/DOM not of type Str: type is boolean}",
		rec.Reports[0].String())
}

func TestTree_IntersectionPositive(t *testing.T) {
	obj := types.NewObjectType(types.Property{Name: "a", Type: types.Num})
	tree, rec := newRecordedTree("0")
	inter := tree.Root().Obj().Get("x", false).Inter([]types.Type{obj, obj})

	require.NoError(t, inter.Branch(1).Obj().Get("a", false).Flat().Blame("not of type Num: type is string"))
	assert.EqualValues(t, []string{"{0} + POSITIVE + GET[x]/GET[a] not of type Num: type is string"}, rec.Strings())
}

func TestTree_IntersectionUnreachableForwards(t *testing.T) {
	// Writes to an undeclared property are not reachable in any branch.
	obj := types.NewObjectType(types.Property{Name: "a", Type: types.Num})
	tree, rec := newRecordedTree("0")
	inter := tree.Root().Inter([]types.Type{obj, obj})

	require.NoError(t, inter.Branch(0).Obj().Set("b", false).Flat().Blame("boom"))
	assert.EqualValues(t, []string{"{0} - NEGATIVE - SET[b] boom"}, rec.Strings())
}

func TestTree_Invariants(t *testing.T) {
	tree, _ := newRecordedTree("0")
	inter := tree.Root().Inter([]types.Type{types.Num})
	assert.Panics(t, func() { inter.Branch(1) })
	assert.Panics(t, func() { tree.Root().Application() })
	assert.Panics(t, func() { tree.Root().Fun().Flat() })
	assert.Panics(t, func() { _ = tree.Root().Blame("root cannot blame") })

	defer func() {
		r := recover()
		var invariant *tserr.InvariantError
		require.True(t, errors.As(r.(error), &invariant))
	}()
	tree.Root().Get("a", false)
}

func TestReachable(t *testing.T) {
	cache := types.NewLazyTypeCache()
	fn := types.NewFunctionType(nil, nil, nil, types.Any, nil)
	cache.Set("F", fn)
	obj := types.NewObjectType(
		types.Property{Name: "f", Type: cache.Get("F")},
		types.Property{Name: "n", Type: types.Num},
	)
	app := Segment{Tag: TagApplication, Domain: true}
	var testCases = []struct {
		description string
		path        Path
		ty          types.Type
		expect      bool
	}{
		{description: "call of a function", path: Path{app}, ty: fn, expect: true},
		{description: "call through forall", path: Path{app}, ty: types.NewForallType("X", fn), expect: true},
		{description: "call of a number", path: Path{app}, ty: types.Num, expect: false},
		{description: "method through lazy", path: Path{{Tag: TagGet, Prop: "f"}, app}, ty: obj, expect: true},
		{description: "undeclared method", path: Path{{Tag: TagGet, Prop: "g"}, app}, ty: obj, expect: false},
		{description: "set of declared", path: Path{{Tag: TagSet, Prop: "n"}}, ty: obj, expect: true},
		{description: "array element call", path: Path{{Tag: TagGet, IsArray: true}, app}, ty: types.NewArrayType(fn), expect: true},
		{description: "dictionary set", path: Path{{Tag: TagSet, Prop: "k"}}, ty: types.NewDictionaryType(types.Num), expect: true},
		{description: "union branch", path: Path{app}, ty: types.Nullable(fn), expect: true},
		{description: "empty path", path: Path{}, ty: fn, expect: false},
	}
	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.expect, Reachable(testCase.path, testCase.ty), testCase.description)
	}
}

func TestSeverityReporter(t *testing.T) {
	defer SetSeverity(CurrentSeverity())
	buf := &bytes.Buffer{}
	reporter := NewSeverityReporter(slog.New(slog.NewTextHandler(buf, nil)))
	report := Report{Label: "3", Polarity: Negative, Path: Path{{Tag: TagApplication, Domain: true}}, Message: "bad"}

	SetSeverity(SeveritySilent)
	assert.NoError(t, reporter.Report(report))
	assert.Empty(t, buf.String())

	SetSeverity(SeverityLog)
	assert.NoError(t, reporter.Report(report))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "label=3")

	SetSeverity(SeverityFatal)
	err := reporter.Report(report)
	var blameErr *tserr.BlameError
	require.True(t, errors.As(err, &blameErr))
	assert.EqualValues(t, "Blame Error {3}: - NEGATIVE - DOM bad", blameErr.Error())

	severity, err := ParseSeverity("FATAL")
	require.NoError(t, err)
	assert.EqualValues(t, SeverityFatal, severity)
	_, err = ParseSeverity("loud")
	assert.Error(t, err)
}

func TestTee(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	failing := ReporterFunc(func(r Report) error { return errors.New("stop") })
	err := Tee(first, failing, second).Report(Report{Message: "m"})
	assert.EqualError(t, err, "stop")
	assert.Len(t, first.Reports, 1)
	assert.Len(t, second.Reports, 1)
}

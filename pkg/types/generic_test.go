package types

import (
	"testing"
)

func TestSubstituteLeavesClosedTypes(t *testing.T) {
	bound := NewBoundTypeVariable("X'")
	for _, ty := range []Type{Any, Num, Str, Bool, Void, Null, bound} {
		for _, repl := range []Type{Num, Any, NewTypeVariable("Y"), NewArrayType(Str)} {
			got := Substitute(ty, "X", repl)
			if got != ty {
				t.Errorf("Substitute(%s, X, %s) = %s, want the input back", ty, repl, got)
			}
		}
	}
}

func TestSubstituteTypeVariable(t *testing.T) {
	x := NewTypeVariable("X")
	if got := Substitute(x, "X", Num); got != Num {
		t.Errorf("expected Num, got %s", got)
	}
	if got := Substitute(x, "Y", Num); got != x {
		t.Errorf("expected X to be left alone, got %s", got)
	}
}

func TestSubstituteForallShadowing(t *testing.T) {
	body := NewFunctionType([]Type{NewTypeVariable("X")}, nil, nil, NewTypeVariable("X"), nil)
	fa := NewForallType("X", body)

	got := Substitute(fa, "X", Num)
	if !got.Equals(fa) {
		t.Errorf("shadowed forall changed: %s", got)
	}

	outer := NewForallType("Y", body)
	got = Substitute(outer, "X", Num)
	want := NewForallType("Y", NewFunctionType([]Type{Num}, nil, nil, Num, nil))
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSubstituteStructural(t *testing.T) {
	x := NewTypeVariable("X")
	ty := NewObjectType(
		Property{Name: "a", Type: NewArrayType(x)},
		Property{Name: "b", Type: NewDictionaryType(x)},
		Property{Name: "c", Type: NewHybridType(x, Str)},
		Property{Name: "d", Type: Nullable(x)},
		Property{Name: "e", Type: NewFunctionType(nil, []Type{x}, x, x, x)},
	)
	got := Substitute(ty, "X", Num)
	want := "{a: [Num], b: {Num}, c: Num && Str, d: Num + Null, e: Num? -> Num* -> Num  C:Num}"
	if got.String() != want {
		t.Errorf("expected %q, got %q", want, got.String())
	}
	if ty.String() == got.String() {
		t.Error("substitution mutated the input")
	}
}

func TestSubstituteLazy(t *testing.T) {
	cache := NewLazyTypeCache()
	ref := cache.Get("Box")
	cache.Set("Box", NewObjectType(Property{Name: "v", Type: NewTypeVariable("T")}))

	bound := Substitute(ref, "T", Num)
	bl, ok := bound.(*BoundLazyType)
	if !ok {
		t.Fatalf("expected a BoundLazyType, got %T", bound)
	}
	if len(bl.Pending) != 1 || bl.Pending[0].Var != "T" {
		t.Fatalf("unexpected pending substitutions %v", bl.Pending)
	}

	// First writer wins.
	again := Substitute(bl, "T", Str)
	if again != bl {
		t.Error("rebinding T should return the same BoundLazyType")
	}

	// A second variable yields a new value and leaves the original alone.
	more := Substitute(bl, "U", Str).(*BoundLazyType)
	if more == bl || len(bl.Pending) != 1 || len(more.Pending) != 2 {
		t.Errorf("BoundLazyType was shared across substitutions: %v / %v", bl.Pending, more.Pending)
	}

	resolved := Resolve(bl)
	if resolved.String() != "{v: Num}" {
		t.Errorf("expected {v: Num}, got %s", resolved)
	}
}

func TestUnfoldChain(t *testing.T) {
	cache := NewLazyTypeCache()
	cache.Set("A", cache.Get("B"))
	cache.Set("B", NewArrayType(Num))

	if got := Unfold(cache.Get("A")); got.String() != "[Num]" {
		t.Errorf("expected [Num], got %s", got)
	}
}

func TestLazyCacheVerify(t *testing.T) {
	cache := NewLazyTypeCache()
	cache.Get("Present")
	cache.Get("Missing")
	cache.Set("Present", Num)

	err := cache.Verify()
	if err == nil {
		t.Fatal("expected a verification error")
	}
	if got := err.Error(); got != "Config Error: unregistered type names: Missing" {
		t.Errorf("unexpected error %q", got)
	}

	cache.Set("Missing", Str)
	if err := cache.Verify(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	cache.Set("Present", Str)
	if got, _ := cache.Lookup("Present"); got != Num {
		t.Errorf("re-registration should be ignored, got %s", got)
	}
	if names := cache.Names(); len(names) != 2 || names[0] != "Present" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestResolveUnregisteredPanics(t *testing.T) {
	cache := NewLazyTypeCache()
	ref := cache.Get("Nope")
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	Resolve(ref)
}

package lisptype

import (
	"errors"
	"fmt"
	"testing"
)

func TestFrameDefineLookup(t *testing.T) {
	global := NewFrame(nil)
	if err := global.Define("x", Ref(10)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := global.Define("x", Ref(11)); !errors.Is(err, ErrDuplicateBinding) {
		t.Errorf("redefining in the same scope: err = %v, want ErrDuplicateBinding", err)
	}
	inner := NewFrame(global)
	if err := inner.Define("x", Ref(12)); err != nil {
		t.Errorf("shadowing an outer binding: %v", err)
	}
	if r, _ := inner.Lookup("x"); r != 12 {
		t.Errorf("inner lookup = %d, want 12", r)
	}
	if r, _ := global.Lookup("x"); r != 10 {
		t.Errorf("global lookup = %d, want 10", r)
	}
	if _, err := inner.Lookup("missing"); !errors.Is(err, ErrUnbound) {
		t.Errorf("missing lookup: err = %v, want ErrUnbound", err)
	}
	if inner.Outer() != global || global.Outer() != nil {
		t.Errorf("outer chain is wrong")
	}
}

func TestFrameUpdate(t *testing.T) {
	global := NewFrame(nil)
	global.Define("count", Ref(1))
	inner := NewFrame(NewFrame(global))

	if err := inner.Update("count", Ref(2)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r, _ := global.Lookup("count"); r != 2 {
		t.Errorf("outer binding = %d after update, want 2", r)
	}
	if inner.Len() != 0 {
		t.Errorf("Update created a binding in the inner scope")
	}
	if err := inner.Update("nope", Ref(3)); !errors.Is(err, ErrUnbound) {
		t.Errorf("updating an unbound name: err = %v, want ErrUnbound", err)
	}
	if _, err := global.Lookup("nope"); err == nil {
		t.Errorf("a failed update created a global binding")
	}
}

func TestFrameGrowth(t *testing.T) {
	f := NewFrame(nil)
	const n = 1000
	for i := 0; i < n; i++ {
		if err := f.Define(fmt.Sprintf("sym%d", i), Ref(i)); err != nil {
			t.Fatalf("Define sym%d: %v", i, err)
		}
	}
	if f.Len() != n {
		t.Fatalf("Len() = %d, want %d", f.Len(), n)
	}
	if len(f.entries) < n*4/3 {
		t.Errorf("table of %d slots holds %d bindings", len(f.entries), n)
	}
	for i := 0; i < n; i++ {
		r, err := f.Lookup(fmt.Sprintf("sym%d", i))
		if err != nil || r != Ref(i) {
			t.Fatalf("Lookup sym%d = %d, %v", i, r, err)
		}
	}
}

func TestFrameForEach(t *testing.T) {
	global := NewFrame(nil)
	global.Define("a", Ref(1))
	global.Define("b", Ref(2))
	inner := NewFrame(global)
	inner.Define("a", Ref(3))

	seen := map[string][]Ref{}
	inner.ForEach(func(name string, ref Ref) {
		seen[name] = append(seen[name], ref)
	})
	if len(seen["a"]) != 2 || seen["a"][0] != 3 || seen["a"][1] != 1 {
		t.Errorf("a visited as %v, want [3 1]", seen["a"])
	}
	if len(seen["b"]) != 1 {
		t.Errorf("b visited %d times", len(seen["b"]))
	}
}

func TestFrameRelease(t *testing.T) {
	f := NewFrame(nil)
	f.Define("x", Ref(1))
	f.Release()
	if f.Len() != 0 {
		t.Errorf("Len() = %d after Release", f.Len())
	}
	if _, err := f.Lookup("x"); !errors.Is(err, ErrUnbound) {
		t.Errorf("released binding still resolves")
	}
	if err := f.Define("y", Ref(2)); err != nil {
		t.Errorf("Define after Release: %v", err)
	}
}

func TestStrHash(t *testing.T) {
	// djb2
	if got := strHash(""); got != 5381 {
		t.Errorf("strHash(\"\") = %d", got)
	}
	if got := strHash("a"); got != 5381*33+'a' {
		t.Errorf("strHash(\"a\") = %d", got)
	}
}

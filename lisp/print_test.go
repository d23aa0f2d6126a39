package lisp

import (
	"strings"
	"testing"

	lisptype "tlisp/lisp_type"
)

func TestSprint(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	noop := func(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) { return lisptype.NilRef, nil }

	dict := h.NewDict()
	h.DictIns(dict, h.NewSymbol("a"), h.NewNum(1))
	h.DictIns(dict, h.NewString("b"), h.FromSlice([]lisptype.Ref{h.NewNum(2)}))

	vec := h.NewVec()
	h.Get(vec).Vec.Elems = []lisptype.Ref{h.NewNum(1), lisptype.TrueRef}

	def := h.NewStructDef("Point", []string{"x", "y"})
	pt := h.NewStruct(def)
	h.Get(pt).Fields[0] = h.NewNum(3)

	tests := []struct {
		name string
		r    lisptype.Ref
		want string
	}{
		{"nil", lisptype.NilRef, "nil"},
		{"true", lisptype.TrueRef, "true"},
		{"false", lisptype.FalseRef, "false"},
		{"num", h.NewNum(-12), "-12"},
		{"string", h.NewString("two words"), "two words"},
		{"symbol", h.NewSymbol("sym"), "sym"},
		{"list", h.FromSlice([]lisptype.Ref{h.NewNum(1), h.NewNum(2)}), "(1 2)"},
		{"improper", h.NewCons(h.NewNum(1), h.NewNum(2)), "(1 . 2)"},
		{"nested", h.FromSlice([]lisptype.Ref{h.FromSlice([]lisptype.Ref{lisptype.NilRef})}), "((nil))"},
		{"dict", dict, "#(a 1 b (2))"},
		{"empty dict", h.NewDict(), "#()"},
		{"vec", vec, "[1 true]"},
		{"empty vec", h.NewVec(), "[]"},
		{"native", h.NewNative("f", noop), "<native func>"},
		{"lambda", h.NewLambda(lisptype.NilRef, lisptype.NilRef, nil), "<lambda>"},
		{"macro", h.NewMacro(lisptype.NilRef, lisptype.NilRef, nil), "<macro>"},
		{"structdef", def, "<structdef Point>"},
		{"struct", pt, "<Point x:3 y:nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sprint(h, tt.r, 1024); got != tt.want {
				t.Errorf("Sprint = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSprintLimit(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	vals := make([]lisptype.Ref, 500)
	for n := range vals {
		vals[n] = h.NewNum(int64(n))
	}
	list := h.FromSlice(vals)
	for _, limit := range []int{1, 8, 10, 100} {
		got := Sprint(h, list, limit)
		if len(got) != limit {
			t.Errorf("Sprint with limit %d gave %d bytes: %q", limit, len(got), got)
		}
	}
	if got := Sprint(h, list, 10); got != "(0 1 2 3 4" {
		t.Errorf("Sprint = %q", got)
	}
	if got := Sprint(h, h.NewString("abcdef"), 3); got != "abc" {
		t.Errorf("string cut to %q", got)
	}
}

func TestSprintDepth(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	r := h.NewNum(0)
	for n := 0; n < 1000; n++ {
		r = h.NewCons(r, lisptype.NilRef)
	}
	got := Sprint(h, r, 4096)
	if !strings.Contains(got, "...") {
		t.Errorf("deep nesting printed without elision")
	}
	if strings.Count(got, "(") != maxPrintDepth+1 {
		t.Errorf("printed %d levels, want %d", strings.Count(got, "("), maxPrintDepth+1)
	}
}

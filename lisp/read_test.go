package lisp

import (
	"errors"
	"testing"

	lisptype "tlisp/lisp_type"
)

func TestRead(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"42", []string{"42"}},
		{"-17", []string{"-17"}},
		{"+5", []string{"5"}},
		{"1x", []string{"1x"}},
		{"foo-bar?", []string{"foo-bar?"}},
		{`"a b"`, []string{"a b"}},
		{"()", []string{"nil"}},
		{"(1 (2 3) sym)", []string{"(1 (2 3) sym)"}},
		{"(a\n  b\tc)", []string{"(a b c)"}},
		{"'x", []string{"(' x)"}},
		{"'(1 2)", []string{"(' (1 2))"}},
		{"' x", []string{"(' x)"}},
		{"`(a ~b)", []string{"(` (a ~b))"}},
		{"[1 2]", []string{"(vec 1 2)"}},
		{"[]", []string{"(vec)"}},
		{"#(a 1)", []string{"(# a 1)"}},
		{"#", []string{"#"}},
		{"1 2 3", []string{"1", "2", "3"}},
		{"(a)(b)", []string{"(a)", "(b)"}},
		{"; only a comment", nil},
		{"1 ; trailing\n2", []string{"1", "2"}},
		{"(a ; inside\n b)", []string{"(a b)"}},
		{"", nil},
		{"  \n\t", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h := lisptype.NewHeap(64, 0)
			src, err := Read(h, tt.text)
			if err != nil {
				t.Fatalf("Read(%q): %v", tt.text, err)
			}
			if len(src.Forms) != len(tt.want) {
				t.Fatalf("Read(%q) gave %d forms, want %d", tt.text, len(src.Forms), len(tt.want))
			}
			for n, f := range src.Forms {
				if got := Sprint(h, f.Ref, 256); got != tt.want[n] {
					t.Errorf("form %d = %q, want %q", n, got, tt.want[n])
				}
			}
		})
	}
}

func TestReadAtomTags(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	src, err := Read(h, `12 "12" x`)
	if err != nil {
		t.Fatal(err)
	}
	want := []lisptype.Tag{lisptype.Num, lisptype.String, lisptype.Symbol}
	for n, f := range src.Forms {
		if got := h.Tag(f.Ref); got != want[n] {
			t.Errorf("form %d is a %v, want %v", n, got, want[n])
		}
	}
}

func TestReadStringEscapes(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	src, err := Read(h, `"a\nb\tc\rd\"e\\f\qg"`)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Get(src.Forms[0].Ref).Text; got != "a\nb\tc\rd\"e\\fqg" {
		t.Errorf("string = %q", got)
	}
}

func TestReadLines(t *testing.T) {
	h := lisptype.NewHeap(64, 0)
	text := "(a)\n\n(b\n c)\n; done\nd"
	src, err := Read(h, text)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ start, end int }{{1, 1}, {3, 4}, {6, 6}}
	if len(src.Forms) != len(want) {
		t.Fatalf("%d forms, want %d", len(src.Forms), len(want))
	}
	for n, f := range src.Forms {
		if f.StartLine != want[n].start || f.EndLine != want[n].end {
			t.Errorf("form %d spans lines %d-%d, want %d-%d", n, f.StartLine, f.EndLine, want[n].start, want[n].end)
		}
	}
	if got := src.Lines(src.Forms[1]); got != "(b\n c)" {
		t.Errorf("Lines = %q", got)
	}
	if roots := src.Roots(1); len(roots) != 2 || roots[0] != src.Forms[1].Ref {
		t.Errorf("Roots(1) = %v", roots)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		text       string
		incomplete bool
		line       int
	}{
		{"(a b", true, 1},
		{"(a\n(b c)", true, 2},
		{"[1 2", true, 1},
		{"#(a", true, 1},
		{`"open`, true, 1},
		{"'", true, 1},
		{"`  ", true, 1},
		{")", false, 1},
		{"1\n]", false, 2},
		{"(a ]", false, 1},
		{"[a)", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Read(lisptype.NewHeap(64, 0), tt.text)
			var re *ReadError
			if !errors.As(err, &re) {
				t.Fatalf("Read(%q) err = %v, want a *ReadError", tt.text, err)
			}
			if re.Incomplete != tt.incomplete || errors.Is(err, ErrIncomplete) != tt.incomplete {
				t.Errorf("Read(%q) incomplete = %v, want %v", tt.text, re.Incomplete, tt.incomplete)
			}
			if re.Line != tt.line {
				t.Errorf("Read(%q) error on line %d, want %d", tt.text, re.Line, tt.line)
			}
		})
	}
}

func TestReadKeepsFormsBeforeAnError(t *testing.T) {
	src, err := Read(lisptype.NewHeap(64, 0), "1 2 )")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(src.Forms) != 2 {
		t.Errorf("%d forms read before the error, want 2", len(src.Forms))
	}
}

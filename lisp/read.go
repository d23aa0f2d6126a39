package lisp

import (
	"fmt"
	"strconv"
	"strings"

	lisptype "tlisp/lisp_type"
)

// Form is one top-level expression together with the lines it spans.
type Form struct {
	Ref       lisptype.Ref
	StartLine int
	EndLine   int
}

// Source is the result of reading a program text.
type Source struct {
	Text  string
	Forms []Form
}

// Lines returns the source text of a form, one line per line.
func (s *Source) Lines(f Form) string {
	lines := strings.Split(s.Text, "\n")
	if f.StartLine < 1 || f.StartLine > len(lines) {
		return ""
	}
	end := f.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[f.StartLine-1:end], "\n")
}

// Roots returns the forms from index i on, which stay alive while the
// program runs.
func (s *Source) Roots(i int) []lisptype.Ref {
	roots := make([]lisptype.Ref, 0, len(s.Forms)-i)
	for _, f := range s.Forms[i:] {
		roots = append(roots, f.Ref)
	}
	return roots
}

// reader markers, bound to builtins in the global frame
const (
	quoteSym     = "'"
	backquoteSym = "`"
	dictSym      = "#"
	vecSym       = "vec"
	escapePrefix = "~"
)

type reader struct {
	heap *lisptype.Heap
	text string
	pos  int
	line int
	col  int
}

// Read parses every top-level form of text, allocating the literals in
// heap. Lists are represented as linked lists of cons cells that descend
// on the cdr side, with each value held in the car.
func Read(heap *lisptype.Heap, text string) (*Source, error) {
	r := &reader{heap: heap, text: text, line: 1, col: 1}
	src := &Source{Text: text}
	for {
		r.skipSpace()
		if r.eof() {
			return src, nil
		}
		start := r.line
		ref, err := r.read()
		if err != nil {
			return src, err
		}
		src.Forms = append(src.Forms, Form{Ref: ref, StartLine: start, EndLine: r.line})
	}
}

func (r *reader) eof() bool { return r.pos >= len(r.text) }

func (r *reader) peek() byte { return r.text[r.pos] }

func (r *reader) advance() {
	if r.text[r.pos] == '\n' {
		r.line++
		r.col = 0
	}
	r.pos++
	r.col++
}

func (r *reader) errorf(incomplete bool, format string, args ...any) *ReadError {
	return &ReadError{
		Line:       r.line,
		Col:        r.col,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: incomplete,
	}
}

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func delimiter(c byte) bool {
	return whitespace(c) || c == '(' || c == ')' || c == '[' || c == ']' || c == '"' || c == ';'
}

// skips white space and comments
func (r *reader) skipSpace() {
	for !r.eof() {
		c := r.peek()
		if c == ';' {
			for !r.eof() && r.peek() != '\n' {
				r.advance()
			}
			continue
		}
		if !whitespace(c) {
			return
		}
		r.advance()
	}
}

// reads the next expression, the cursor must be on its first character
func (r *reader) read() (lisptype.Ref, error) {
	switch c := r.peek(); {
	case c == '(':
		r.advance()
		return r.readList(')', nil)
	case c == '[':
		r.advance()
		return r.readList(']', []lisptype.Ref{r.heap.NewSymbol(vecSym)})
	case c == '#' && r.pos+1 < len(r.text) && r.text[r.pos+1] == '(':
		r.advance()
		r.advance()
		return r.readList(')', []lisptype.Ref{r.heap.NewSymbol(dictSym)})
	case c == '"':
		r.advance()
		return r.readString()
	case c == '\'':
		return r.readPrefixed(quoteSym)
	case c == '`':
		return r.readPrefixed(backquoteSym)
	case c == ')' || c == ']':
		err := r.errorf(false, "Unexpected '%c'.", c)
		r.advance()
		return lisptype.NilRef, err
	}
	return r.readAtom(), nil
}

// 'x reads as (' x) and `x as (` x)
func (r *reader) readPrefixed(marker string) (lisptype.Ref, error) {
	r.advance()
	r.skipSpace()
	if r.eof() {
		return lisptype.NilRef, r.errorf(true, "Missing expression after %s.", marker)
	}
	quoted, err := r.read()
	if err != nil {
		return lisptype.NilRef, err
	}
	return r.heap.FromSlice([]lisptype.Ref{r.heap.NewSymbol(marker), quoted}), nil
}

// reads elements up to the closing character. an empty list is nil.
func (r *reader) readList(closing byte, elems []lisptype.Ref) (lisptype.Ref, error) {
	for {
		r.skipSpace()
		if r.eof() {
			return lisptype.NilRef, r.errorf(true, "Could not find matching '%c'.", closing)
		}
		c := r.peek()
		if c == closing {
			r.advance()
			return r.heap.FromSlice(elems), nil
		}
		if c == ')' || c == ']' {
			return lisptype.NilRef, r.errorf(false, "Unexpected '%c'.", c)
		}
		elem, err := r.read()
		if err != nil {
			return lisptype.NilRef, err
		}
		elems = append(elems, elem)
	}
}

// read a string in and create a new atom for it
func (r *reader) readString() (lisptype.Ref, error) {
	var b strings.Builder
	escape := false
	for !r.eof() {
		c := r.peek()
		r.advance()
		if escape {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(c)
			}
			escape = false
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '"':
			return r.heap.NewString(b.String()), nil
		default:
			b.WriteByte(c)
		}
	}
	return lisptype.NilRef, r.errorf(true, "Could not find matching closing double quote.")
}

// reads a token and turns it into a number when it parses as one,
// otherwise into a symbol
func (r *reader) readAtom() lisptype.Ref {
	start := r.pos
	for !r.eof() && !delimiter(r.peek()) {
		r.advance()
	}
	token := r.text[start:r.pos]
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return r.heap.NewNum(n)
	}
	return r.heap.NewSymbol(token)
}

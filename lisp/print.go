package lisp

import (
	"strconv"
	"strings"

	lisptype "tlisp/lisp_type"
)

// nesting deeper than this prints as ...
const maxPrintDepth = 128

type printer struct {
	heap  *lisptype.Heap
	b     strings.Builder
	limit int
}

func (p *printer) full() bool { return p.b.Len() >= p.limit }

// appends s, cutting it at the limit
func (p *printer) write(s string) {
	if room := p.limit - p.b.Len(); len(s) > room {
		s = s[:room]
	}
	p.b.WriteString(s)
}

// print out each element in the list
// with special logic for cons pairs
func (p *printer) printList(r lisptype.Ref, depth int) {
	p.write("(")
	first := true
	for r != lisptype.NilRef && !p.full() {
		o := p.heap.Get(r)
		if o.Tag != lisptype.Cons {
			p.write(" . ")
			p.printValue(r, depth+1)
			break
		}
		if !first {
			p.write(" ")
		}
		first = false
		p.printValue(o.Car, depth+1)
		r = o.Cdr
	}
	p.write(")")
}

// converts a value to a string recursively,
// representing lists by wrapping them with parenthesis
func (p *printer) printValue(r lisptype.Ref, depth int) {
	if p.full() {
		return
	}
	if depth > maxPrintDepth {
		p.write("...")
		return
	}
	o := p.heap.Get(r)
	switch o.Tag {
	case lisptype.Nil:
		p.write("nil")
	case lisptype.Bool:
		if o.Num != 0 {
			p.write("true")
		} else {
			p.write("false")
		}
	case lisptype.Num:
		p.write(strconv.FormatInt(o.Num, 10))
	case lisptype.String, lisptype.Symbol:
		p.write(o.Text)
	case lisptype.Cons:
		p.printList(r, depth)
	case lisptype.Dict:
		p.write("#(")
		first := true
		o.Dict.ForEach(func(key, val lisptype.Ref) bool {
			if !first {
				p.write(" ")
			}
			first = false
			p.printValue(key, depth+1)
			p.write(" ")
			p.printValue(val, depth+1)
			return !p.full()
		})
		p.write(")")
	case lisptype.Vec:
		p.write("[")
		for i, e := range o.Vec.Elems {
			if p.full() {
				break
			}
			if i > 0 {
				p.write(" ")
			}
			p.printValue(e, depth+1)
		}
		p.write("]")
	case lisptype.NFunc:
		p.write("<native func>")
	case lisptype.Lambda:
		p.write("<lambda>")
	case lisptype.Macro:
		p.write("<macro>")
	case lisptype.StructDef:
		p.write("<structdef " + o.Type.Name + ">")
	case lisptype.Struct:
		def := p.heap.StructType(r)
		p.write("<" + def.Name)
		for i, f := range o.Fields {
			if p.full() {
				break
			}
			p.write(" " + def.Fields[i] + ":")
			p.printValue(f, depth+1)
		}
		p.write(">")
	default:
		p.write("<" + o.Tag.String() + ">")
	}
}

// Sprint renders r in at most maxlen bytes.
func Sprint(heap *lisptype.Heap, r lisptype.Ref, maxlen int) string {
	p := &printer{heap: heap, limit: maxlen}
	p.printValue(r, 0)
	return p.b.String()
}

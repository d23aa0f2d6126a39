package lisp

import (
	lisptype "tlisp/lisp_type"
)

func (i *Interpreter) list(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	return i.Heap.FromSlice(vals), nil
}

// (cons x list) where list is nil or a cons
func (i *Interpreter) cons(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("cons", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	car, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	cdr, err := i.evalArg(args, 1, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if cdr != lisptype.NilRef {
		if err := i.assertType(cdr, lisptype.Cons); err != nil {
			return lisptype.NilRef, err
		}
	}
	return i.Heap.NewCons(car, cdr), nil
}

// (append x list) links a new cell holding x at the end of list and
// returns the head, a new one when list is nil
func (i *Interpreter) append(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("append", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	elem, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	head, err := i.evalArg(args, 1, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if head != lisptype.NilRef {
		if err := i.assertType(head, lisptype.Cons); err != nil {
			return lisptype.NilRef, err
		}
	}
	return i.Heap.ListAppend(head, i.Heap.NewCons(elem, lisptype.NilRef)), nil
}

func (i *Interpreter) car(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("car", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	list, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if list == lisptype.NilRef {
		return lisptype.NilRef, nil
	}
	if err := i.assertType(list, lisptype.Cons); err != nil {
		return lisptype.NilRef, err
	}
	return i.Heap.Get(list).Car, nil
}

func (i *Interpreter) cdr(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("cdr", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	list, err := i.evalTyped(args, 0, lisptype.Cons, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	return i.Heap.Get(list).Cdr, nil
}

func (i *Interpreter) length(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("len", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	coll, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	o := i.Heap.Get(coll)
	var n int
	switch o.Tag {
	case lisptype.Nil:
	case lisptype.Cons:
		n = i.Heap.ListLen(coll)
	case lisptype.Dict:
		n = o.Dict.Len()
	case lisptype.Vec:
		n = len(o.Vec.Elems)
	case lisptype.String:
		n = len(o.Text)
	default:
		return lisptype.NilRef, newError(TypeMismatch, "Wrong arg type to len: %s.", o.Tag)
	}
	return i.Heap.NewNum(int64(n)), nil
}

// evaluates the (list fn) arguments shared by the higher order builtins.
// ok is false when the list is nil and there is nothing to do.
func (i *Interpreter) listAndFn(name string, args lisptype.Ref, frame *lisptype.Frame) (elems []lisptype.Ref, fn lisptype.Ref, ok bool, err error) {
	if err := i.assertNargs(name, 2, args); err != nil {
		return nil, lisptype.NilRef, false, err
	}
	list, err := i.evalArg(args, 0, frame)
	if err != nil || list == lisptype.NilRef {
		return nil, lisptype.NilRef, false, err
	}
	if err := i.assertType(list, lisptype.Cons); err != nil {
		return nil, lisptype.NilRef, false, err
	}
	fn, err = i.evalArg(args, 1, frame)
	if err != nil {
		return nil, lisptype.NilRef, false, err
	}
	if err := i.assertFn(fn); err != nil {
		return nil, lisptype.NilRef, false, err
	}
	return i.Heap.ToSlice(list), fn, true, nil
}

func (i *Interpreter) forEach(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	elems, fn, ok, err := i.listAndFn("for-each", args, frame)
	if !ok {
		return lisptype.NilRef, err
	}
	for _, e := range elems {
		if _, err := i.callFn(fn, []lisptype.Ref{e}, frame); err != nil {
			return lisptype.NilRef, err
		}
	}
	return lisptype.NilRef, nil
}

func (i *Interpreter) mapFn(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	elems, fn, ok, err := i.listAndFn("map", args, frame)
	if !ok {
		return lisptype.NilRef, err
	}
	res := make([]lisptype.Ref, len(elems))
	for n, e := range elems {
		if res[n], err = i.callFn(fn, []lisptype.Ref{e}, frame); err != nil {
			return lisptype.NilRef, err
		}
	}
	return i.Heap.FromSlice(res), nil
}

func (i *Interpreter) filter(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	elems, fn, ok, err := i.listAndFn("filter", args, frame)
	if !ok {
		return lisptype.NilRef, err
	}
	var kept []lisptype.Ref
	for _, e := range elems {
		keep, err := i.callFn(fn, []lisptype.Ref{e}, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		if keep == lisptype.TrueRef {
			kept = append(kept, e)
		}
	}
	return i.Heap.FromSlice(kept), nil
}

// a single element list reduces to its element
func (i *Interpreter) reduce(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	elems, fn, ok, err := i.listAndFn("reduce", args, frame)
	if !ok {
		return lisptype.NilRef, err
	}
	acc := elems[0]
	for _, e := range elems[1:] {
		if acc, err = i.callFn(fn, []lisptype.Ref{acc, e}, frame); err != nil {
			return lisptype.NilRef, err
		}
	}
	return acc, nil
}

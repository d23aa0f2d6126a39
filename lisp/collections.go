package lisp

import (
	lisptype "tlisp/lisp_type"
)

// #(k v ...) builds a dictionary
func (i *Interpreter) dict(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if len(vals)%2 != 0 {
		return lisptype.NilRef, newError(InvalidForm, "Missing matching value for %s.", i.show(vals[len(vals)-1]))
	}
	d := i.Heap.NewDict()
	for n := 0; n < len(vals); n += 2 {
		i.Heap.DictIns(d, vals[n], vals[n+1])
	}
	return d, nil
}

func (i *Interpreter) vec(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	v := i.Heap.NewVec()
	i.Heap.Get(v).Vec.Elems = vals
	return v, nil
}

// converts an index argument
func (i *Interpreter) index(r lisptype.Ref) (int, error) {
	if err := i.assertType(r, lisptype.Num); err != nil {
		return 0, err
	}
	return int(i.Heap.Get(r).Num), nil
}

// evaluates the collection and the two arguments of get, rem and rem-at
func (i *Interpreter) collArgs(name string, args lisptype.Ref, frame *lisptype.Frame) (coll, key lisptype.Ref, err error) {
	if err := i.assertNargs(name, 2, args); err != nil {
		return lisptype.NilRef, lisptype.NilRef, err
	}
	if coll, err = i.evalArg(args, 0, frame); err != nil {
		return lisptype.NilRef, lisptype.NilRef, err
	}
	if key, err = i.evalArg(args, 1, frame); err != nil {
		return lisptype.NilRef, lisptype.NilRef, err
	}
	return coll, key, nil
}

func wrongColl(name string, tag lisptype.Tag) error {
	return newError(TypeMismatch, "Wrong arg type to %s: %s.", name, tag)
}

// nil when the index or key is absent
func (i *Interpreter) get(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	coll, key, err := i.collArgs("get", args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	switch tag := i.Heap.Tag(coll); tag {
	case lisptype.Nil:
		return lisptype.NilRef, nil
	case lisptype.Cons:
		idx, err := i.index(key)
		if err != nil {
			return lisptype.NilRef, err
		}
		v, _ := i.Heap.Nth(coll, idx)
		return v, nil
	case lisptype.Dict:
		v, _ := i.Heap.DictGet(coll, key)
		return v, nil
	case lisptype.Vec:
		idx, err := i.index(key)
		if err != nil {
			return lisptype.NilRef, err
		}
		elems := i.Heap.Get(coll).Vec.Elems
		if idx < 0 || idx >= len(elems) {
			return lisptype.NilRef, nil
		}
		return elems[idx], nil
	default:
		return lisptype.NilRef, wrongColl("get", tag)
	}
}

// (ins coll x...) appends to lists and vectors, (ins dict k v...) sets
// keys. Lists return their head, dicts the previous value of the last
// key, vectors nil.
func (i *Interpreter) ins(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("ins", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	coll, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	tag := i.Heap.Tag(coll)
	if tag == lisptype.Nil {
		if err := i.assertNargs("ins", 2, args); err != nil {
			return lisptype.NilRef, err
		}
	}
	vals, err := i.evalArgs(i.Heap.Get(args).Cdr, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	switch tag {
	case lisptype.Nil:
		return i.Heap.NewCons(vals[0], lisptype.NilRef), nil
	case lisptype.Cons:
		for _, v := range vals {
			coll = i.Heap.ListAppend(coll, i.Heap.NewCons(v, lisptype.NilRef))
		}
		return coll, nil
	case lisptype.Dict:
		if len(vals)%2 != 0 {
			return lisptype.NilRef, newError(InvalidForm, "Missing matching value for %s.", i.show(vals[len(vals)-1]))
		}
		res := lisptype.NilRef
		for n := 0; n < len(vals); n += 2 {
			res, _ = i.Heap.DictIns(coll, vals[n], vals[n+1])
		}
		return res, nil
	case lisptype.Vec:
		v := i.Heap.Get(coll).Vec
		v.Elems = append(v.Elems, vals...)
		return lisptype.NilRef, nil
	default:
		return lisptype.NilRef, wrongColl("ins", tag)
	}
}

// (ins-at coll x idx)
func (i *Interpreter) insAt(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("ins-at", 3, args); err != nil {
		return lisptype.NilRef, err
	}
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	coll, obj := vals[0], vals[1]
	idx, err := i.index(vals[2])
	if err != nil {
		return lisptype.NilRef, err
	}
	switch tag := i.Heap.Tag(coll); tag {
	case lisptype.Nil:
		return lisptype.NilRef, nil
	case lisptype.Cons:
		return i.Heap.ListInsAt(coll, i.Heap.NewCons(obj, lisptype.NilRef), idx), nil
	case lisptype.Vec:
		return lisptype.BoolRef(i.Heap.Get(coll).Vec.InsAt(obj, idx)), nil
	default:
		return lisptype.NilRef, wrongColl("ins-at", tag)
	}
}

// removes by value from lists and vectors and by key from dicts
func (i *Interpreter) rem(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	coll, key, err := i.collArgs("rem", args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	switch tag := i.Heap.Tag(coll); tag {
	case lisptype.Nil:
		return lisptype.NilRef, nil
	case lisptype.Cons:
		return i.Heap.ListRem(coll, key), nil
	case lisptype.Dict:
		v, _ := i.Heap.DictRem(coll, key)
		return v, nil
	case lisptype.Vec:
		return lisptype.BoolRef(i.Heap.VecRem(coll, key)), nil
	default:
		return lisptype.NilRef, wrongColl("rem", tag)
	}
}

func (i *Interpreter) remAt(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	coll, key, err := i.collArgs("rem-at", args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	idx, err := i.index(key)
	if err != nil {
		return lisptype.NilRef, err
	}
	switch tag := i.Heap.Tag(coll); tag {
	case lisptype.Nil:
		return lisptype.NilRef, nil
	case lisptype.Cons:
		return i.Heap.ListRemAt(coll, idx), nil
	case lisptype.Vec:
		v, _ := i.Heap.Get(coll).Vec.RemAt(idx)
		return v, nil
	default:
		return lisptype.NilRef, wrongColl("rem-at", tag)
	}
}

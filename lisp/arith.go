package lisp

import (
	lisptype "tlisp/lisp_type"
)

type arithOp func(a, b int64) (int64, error)

func opAdd(a, b int64) (int64, error) { return a + b, nil }
func opMul(a, b int64) (int64, error) { return a * b, nil }
func opAnd(a, b int64) (int64, error) { return a & b, nil }
func opOr(a, b int64) (int64, error)  { return a | b, nil }
func opXor(a, b int64) (int64, error) { return a ^ b, nil }

func opDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, newError(DivisionByZero, "Division by zero.")
	}
	return a / b, nil
}

// evaluates every argument, checking each is a number
func (i *Interpreter) evalNums(args lisptype.Ref, frame *lisptype.Frame) ([]int64, error) {
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return nil, err
	}
	nums := make([]int64, len(vals))
	for n, v := range vals {
		if err := i.assertType(v, lisptype.Num); err != nil {
			return nil, err
		}
		nums[n] = i.Heap.Get(v).Num
	}
	return nums, nil
}

// arith folds op left to right over a fresh copy of the first argument.
// no arguments give nil.
func (i *Interpreter) arith(op arithOp) lisptype.NativeFunc {
	return func(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
		nums, err := i.evalNums(args, frame)
		if err != nil || len(nums) == 0 {
			return lisptype.NilRef, err
		}
		acc := nums[0]
		for _, n := range nums[1:] {
			if acc, err = op(acc, n); err != nil {
				return lisptype.NilRef, err
			}
		}
		return i.Heap.NewNum(acc), nil
	}
}

func (i *Interpreter) sub(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	nums, err := i.evalNums(args, frame)
	if err != nil || len(nums) == 0 {
		return lisptype.NilRef, err
	}
	if len(nums) == 1 {
		return i.Heap.NewNum(-nums[0]), nil
	}
	acc := nums[0]
	for _, n := range nums[1:] {
		acc -= n
	}
	return i.Heap.NewNum(acc), nil
}

type cmpOp func(a, b int64) bool

func cmpGt(a, b int64) bool { return a > b }
func cmpLt(a, b int64) bool { return a < b }
func cmpGe(a, b int64) bool { return a >= b }
func cmpLe(a, b int64) bool { return a <= b }

func (i *Interpreter) compare(name string, op cmpOp) lisptype.NativeFunc {
	return func(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
		if err := i.assertNargs(name, 2, args); err != nil {
			return lisptype.NilRef, err
		}
		nums, err := i.evalNums(args, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		return lisptype.BoolRef(op(nums[0], nums[1])), nil
	}
}

func (i *Interpreter) equals(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("eq", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	return lisptype.BoolRef(i.Heap.Equal(vals[0], vals[1])), nil
}

// evaluates every argument, checking each is a boolean
func (i *Interpreter) evalBools(args lisptype.Ref, frame *lisptype.Frame) ([]bool, error) {
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return nil, err
	}
	bools := make([]bool, len(vals))
	for n, v := range vals {
		if err := i.assertType(v, lisptype.Bool); err != nil {
			return nil, err
		}
		bools[n] = v == lisptype.TrueRef
	}
	return bools, nil
}

// and/or take exactly two booleans, both are always evaluated
func (i *Interpreter) logic(name string, conjunction bool) lisptype.NativeFunc {
	return func(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
		if err := i.assertNargs(name, 2, args); err != nil {
			return lisptype.NilRef, err
		}
		b, err := i.evalBools(args, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		if conjunction {
			return lisptype.BoolRef(b[0] && b[1]), nil
		}
		return lisptype.BoolRef(b[0] || b[1]), nil
	}
}

func (i *Interpreter) not(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("not", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	b, err := i.evalBools(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	return lisptype.BoolRef(!b[0]), nil
}

package lisp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	lisptype "tlisp/lisp_type"
)

// Interpreter owns a heap, the global frame and the process state the
// builtins need (output, open files, pending collection requests).
type Interpreter struct {
	Heap   *lisptype.Heap
	Global *lisptype.Frame

	cfg    Config
	logger *slog.Logger
	out    io.Writer
	files  []*openFile

	gcRequested bool
	nextGC      int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithLogger sets the logger for collector and runner records.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// NewInterpreter creates a heap sized by cfg and a global frame holding
// the constants and every builtin.
func NewInterpreter(cfg Config, opts ...Option) *Interpreter {
	if cfg.PrintLimit <= 0 {
		cfg.PrintLimit = DefaultConfig().PrintLimit
	}
	i := &Interpreter{
		Heap:   lisptype.NewHeap(cfg.Heap.MinObjects, cfg.Heap.MaxObjects),
		Global: lisptype.NewFrame(nil),
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    os.Stdout,
		nextGC: cfg.GC.Threshold,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.Global.Define("nil", lisptype.NilRef)
	i.Global.Define("true", lisptype.TrueRef)
	i.Global.Define("false", lisptype.FalseRef)
	for _, b := range i.builtins() {
		i.Global.Define(b.name, i.Heap.NewNative(b.name, b.fn))
	}
	return i
}

// Config returns the settings the interpreter was built with.
func (i *Interpreter) Config() Config { return i.cfg }

func (i *Interpreter) lexical() bool { return i.cfg.Scoping == LexicalScoping }

// drops a call or let scope, unless closures may have captured it
func (i *Interpreter) release(f *lisptype.Frame) {
	if !i.lexical() {
		f.Release()
	}
}

// renders a value for error messages
func (i *Interpreter) show(r lisptype.Ref) string {
	return Sprint(i.Heap, r, 128)
}

// Eval evaluates an expression in a frame. Self-evaluating objects are
// returned as they are, symbols are looked up, and lists are applied.
func (i *Interpreter) Eval(r lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	o := i.Heap.Get(r)
	switch o.Tag {
	case lisptype.Symbol:
		v, err := frame.Lookup(o.Text)
		if err != nil {
			return lisptype.NilRef, newError(UndefinedSymbol, "Undefined symbol '%s'.", o.Text)
		}
		return v, nil
	case lisptype.Cons:
		return i.apply(r, frame)
	}
	return r, nil
}

// evaluates the head of a form and dispatches on what it yields
func (i *Interpreter) apply(form lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	head, args := i.Heap.Get(form).Car, i.Heap.Get(form).Cdr
	fn, err := i.Eval(head, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	switch i.Heap.Tag(fn) {
	case lisptype.NFunc:
		return i.Heap.Get(fn).Native.Fn(args, frame)
	case lisptype.Lambda:
		vals, err := i.evalArgs(args, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		return i.applyLambda(fn, vals, frame)
	case lisptype.Macro:
		return i.applyMacro(fn, args, frame)
	case lisptype.StructDef:
		return i.createStruct(fn, args, frame)
	case lisptype.Struct:
		return i.getStructField(fn, args)
	}
	return lisptype.NilRef, newError(NotCallable, "apply cannot be called on object of type %s.", i.Heap.Tag(fn))
}

// the frame a call scope chains to
func (i *Interpreter) callOuter(fn lisptype.Ref, caller *lisptype.Frame) *lisptype.Frame {
	if scope := i.Heap.Get(fn).Scope; i.lexical() && scope != nil {
		return scope
	}
	return caller
}

// binds params to vals in scope, checking the counts match
func (i *Interpreter) bindParams(scope *lisptype.Frame, params lisptype.Ref, vals []lisptype.Ref) error {
	names := i.Heap.ToSlice(params)
	if len(vals) > len(names) {
		return newError(TooManyArguments, "Too many arguments. Got %d. Expected %d.", len(vals), len(names))
	}
	if len(vals) < len(names) {
		return newError(TooFewArguments, "Too few arguments. Got %d. Expected %d.", len(vals), len(names))
	}
	for n, name := range names {
		sym := i.Heap.Get(name).Text
		if err := scope.Define(sym, vals[n]); err != nil {
			return newError(DuplicateBinding, "Duplicate parameter %s.", sym)
		}
	}
	return nil
}

// runs body forms in order and returns the value of the last one
func (i *Interpreter) evalBody(body lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	res := lisptype.NilRef
	for body != lisptype.NilRef {
		cell := i.Heap.Get(body)
		form, next := cell.Car, cell.Cdr
		var err error
		if res, err = i.Eval(form, frame); err != nil {
			return lisptype.NilRef, err
		}
		body = next
	}
	return res, nil
}

// applyLambda calls fn with already evaluated arguments in a fresh scope.
func (i *Interpreter) applyLambda(fn lisptype.Ref, vals []lisptype.Ref, caller *lisptype.Frame) (lisptype.Ref, error) {
	params, body := i.Heap.Get(fn).Car, i.Heap.Get(fn).Cdr
	scope := lisptype.NewFrame(i.callOuter(fn, caller))
	defer i.release(scope)
	if err := i.bindParams(scope, params, vals); err != nil {
		return lisptype.NilRef, err
	}
	return i.evalBody(body, scope)
}

// applyMacro binds the unevaluated arguments in a throwaway scope,
// evaluates the first body form there to get the expansion, then
// evaluates the expansion and the remaining body forms in the caller's
// frame. The stored body is never modified.
func (i *Interpreter) applyMacro(m lisptype.Ref, args lisptype.Ref, caller *lisptype.Frame) (lisptype.Ref, error) {
	params, body := i.Heap.Get(m).Car, i.Heap.Get(m).Cdr
	scope := lisptype.NewFrame(i.callOuter(m, caller))
	if err := i.bindParams(scope, params, i.Heap.ToSlice(args)); err != nil {
		i.release(scope)
		return lisptype.NilRef, err
	}
	first, rest := i.Heap.Get(body).Car, i.Heap.Get(body).Cdr
	expansion, err := i.Eval(first, scope)
	i.release(scope)
	if err != nil {
		return lisptype.NilRef, err
	}
	if i.logger.Enabled(context.Background(), slog.LevelDebug) {
		i.logger.Debug("macro expanded", "expansion", Sprint(i.Heap, expansion, i.cfg.PrintLimit))
	}
	res, err := i.Eval(expansion, caller)
	if err != nil {
		return lisptype.NilRef, err
	}
	if rest == lisptype.NilRef {
		return res, nil
	}
	return i.evalBody(rest, caller)
}

// (Name a b ...) builds an instance, missing fields are nil
func (i *Interpreter) createStruct(def, args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	typ := i.Heap.Get(def).Type
	if n := i.Heap.ListLen(args); n > len(typ.Fields) {
		return lisptype.NilRef, newError(TooManyArguments, "Too many fields to instantiate struct %s. Got %d. Expected at most %d.", typ.Name, n, len(typ.Fields))
	}
	vals, err := i.evalArgs(args, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	obj := i.Heap.NewStruct(def)
	copy(i.Heap.Get(obj).Fields, vals)
	return obj, nil
}

// (instance field) reads a field, the name is not evaluated
func (i *Interpreter) getStructField(obj, args lisptype.Ref) (lisptype.Ref, error) {
	if err := i.assertNargs("struct field access", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	field := i.argAt(args, 0)
	if err := i.assertType(field, lisptype.Symbol); err != nil {
		return lisptype.NilRef, err
	}
	name := i.Heap.Get(field).Text
	idx := i.Heap.StructType(obj).FieldIndex(name)
	if idx < 0 {
		return lisptype.NilRef, newError(NoSuchField, "No field %s in %s.", name, i.show(obj))
	}
	return i.Heap.Get(obj).Fields[idx], nil
}

// callFn applies fn to values that are already evaluated, as map,
// filter and apply do. Builtins and constructors take unevaluated
// argument lists, so each value is passed as a quoted form.
func (i *Interpreter) callFn(fn lisptype.Ref, vals []lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	switch i.Heap.Tag(fn) {
	case lisptype.Lambda:
		return i.applyLambda(fn, vals, frame)
	case lisptype.NFunc:
		return i.Heap.Get(fn).Native.Fn(i.quoteAll(vals), frame)
	case lisptype.StructDef:
		return i.createStruct(fn, i.quoteAll(vals), frame)
	case lisptype.Macro:
		return i.applyMacro(fn, i.Heap.FromSlice(vals), frame)
	case lisptype.Struct:
		return i.getStructField(fn, i.Heap.FromSlice(vals))
	}
	return lisptype.NilRef, newError(NotCallable, "apply cannot be called on object of type %s.", i.Heap.Tag(fn))
}

func (i *Interpreter) quoteAll(vals []lisptype.Ref) lisptype.Ref {
	quote := i.Heap.NewSymbol(quoteSym)
	quoted := make([]lisptype.Ref, len(vals))
	for n, v := range vals {
		quoted[n] = i.Heap.FromSlice([]lisptype.Ref{quote, v})
	}
	return i.Heap.FromSlice(quoted)
}

// argument helpers shared by the builtins

func (i *Interpreter) argAt(args lisptype.Ref, idx int) lisptype.Ref {
	r, _ := i.Heap.Nth(args, idx)
	return r
}

func (i *Interpreter) evalArg(args lisptype.Ref, idx int, frame *lisptype.Frame) (lisptype.Ref, error) {
	return i.Eval(i.argAt(args, idx), frame)
}

// evaluates every element of an argument list in order
func (i *Interpreter) evalArgs(args lisptype.Ref, frame *lisptype.Frame) ([]lisptype.Ref, error) {
	forms := i.Heap.ToSlice(args)
	vals := make([]lisptype.Ref, len(forms))
	for n, f := range forms {
		v, err := i.Eval(f, frame)
		if err != nil {
			return nil, err
		}
		vals[n] = v
	}
	return vals, nil
}

func (i *Interpreter) assertNargs(name string, n int, args lisptype.Ref) error {
	got := i.Heap.ListLen(args)
	switch {
	case got < n:
		return newError(TooFewArguments, "Wrong number of arguments to %s. Got %d. Expected %d.", name, got, n)
	case got > n:
		return newError(TooManyArguments, "Wrong number of arguments to %s. Got %d. Expected %d.", name, got, n)
	}
	return nil
}

func (i *Interpreter) assertMinArgs(name string, n int, args lisptype.Ref) error {
	if got := i.Heap.ListLen(args); got < n {
		return newError(TooFewArguments, "%s requires at least %d argument%s. Got %d.", name, n, plural(n), got)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (i *Interpreter) assertType(r lisptype.Ref, expected lisptype.Tag) error {
	if tag := i.Heap.Tag(r); tag != expected {
		return newError(TypeMismatch, "Wrong type for %s (%s). Expected %s.", i.show(r), tag, expected)
	}
	return nil
}

func (i *Interpreter) assertFn(r lisptype.Ref) error {
	switch i.Heap.Tag(r) {
	case lisptype.NFunc, lisptype.Lambda:
		return nil
	}
	return newError(TypeMismatch, "Wrong type for %s. Expected function.", i.show(r))
}

// evaluates one argument and checks its tag
func (i *Interpreter) evalTyped(args lisptype.Ref, idx int, tag lisptype.Tag, frame *lisptype.Frame) (lisptype.Ref, error) {
	v, err := i.evalArg(args, idx, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if err := i.assertType(v, tag); err != nil {
		return lisptype.NilRef, err
	}
	return v, nil
}

// maps frame errors onto evaluation errors
func defineError(err error, name string) error {
	if errors.Is(err, lisptype.ErrDuplicateBinding) {
		return newError(DuplicateBinding, "Symbol %s is already defined in this scope.", name)
	}
	return err
}

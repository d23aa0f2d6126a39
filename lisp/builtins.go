package lisp

import (
	"strings"

	lisptype "tlisp/lisp_type"
)

type builtin struct {
	name string
	fn   lisptype.NativeFunc
}

// every native bound in the global frame. natives receive their
// arguments unevaluated and decide what to evaluate themselves.
func (i *Interpreter) builtins() []builtin {
	return []builtin{
		{"eval", i.evalFn},             // evaluate the value of the argument
		{"apply", i.applyFn},           // call a function with a list of arguments
		{quoteSym, i.quote},            // return the argument unevaluated
		{backquoteSym, i.backquote},    // template with ~symbol substitution
		{"type-of", i.typeOf},          // tag name, or the struct name for instances
		{"let", i.let},                 // evaluate a body with local bindings
		{"do", i.do},                   // evaluate forms in order
		{"if", i.ifFn},                 // conditional, only true is truthy
		{"while", i.while},             // loop while the condition is true
		{"def", i.def},                 // bind a symbol in the current scope
		{"set!", i.set},                // rebind an existing symbol
		{"defstruct", i.defstruct},     // define a record type
		{"setq", i.setq},               // set a field of a record
		{"lambda", i.lambda},           // create a function
		{"macro", i.macro},             // create a macro
		{"gc", i.gc},                   // request a collection at the next safe point
		{"list", i.list},               // build a list from evaluated arguments
		{"cons", i.cons},               // prepend to a list
		{"append", i.append},           // link an element at the end of a list
		{"car", i.car},                 // first element
		{"cdr", i.cdr},                 // rest of the list
		{"len", i.length},              // size of a collection
		{"for-each", i.forEach},        // call a function for each element
		{"map", i.mapFn},               // list of results
		{"filter", i.filter},           // elements the predicate accepts
		{"reduce", i.reduce},           // left fold
		{dictSym, i.dict},              // dictionary from key value pairs
		{vecSym, i.vec},                // vector from elements
		{"get", i.get},                 // element by index or key
		{"ins", i.ins},                 // insert into a collection
		{"ins-at", i.insAt},            // insert at an index
		{"rem", i.rem},                 // remove by value or key
		{"rem-at", i.remAt},            // remove at an index
		{"open", i.open},               // open a file, returns a handle
		{"readline", i.readline},       // read one line from a handle
		{"write", i.write},             // write a string to a handle
		{"close", i.close},             // close a handle
		{"print", i.print},             // print each argument on its own line
		{"str", i.str},                 // concatenate printed arguments
		{"+", i.arith(opAdd)},          // add values
		{"-", i.sub},                   // subtract values, negate a single one
		{"*", i.arith(opMul)},          // multiply values
		{"/", i.arith(opDiv)},          // divide values
		{"&", i.arith(opAnd)},          // bitwise and
		{"|", i.arith(opOr)},           // bitwise or
		{"^", i.arith(opXor)},          // bitwise xor
		{"eq", i.equals},               // value equality for atoms, identity otherwise
		{">", i.compare(">", cmpGt)},   // test if l is greater than r
		{"<", i.compare("<", cmpLt)},   // test if l is less than r
		{">=", i.compare(">=", cmpGe)}, // test if l is at least r
		{"<=", i.compare("<=", cmpLe)}, // test if l is at most r
		{"and", i.logic("and", true)},  // both booleans true
		{"or", i.logic("or", false)},   // either boolean true
		{"not", i.not},                 // negate a boolean
	}
}

func (i *Interpreter) evalFn(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("eval", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	expr, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	return i.Eval(expr, frame)
}

// (apply f list)
func (i *Interpreter) applyFn(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("apply", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	fn, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	list, err := i.evalArg(args, 1, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if list != lisptype.NilRef {
		if err := i.assertType(list, lisptype.Cons); err != nil {
			return lisptype.NilRef, err
		}
	}
	return i.callFn(fn, i.Heap.ToSlice(list), frame)
}

// a single argument is returned as it is, several come back as a list
func (i *Interpreter) quote(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("quote", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	if i.Heap.Get(args).Cdr == lisptype.NilRef {
		return i.Heap.Get(args).Car, nil
	}
	return args, nil
}

func (i *Interpreter) backquote(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("backquote", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	if i.Heap.Get(args).Cdr == lisptype.NilRef {
		return i.expand(i.Heap.Get(args).Car, frame)
	}
	return i.expand(args, frame)
}

// rebuilds a template, replacing ~name with the value bound to name
func (i *Interpreter) expand(r lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	o := i.Heap.Get(r)
	switch o.Tag {
	case lisptype.Symbol:
		name, ok := strings.CutPrefix(o.Text, escapePrefix)
		if !ok || name == "" {
			return r, nil
		}
		v, err := frame.Lookup(name)
		if err != nil {
			return lisptype.NilRef, newError(UndefinedSymbol, "Unable to expand symbol %s.", o.Text)
		}
		return v, nil
	case lisptype.Cons:
		var elems []lisptype.Ref
		tail := lisptype.NilRef
		for cur := r; cur != lisptype.NilRef; {
			cell := i.Heap.Get(cur)
			if cell.Tag != lisptype.Cons {
				v, err := i.expand(cur, frame)
				if err != nil {
					return lisptype.NilRef, err
				}
				tail = v
				break
			}
			car, next := cell.Car, cell.Cdr
			v, err := i.expand(car, frame)
			if err != nil {
				return lisptype.NilRef, err
			}
			elems = append(elems, v)
			cur = next
		}
		list := tail
		for n := len(elems) - 1; n >= 0; n-- {
			list = i.Heap.NewCons(elems[n], list)
		}
		return list, nil
	}
	return r, nil
}

func (i *Interpreter) typeOf(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("type-of", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	v, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if i.Heap.Tag(v) == lisptype.Struct {
		return i.Heap.NewString(i.Heap.StructType(v).Name), nil
	}
	return i.Heap.NewString(i.Heap.Tag(v).String()), nil
}

// (let (a 1 b (+ a 1)) body...) binds in order, so later values see
// earlier names
func (i *Interpreter) let(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("let", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	cell := i.Heap.Get(args)
	bindings, body := cell.Car, cell.Cdr
	if bindings != lisptype.NilRef {
		if err := i.assertType(bindings, lisptype.Cons); err != nil {
			return lisptype.NilRef, err
		}
	}
	scope := lisptype.NewFrame(frame)
	defer i.release(scope)
	for bindings != lisptype.NilRef {
		pair := i.Heap.Get(bindings)
		sym, rest := pair.Car, pair.Cdr
		if err := i.assertType(sym, lisptype.Symbol); err != nil {
			return lisptype.NilRef, err
		}
		name := i.Heap.Get(sym).Text
		if rest == lisptype.NilRef {
			return lisptype.NilRef, newError(NoMatchingLetBinding, "No matching binding for %s.", name)
		}
		expr, next := i.Heap.Get(rest).Car, i.Heap.Get(rest).Cdr
		v, err := i.Eval(expr, scope)
		if err != nil {
			return lisptype.NilRef, err
		}
		if err := scope.Define(name, v); err != nil {
			return lisptype.NilRef, defineError(err, name)
		}
		bindings = next
	}
	return i.evalBody(body, scope)
}

func (i *Interpreter) do(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	return i.evalBody(args, frame)
}

func (i *Interpreter) ifFn(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	n := i.Heap.ListLen(args)
	if n != 2 && n != 3 {
		return lisptype.NilRef, newError(InvalidForm, "Invalid if expression. Got %d arguments. Expected 2 or 3.", n)
	}
	cond, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if cond == lisptype.TrueRef {
		return i.evalArg(args, 1, frame)
	}
	if n == 3 {
		return i.evalArg(args, 2, frame)
	}
	return lisptype.NilRef, nil
}

// (while cond body...) stops on false, anything but a boolean is an error
func (i *Interpreter) while(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("while", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	cond, body := i.Heap.Get(args).Car, i.Heap.Get(args).Cdr
	for {
		v, err := i.Eval(cond, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		switch v {
		case lisptype.FalseRef:
			return lisptype.NilRef, nil
		case lisptype.TrueRef:
		default:
			return lisptype.NilRef, newError(TypeMismatch, "Wrong type for while condition %s (%s). Expected bool.", i.show(v), i.Heap.Tag(v))
		}
		if _, err := i.evalBody(body, frame); err != nil {
			return lisptype.NilRef, err
		}
	}
}

// reads the name argument of def, set! and friends
func (i *Interpreter) symbolArg(args lisptype.Ref, idx int) (string, error) {
	sym := i.argAt(args, idx)
	if err := i.assertType(sym, lisptype.Symbol); err != nil {
		return "", err
	}
	return i.Heap.Get(sym).Text, nil
}

func (i *Interpreter) def(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("def", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	name, err := i.symbolArg(args, 0)
	if err != nil {
		return lisptype.NilRef, err
	}
	v, err := i.evalArg(args, 1, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if err := frame.Define(name, v); err != nil {
		return lisptype.NilRef, defineError(err, name)
	}
	return v, nil
}

func (i *Interpreter) set(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("set!", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	name, err := i.symbolArg(args, 0)
	if err != nil {
		return lisptype.NilRef, err
	}
	v, err := i.evalArg(args, 1, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	if err := frame.Update(name, v); err != nil {
		return lisptype.NilRef, newError(UndefinedSymbol, "No previous value for symbol %s.", name)
	}
	return v, nil
}

// (defstruct Name field...) binds Name to a new record type
func (i *Interpreter) defstruct(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("defstruct", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	name, err := i.symbolArg(args, 0)
	if err != nil {
		return lisptype.NilRef, err
	}
	var fields []string
	for _, f := range i.Heap.ToSlice(i.Heap.Get(args).Cdr) {
		if err := i.assertType(f, lisptype.Symbol); err != nil {
			return lisptype.NilRef, err
		}
		fields = append(fields, i.Heap.Get(f).Text)
	}
	def := i.Heap.NewStructDef(name, fields)
	if err := frame.Define(name, def); err != nil {
		return lisptype.NilRef, defineError(err, name)
	}
	return def, nil
}

// (setq instance field value) returns the instance
func (i *Interpreter) setq(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("setq", 3, args); err != nil {
		return lisptype.NilRef, err
	}
	obj, err := i.evalTyped(args, 0, lisptype.Struct, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	field, err := i.symbolArg(args, 1)
	if err != nil {
		return lisptype.NilRef, err
	}
	v, err := i.evalArg(args, 2, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	idx := i.Heap.StructType(obj).FieldIndex(field)
	if idx < 0 {
		return lisptype.NilRef, newError(NoSuchField, "No field %s for struct %s.", field, i.show(obj))
	}
	i.Heap.Get(obj).Fields[idx] = v
	return obj, nil
}

// checks a parameter list is nil or a list of symbols
func (i *Interpreter) assertParams(params lisptype.Ref) error {
	if params == lisptype.NilRef {
		return nil
	}
	if err := i.assertType(params, lisptype.Cons); err != nil {
		return err
	}
	for _, p := range i.Heap.ToSlice(params) {
		if err := i.assertType(p, lisptype.Symbol); err != nil {
			return err
		}
	}
	return nil
}

// the captured scope of a new lambda or macro
func (i *Interpreter) captured(frame *lisptype.Frame) *lisptype.Frame {
	if i.lexical() {
		return frame
	}
	return nil
}

func (i *Interpreter) lambda(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("lambda", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	params, body := i.Heap.Get(args).Car, i.Heap.Get(args).Cdr
	if err := i.assertParams(params); err != nil {
		return lisptype.NilRef, err
	}
	return i.Heap.NewLambda(params, body, i.captured(frame)), nil
}

func (i *Interpreter) macro(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertMinArgs("macro", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	params, body := i.Heap.Get(args).Car, i.Heap.Get(args).Cdr
	if err := i.assertParams(params); err != nil {
		return lisptype.NilRef, err
	}
	return i.Heap.NewMacro(params, body, i.captured(frame)), nil
}

// only flags a collection, the runner performs it at the next safe point
func (i *Interpreter) gc(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("gc", 0, args); err != nil {
		return lisptype.NilRef, err
	}
	i.gcRequested = true
	return lisptype.NilRef, nil
}

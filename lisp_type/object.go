package lisptype

// this is the tag enum for objects
type Tag uint8

// these are all the valid tags for an object
const (
	Bool      Tag = iota // one of the two boolean singletons
	Num                  // a signed integer
	String               // owned text
	Symbol               // owned text, compared by name
	Cons                 // car / cdr pair
	NFunc                // a builtin implemented in Go
	Lambda               // parameter list + body, arguments evaluated
	Macro                // parameter list + body, expanded then evaluated by the caller
	StructDef            // record type: name + field names
	Struct               // record instance
	Dict                 // association dictionary
	Vec                  // dynamic vector
	Nil                  // the empty / absent value
)

var tagNames = [...]string{
	Bool:      "bool",
	Num:       "num",
	String:    "string",
	Symbol:    "symbol",
	Cons:      "cons",
	NFunc:     "nfunc",
	Lambda:    "lambda",
	Macro:     "macro",
	StructDef: "structdef",
	Struct:    "struct",
	Dict:      "dict",
	Vec:       "vector",
	Nil:       "nil",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Ref is a handle to an object in the heap. Handles survive both arena
// growth and compaction; the heap re-resolves them on every access.
type Ref uint32

// the singletons occupy the first handles of every heap
const (
	NilRef Ref = iota
	TrueRef
	FalseRef
	numSingletons
)

// NativeFunc is the calling convention of builtins: the argument list is
// passed unevaluated together with the caller's frame.
type NativeFunc func(args Ref, frame *Frame) (Ref, error)

// Native describes a builtin. Two nfunc objects are equal when they share
// the same descriptor.
type Native struct {
	Name string
	Fn   NativeFunc
}

// StructType holds the definition of a record type.
type StructType struct {
	Name   string
	Fields []string
}

// FieldIndex resolves a field name to its slot, or -1.
func (s *StructType) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Object is one slot of the heap arena. Which fields are meaningful
// depends on Tag:
//
//	Bool, Num         Num (booleans store 1 or 0)
//	String, Symbol    Text
//	Cons              Car, Cdr
//	Lambda, Macro     Car (parameters), Cdr (body), Scope (lexical mode only)
//	NFunc             Native
//	StructDef         Type
//	Struct            Car (the StructDef object), Fields
//	Dict, Vec         Dict, Vec
type Object struct {
	Tag    Tag
	mark   uint8
	self   Ref
	Num    int64
	Text   string
	Car    Ref
	Cdr    Ref
	Native *Native
	Type   *StructType
	Fields []Ref
	Scope  *Frame
	Dict   *DictData
	Vec    *VecData
}

// release drops the storage owned by a dead object
func (o *Object) release() {
	o.Text = ""
	o.Native = nil
	o.Type = nil
	o.Fields = nil
	o.Scope = nil
	o.Dict = nil
	o.Vec = nil
}

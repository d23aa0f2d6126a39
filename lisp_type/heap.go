package lisptype

import "fmt"

// DefaultMinObjects is the initial arena capacity in object slots.
const DefaultMinObjects = 1 << 20

const freeSlot = -1

// AllocationError is raised (as a panic) when the arena cannot grow.
// There is no graceful degradation: the interpreter turns it into a
// fatal error at the top-level boundary.
type AllocationError struct {
	Requested int
	Limit     int
}

func (e AllocationError) Error() string {
	return fmt.Sprintf("heap exhausted: %d objects requested, limit is %d", e.Requested, e.Limit)
}

// Heap is a growable arena of objects addressed through a handle table.
// arena[slots[ref]] is the object a handle refers to.
type Heap struct {
	arena []Object
	slots []int32
	free  []Ref

	minObjects int
	maxObjects int

	epoch  uint8
	nalive int

	collections int
	compactions int
}

// NewHeap creates an arena with room for minObjects slots and allocates
// the singletons. maxObjects of 0 means the arena may grow without bound.
func NewHeap(minObjects, maxObjects int) *Heap {
	if minObjects < int(numSingletons) {
		minObjects = DefaultMinObjects
	}
	h := &Heap{
		arena:      make([]Object, 0, minObjects),
		minObjects: minObjects,
		maxObjects: maxObjects,
		epoch:      1,
	}
	h.Alloc(Nil)
	h.Alloc(Bool).Num = 1
	h.Alloc(Bool)
	return h
}

// Alloc appends a fresh object to the arena and returns it. The returned
// pointer is only valid until the next allocation; keep the handle
// (obj.Ref()) instead.
func (h *Heap) Alloc(tag Tag) *Object {
	if len(h.arena) == cap(h.arena) {
		h.grow()
	}
	var ref Ref
	if n := len(h.free); n > 0 {
		ref = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		ref = Ref(len(h.slots))
		h.slots = append(h.slots, freeSlot)
	}
	h.slots[ref] = int32(len(h.arena))
	h.arena = append(h.arena, Object{Tag: tag, self: ref})
	return &h.arena[len(h.arena)-1]
}

// doubles the arena, copying every slot over
func (h *Heap) grow() {
	newCap := cap(h.arena) * 2
	if newCap == 0 {
		newCap = h.minObjects
	}
	if h.maxObjects > 0 && newCap > h.maxObjects {
		newCap = h.maxObjects
	}
	if newCap <= len(h.arena) {
		panic(AllocationError{Requested: len(h.arena) + 1, Limit: h.maxObjects})
	}
	arena := make([]Object, len(h.arena), newCap)
	copy(arena, h.arena)
	h.arena = arena
}

// Get resolves a handle. Like Alloc, the pointer must not be kept across
// allocations or collections.
func (h *Heap) Get(r Ref) *Object {
	if int(r) >= len(h.slots) || h.slots[r] == freeSlot {
		panic(fmt.Sprintf("lisptype: dangling reference %d", r))
	}
	return &h.arena[h.slots[r]]
}

// Ref returns the handle of an object obtained from Alloc or Get.
func (o *Object) Ref() Ref { return o.self }

// Tag returns the tag of the object behind r.
func (h *Heap) Tag(r Ref) Tag { return h.Get(r).Tag }

// Len is the current occupancy of the arena, dead objects included.
func (h *Heap) Len() int { return len(h.arena) }

// Cap is the current arena capacity.
func (h *Heap) Cap() int { return cap(h.arena) }

// Alive is the number of objects marked by the last collection.
func (h *Heap) Alive() int { return h.nalive }

// MinObjects is the configured minimum arena size.
func (h *Heap) MinObjects() int { return h.minObjects }

// Collections and Compactions count the collector's work so far.
func (h *Heap) Collections() int { return h.collections }
func (h *Heap) Compactions() int { return h.compactions }

// constructors

func (h *Heap) NewNum(n int64) Ref {
	o := h.Alloc(Num)
	o.Num = n
	return o.self
}

func (h *Heap) NewString(s string) Ref {
	o := h.Alloc(String)
	o.Text = s
	return o.self
}

func (h *Heap) NewSymbol(name string) Ref {
	o := h.Alloc(Symbol)
	o.Text = name
	return o.self
}

func (h *Heap) NewCons(car, cdr Ref) Ref {
	o := h.Alloc(Cons)
	o.Car = car
	o.Cdr = cdr
	return o.self
}

func (h *Heap) NewNative(name string, fn NativeFunc) Ref {
	o := h.Alloc(NFunc)
	o.Native = &Native{Name: name, Fn: fn}
	return o.self
}

// NewLambda and NewMacro store params and body as given; scope is nil
// unless the interpreter captures the defining frame.
func (h *Heap) NewLambda(params, body Ref, scope *Frame) Ref {
	o := h.Alloc(Lambda)
	o.Car, o.Cdr, o.Scope = params, body, scope
	return o.self
}

func (h *Heap) NewMacro(params, body Ref, scope *Frame) Ref {
	o := h.Alloc(Macro)
	o.Car, o.Cdr, o.Scope = params, body, scope
	return o.self
}

func (h *Heap) NewStructDef(name string, fields []string) Ref {
	o := h.Alloc(StructDef)
	o.Type = &StructType{Name: name, Fields: fields}
	return o.self
}

// NewStruct creates an instance of def with every field set to nil.
func (h *Heap) NewStruct(def Ref) Ref {
	n := len(h.Get(def).Type.Fields)
	fields := make([]Ref, n)
	for i := range fields {
		fields[i] = NilRef
	}
	o := h.Alloc(Struct)
	o.Car = def
	o.Fields = fields
	return o.self
}

func (h *Heap) NewDict() Ref {
	o := h.Alloc(Dict)
	o.Dict = newDictData()
	return o.self
}

func (h *Heap) NewVec() Ref {
	o := h.Alloc(Vec)
	o.Vec = &VecData{}
	return o.self
}

// BoolRef maps a Go bool to a singleton.
func BoolRef(b bool) Ref {
	if b {
		return TrueRef
	}
	return FalseRef
}

// StructType returns the definition behind a Struct or StructDef object.
func (h *Heap) StructType(r Ref) *StructType {
	o := h.Get(r)
	if o.Tag == Struct {
		return h.Get(o.Car).Type
	}
	return o.Type
}

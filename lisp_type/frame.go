package lisptype

import "errors"

var (
	// ErrDuplicateBinding is returned by Define when the name already
	// exists in that exact scope.
	ErrDuplicateBinding = errors.New("duplicate binding")
	// ErrUnbound is returned when no scope in the chain binds a name.
	ErrUnbound = errors.New("unbound symbol")
)

const initialFrameCap = 16

type binding struct {
	name string
	ref  Ref
	used bool
}

// a frame contains bindings that associate
// certain strings (the name of symbol objects)
// with other objects. frames chain through
// outer to support lexical nesting.
type Frame struct {
	outer   *Frame    // the frame above this one
	entries []binding // open addressing table
	len     int
}

// NewFrame creates a scope whose lookups fall back to outer.
func NewFrame(outer *Frame) *Frame {
	return &Frame{
		outer:   outer,
		entries: make([]binding, initialFrameCap),
	}
}

// Outer returns the enclosing scope, nil for the global frame.
func (f *Frame) Outer() *Frame { return f.outer }

// Len is the number of bindings in this scope alone.
func (f *Frame) Len() int { return f.len }

func strHash(s string) uint64 {
	var hash uint64 = 5381
	for i := 0; i < len(s); i++ {
		hash = (hash << 5) + hash + uint64(s[i])
	}
	return hash
}

// doubles the table and reinserts every live binding
func (f *Frame) grow() {
	old := f.entries
	f.entries = make([]binding, len(old)*2)
	f.len = 0
	for _, b := range old {
		if b.used {
			f.insert(b.name, b.ref)
		}
	}
}

func (f *Frame) insert(name string, ref Ref) bool {
	idx := strHash(name) % uint64(len(f.entries))
	for f.entries[idx].used {
		if f.entries[idx].name == name {
			return false
		}
		idx = (idx + 1) % uint64(len(f.entries))
	}
	f.entries[idx] = binding{name: name, ref: ref, used: true}
	f.len++
	return true
}

// finds the slot holding name in this scope only
func (f *Frame) slot(name string) *binding {
	if len(f.entries) == 0 {
		return nil
	}
	idx := strHash(name) % uint64(len(f.entries))
	for f.entries[idx].used {
		if f.entries[idx].name == name {
			return &f.entries[idx]
		}
		idx = (idx + 1) % uint64(len(f.entries))
	}
	return nil
}

// Define binds name in this scope. Shadowing an outer binding is fine,
// redefining one of this scope is not.
func (f *Frame) Define(name string, ref Ref) error {
	if f.entries == nil {
		f.entries = make([]binding, initialFrameCap)
	}
	if f.len >= len(f.entries)*3/4 {
		f.grow()
	}
	if !f.insert(name, ref) {
		return ErrDuplicateBinding
	}
	return nil
}

// Lookup searches this scope then each outer scope in order.
func (f *Frame) Lookup(name string) (Ref, error) {
	for frame := f; frame != nil; frame = frame.outer {
		if b := frame.slot(name); b != nil {
			return b.ref, nil
		}
	}
	return NilRef, ErrUnbound
}

// Update rebinds the nearest existing binding of name. It never creates
// one.
func (f *Frame) Update(name string, ref Ref) error {
	for frame := f; frame != nil; frame = frame.outer {
		if b := frame.slot(name); b != nil {
			b.ref = ref
			return nil
		}
	}
	return ErrUnbound
}

// ForEach visits every binding of every scope in the chain, innermost
// scope first. Order within a scope follows the table layout.
func (f *Frame) ForEach(fn func(name string, ref Ref)) {
	for frame := f; frame != nil; frame = frame.outer {
		for _, b := range frame.entries {
			if b.used {
				fn(b.name, b.ref)
			}
		}
	}
}

// Release drops the table of a call or let scope once it returns.
func (f *Frame) Release() {
	f.entries = nil
	f.len = 0
}

package lisptype

// Stats summarizes one collection.
type Stats struct {
	Before    int // occupancy when the collection started
	Alive     int // objects reached from the roots
	After     int // occupancy when it finished
	Compacted bool
}

// Collect marks everything reachable from root's scope chain and the
// extra roots, and compacts the arena when less than a quarter of it is
// alive. Handles of live objects stay valid; handles of dead objects are
// recycled, so nothing unreachable may be held across a collection.
func Collect(h *Heap, root *Frame, extra ...Ref) Stats {
	// flipping the epoch makes every previous mark stale without a
	// clearing pass. fresh objects carry 0, which is never an epoch.
	if h.epoch == 1 {
		h.epoch = 2
	} else {
		h.epoch = 1
	}
	h.nalive = 0
	stats := Stats{Before: len(h.arena)}

	m := marker{heap: h, seen: make(map[*Frame]bool)}
	for r := Ref(0); r < numSingletons; r++ {
		m.push(r)
	}
	m.pushFrame(root)
	for _, r := range extra {
		m.push(r)
	}
	m.drain()

	stats.Alive = h.nalive
	if h.nalive < len(h.arena)/4 && h.nalive*2 >= h.minObjects {
		h.compact()
		stats.Compacted = true
	} else {
		h.clearDead()
	}
	h.collections++
	stats.After = len(h.arena)
	return stats
}

type marker struct {
	heap *Heap
	work []Ref
	seen map[*Frame]bool
}

func (m *marker) push(r Ref) {
	m.work = append(m.work, r)
}

// queues every binding of a scope chain once
func (m *marker) pushFrame(f *Frame) {
	for frame := f; frame != nil; frame = frame.outer {
		if m.seen[frame] {
			return
		}
		m.seen[frame] = true
		for _, b := range frame.entries {
			if b.used {
				m.push(b.ref)
			}
		}
	}
}

// sets the mark of r, reporting whether it was already set this epoch
func (m *marker) mark(r Ref) bool {
	o := m.heap.Get(r)
	if o.mark == m.heap.epoch {
		return true
	}
	o.mark = m.heap.epoch
	m.heap.nalive++
	return false
}

func (m *marker) drain() {
	h := m.heap
	for len(m.work) > 0 {
		r := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]
		if m.mark(r) {
			continue
		}
		o := h.Get(r)
		switch o.Tag {
		case Cons:
			// the spine is walked in place, only cars go on the work list
			m.push(o.Car)
			for next := o.Cdr; next != NilRef; {
				cell := h.Get(next)
				if cell.Tag != Cons {
					m.push(next)
					break
				}
				if m.mark(next) {
					break
				}
				m.push(cell.Car)
				next = cell.Cdr
			}
		case Lambda, Macro:
			m.push(o.Car)
			m.push(o.Cdr)
			if o.Scope != nil {
				m.pushFrame(o.Scope)
			}
		case Struct:
			m.push(o.Car)
			for _, f := range o.Fields {
				m.push(f)
			}
		case Dict:
			o.Dict.ForEach(func(key, val Ref) bool {
				m.push(key)
				m.push(val)
				return true
			})
		case Vec:
			for _, e := range o.Vec.Elems {
				m.push(e)
			}
		}
	}
}

// copies the alive objects into a new arena of twice their count,
// keeping relative order, and rewires the handle table
func (h *Heap) compact() {
	arena := make([]Object, 0, h.nalive*2)
	for i := range h.arena {
		o := &h.arena[i]
		if o.mark == h.epoch {
			h.slots[o.self] = int32(len(arena))
			arena = append(arena, *o)
			continue
		}
		h.slots[o.self] = freeSlot
		h.free = append(h.free, o.self)
		o.release()
	}
	h.arena = arena
	h.compactions++
}

// dead objects left in place would look marked again two epochs later
func (h *Heap) clearDead() {
	for i := range h.arena {
		if o := &h.arena[i]; o.mark != h.epoch {
			o.mark = 0
		}
	}
}

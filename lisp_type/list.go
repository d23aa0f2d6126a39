package lisptype

// converts a cons list (car holds the element, cdr the tail) into a
// slice of elements. nil is the empty list.
func (h *Heap) ToSlice(list Ref) []Ref {
	result := make([]Ref, 0)
	for list != NilRef {
		o := h.Get(list)
		if o.Tag != Cons {
			break
		}
		result = append(result, o.Car)
		list = o.Cdr
	}
	return result
}

// converts a slice of elements into a fresh cons list
func (h *Heap) FromSlice(values []Ref) Ref {
	list := NilRef
	for i := len(values) - 1; i >= 0; i-- {
		list = h.NewCons(values[i], list)
	}
	return list
}

// ListLen counts the cells of a list.
func (h *Heap) ListLen(list Ref) int {
	n := 0
	for list != NilRef && h.Tag(list) == Cons {
		n++
		list = h.Get(list).Cdr
	}
	return n
}

// Nth returns the idx-th element, false when the list is too short.
func (h *Heap) Nth(list Ref, idx int) (Ref, bool) {
	if idx < 0 {
		return NilRef, false
	}
	for list != NilRef && h.Tag(list) == Cons {
		o := h.Get(list)
		if idx == 0 {
			return o.Car, true
		}
		idx--
		list = o.Cdr
	}
	return NilRef, false
}

// last returns the final cell of a non-empty list
func (h *Heap) last(list Ref) Ref {
	for {
		next := h.Get(list).Cdr
		if next == NilRef || h.Tag(next) != Cons {
			return list
		}
		list = next
	}
}

// ListAppend links cell at the end of list and returns the head.
func (h *Heap) ListAppend(list, cell Ref) Ref {
	if list == NilRef {
		return cell
	}
	h.Get(h.last(list)).Cdr = cell
	return list
}

// ListInsAt links cell before position idx and returns the head. An
// index past the end appends.
func (h *Heap) ListInsAt(list, cell Ref, idx int) Ref {
	if idx <= 0 || list == NilRef {
		h.Get(cell).Cdr = list
		return cell
	}
	prev := list
	for i := 1; i < idx; i++ {
		next := h.Get(prev).Cdr
		if next == NilRef {
			break
		}
		prev = next
	}
	h.Get(cell).Cdr = h.Get(prev).Cdr
	h.Get(prev).Cdr = cell
	return list
}

// ListRem unlinks the first cell whose element equals r and returns the
// (possibly new) head.
func (h *Heap) ListRem(list, r Ref) Ref {
	prev := NilRef
	for cur := list; cur != NilRef; cur = h.Get(cur).Cdr {
		if h.Equal(h.Get(cur).Car, r) {
			next := h.Get(cur).Cdr
			if prev == NilRef {
				return next
			}
			h.Get(prev).Cdr = next
			return list
		}
		prev = cur
	}
	return list
}

// ListRemAt unlinks the cell at idx and returns the (possibly new) head.
func (h *Heap) ListRemAt(list Ref, idx int) Ref {
	if list == NilRef || idx < 0 {
		return list
	}
	if idx == 0 {
		return h.Get(list).Cdr
	}
	prev := list
	for i := 1; i < idx; i++ {
		prev = h.Get(prev).Cdr
		if prev == NilRef {
			return list
		}
	}
	if cur := h.Get(prev).Cdr; cur != NilRef {
		h.Get(prev).Cdr = h.Get(cur).Cdr
	}
	return list
}

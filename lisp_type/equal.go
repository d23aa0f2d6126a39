package lisptype

// Equal is the language's eq: numbers, strings and symbols compare by
// value, builtins by descriptor, everything else by identity.
func (h *Heap) Equal(a, b Ref) bool {
	if a == b {
		return true
	}
	oa, ob := h.Get(a), h.Get(b)
	if oa.Tag != ob.Tag {
		return false
	}
	switch oa.Tag {
	case Num:
		return oa.Num == ob.Num
	case String, Symbol:
		return oa.Text == ob.Text
	case NFunc:
		return oa.Native == ob.Native
	}
	return false
}

// Hash is consistent with Equal.
func (h *Heap) Hash(r Ref) uint64 {
	o := h.Get(r)
	switch o.Tag {
	case Num:
		return uint64(o.Num)
	case String, Symbol:
		return strHash(o.Text)
	case NFunc:
		return strHash(o.Native.Name)
	}
	return uint64(r)
}

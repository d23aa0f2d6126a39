package lisptype

// DictData backs a dict object. Keys are compared with Equal; entries
// keep insertion order so traversal is stable.
type DictData struct {
	index   map[dictKey]int
	entries []dictEntry
}

type dictEntry struct {
	k        dictKey
	key, val Ref
	valid    bool
}

// dictKey normalizes a key to something Go can hash consistently with
// Equal: value for num/string/symbol, descriptor for nfunc, handle
// otherwise.
type dictKey struct {
	tag    Tag
	num    int64
	text   string
	native *Native
	ref    Ref
}

func newDictData() *DictData {
	return &DictData{index: make(map[dictKey]int)}
}

func keyOf(h *Heap, r Ref) dictKey {
	o := h.Get(r)
	switch o.Tag {
	case Num:
		return dictKey{tag: Num, num: o.Num}
	case String, Symbol:
		return dictKey{tag: o.Tag, text: o.Text}
	case NFunc:
		return dictKey{tag: NFunc, native: o.Native}
	}
	return dictKey{tag: o.Tag, ref: r}
}

// DictIns inserts or replaces key, returning the previous value if any.
func (h *Heap) DictIns(dict, key, val Ref) (Ref, bool) {
	d := h.Get(dict).Dict
	k := keyOf(h, key)
	if i, ok := d.index[k]; ok {
		old := d.entries[i].val
		d.entries[i].val = val
		return old, true
	}
	d.index[k] = len(d.entries)
	d.entries = append(d.entries, dictEntry{k: k, key: key, val: val, valid: true})
	return NilRef, false
}

// DictGet looks key up.
func (h *Heap) DictGet(dict, key Ref) (Ref, bool) {
	d := h.Get(dict).Dict
	i, ok := d.index[keyOf(h, key)]
	if !ok {
		return NilRef, false
	}
	return d.entries[i].val, true
}

// DictRem removes key, returning its value if it was present.
func (h *Heap) DictRem(dict, key Ref) (Ref, bool) {
	d := h.Get(dict).Dict
	k := keyOf(h, key)
	i, ok := d.index[k]
	if !ok {
		return NilRef, false
	}
	val := d.entries[i].val
	d.entries[i] = dictEntry{}
	delete(d.index, k)
	if len(d.index) < len(d.entries)/4 {
		d.repack()
	}
	return val, true
}

// drops invalidated entries once they dominate the slice
func (d *DictData) repack() {
	entries := make([]dictEntry, 0, len(d.index))
	for _, e := range d.entries {
		if e.valid {
			entries = append(entries, e)
		}
	}
	d.entries = entries
	for i, e := range entries {
		d.index[e.k] = i
	}
}

// Len is the number of live entries.
func (d *DictData) Len() int { return len(d.index) }

// ForEach visits entries in insertion order; returning false stops.
func (d *DictData) ForEach(fn func(key, val Ref) bool) {
	for _, e := range d.entries {
		if e.valid && !fn(e.key, e.val) {
			return
		}
	}
}

// VecData backs a vector object.
type VecData struct {
	Elems []Ref
}

// InsAt inserts at idx, shifting the tail. Out of range fails.
func (v *VecData) InsAt(r Ref, idx int) bool {
	if idx < 0 || idx > len(v.Elems) {
		return false
	}
	v.Elems = append(v.Elems, NilRef)
	copy(v.Elems[idx+1:], v.Elems[idx:])
	v.Elems[idx] = r
	return true
}

// RemAt removes and returns the element at idx.
func (v *VecData) RemAt(idx int) (Ref, bool) {
	if idx < 0 || idx >= len(v.Elems) {
		return NilRef, false
	}
	r := v.Elems[idx]
	v.Elems = append(v.Elems[:idx], v.Elems[idx+1:]...)
	return r, true
}

// VecRem removes the first element equal to r.
func (h *Heap) VecRem(vec, r Ref) bool {
	v := h.Get(vec).Vec
	for i, e := range v.Elems {
		if h.Equal(e, r) {
			v.RemAt(i)
			return true
		}
	}
	return false
}

package lisptype

import "testing"

// allocates n unreachable numbers
func fill(h *Heap, n int) []Ref {
	refs := make([]Ref, n)
	for i := range refs {
		refs[i] = h.NewNum(int64(-i))
	}
	return refs
}

func numList(h *Heap, n int) Ref {
	vals := make([]Ref, n)
	for i := range vals {
		vals[i] = h.NewNum(int64(i))
	}
	return h.FromSlice(vals)
}

func assertNumList(t *testing.T, h *Heap, list Ref, n int) {
	t.Helper()
	elems := h.ToSlice(list)
	if len(elems) != n {
		t.Fatalf("list has %d elements, want %d", len(elems), n)
	}
	for i, e := range elems {
		if got := h.Get(e).Num; got != int64(i) {
			t.Fatalf("element %d = %d", i, got)
		}
	}
}

func TestCollectCompacts(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	garbage := fill(h, 200)
	list := numList(h, 10)
	global.Define("xs", list)

	stats := Collect(h, global)
	// 10 cells, 10 numbers, 3 singletons
	if stats.Alive != 23 {
		t.Fatalf("Alive = %d, want 23", stats.Alive)
	}
	if !stats.Compacted {
		t.Fatalf("expected a compaction, stats = %+v", stats)
	}
	if h.Len() != 23 || h.Cap() != 46 {
		t.Errorf("after compaction Len() = %d Cap() = %d, want 23 and 46", h.Len(), h.Cap())
	}
	if stats.Before != 223 || stats.After != 23 {
		t.Errorf("stats = %+v", stats)
	}
	xs, err := global.Lookup("xs")
	if err != nil {
		t.Fatal(err)
	}
	assertNumList(t, h, xs, 10)

	defer func() {
		if recover() == nil {
			t.Errorf("a collected handle still resolves")
		}
	}()
	h.Get(garbage[0])
}

func TestCollectRecyclesHandles(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	garbage := fill(h, 100)
	global.Define("xs", numList(h, 5))
	if stats := Collect(h, global); !stats.Compacted {
		t.Fatalf("expected a compaction, stats = %+v", stats)
	}

	freed := make(map[Ref]bool, len(garbage))
	for _, r := range garbage {
		freed[r] = true
	}
	if r := h.NewNum(7); !freed[r] {
		t.Errorf("new object got handle %d, want a recycled one", r)
	}
	if h.Len() != 14 {
		t.Errorf("Len() = %d, want 14", h.Len())
	}
}

func TestCollectKeepsSmallHeap(t *testing.T) {
	h := NewHeap(1024, 0)
	global := NewFrame(nil)
	fill(h, 500)
	global.Define("xs", numList(h, 5))

	stats := Collect(h, global)
	if stats.Compacted {
		t.Fatalf("compacted below the minimum size: %+v", stats)
	}
	if h.Len() != stats.Before {
		t.Errorf("Len() = %d, want %d", h.Len(), stats.Before)
	}
	if h.Collections() != 1 || h.Compactions() != 0 {
		t.Errorf("collections = %d compactions = %d", h.Collections(), h.Compactions())
	}
}

func TestCollectIdempotent(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	global.Define("xs", numList(h, 50))
	fill(h, 30)

	first := Collect(h, global)
	second := Collect(h, global)
	if first.Alive != second.Alive {
		t.Errorf("alive changed between collections: %d then %d", first.Alive, second.Alive)
	}
	if h.Alive() != second.Alive {
		t.Errorf("Alive() = %d, want %d", h.Alive(), second.Alive)
	}
}

func TestCollectFreshObjectsAreUnmarked(t *testing.T) {
	h := NewHeap(1024, 0)
	global := NewFrame(nil)
	Collect(h, global)
	r := h.NewNum(1)
	if h.Get(r).mark == h.epoch {
		t.Errorf("a fresh object carries the current epoch")
	}
	Collect(h, global)
	if h.Get(r).mark == h.epoch {
		t.Errorf("an unreachable object was marked")
	}
}

func TestCollectDropsStaleMarks(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	global.Define("keep", numList(h, 3))
	global.Define("xs", numList(h, 10))
	Collect(h, global)

	// alive in the first cycle, dead from the second on
	global.Update("xs", NilRef)
	if stats := Collect(h, global); stats.Compacted {
		t.Fatalf("unexpected compaction: %+v", stats)
	}
	fill(h, 200)
	stats := Collect(h, global)
	if !stats.Compacted || stats.After != 9 {
		t.Errorf("objects dead since an earlier cycle survived: %+v", stats)
	}
}

func TestCollectTraversesReferents(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)

	body := numList(h, 3)
	lambda := h.NewLambda(h.FromSlice([]Ref{h.NewSymbol("a")}), body, nil)

	def := h.NewStructDef("Pair", []string{"left", "right"})
	pair := h.NewStruct(def)
	left := h.NewString("left")
	h.Get(pair).Fields[0] = left

	dict := h.NewDict()
	key, val := h.NewString("k"), h.NewNum(42)
	h.DictIns(dict, key, val)

	vec := h.NewVec()
	elem := h.NewSymbol("elem")
	h.Get(vec).Vec.Elems = append(h.Get(vec).Vec.Elems, elem)

	captured := NewFrame(nil)
	hidden := h.NewString("hidden")
	captured.Define("hidden", hidden)
	closure := h.NewLambda(NilRef, h.FromSlice([]Ref{h.NewSymbol("hidden")}), captured)

	global.Define("f", lambda)
	// the struct definition is reachable only through the instance
	global.Define("p", pair)
	global.Define("d", dict)
	global.Define("v", vec)
	global.Define("c", closure)
	fill(h, 400)

	if stats := Collect(h, global); !stats.Compacted {
		t.Fatalf("expected a compaction, stats = %+v", stats)
	}
	assertNumList(t, h, h.Get(lambda).Cdr, 3)
	if got := h.StructType(pair).Name; got != "Pair" {
		t.Errorf("struct definition lost: %q", got)
	}
	if got := h.Get(h.Get(pair).Fields[0]).Text; got != "left" {
		t.Errorf("struct field = %q", got)
	}
	if v, ok := h.DictGet(dict, key); !ok || h.Get(v).Num != 42 {
		t.Errorf("dict entry lost")
	}
	if got := h.Get(h.Get(vec).Vec.Elems[0]).Text; got != "elem" {
		t.Errorf("vector element = %q", got)
	}
	if got := h.Get(hidden).Text; got != "hidden" {
		t.Errorf("captured binding = %q", got)
	}
}

func TestCollectExtraRoots(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	pending := numList(h, 4)
	fill(h, 200)

	Collect(h, global, pending)
	assertNumList(t, h, pending, 4)
}

func TestCollectLongList(t *testing.T) {
	h := NewHeap(16, 0)
	global := NewFrame(nil)
	const n = 200000
	global.Define("xs", numList(h, n))

	stats := Collect(h, global)
	if stats.Alive != 2*n+3 {
		t.Errorf("Alive = %d, want %d", stats.Alive, 2*n+3)
	}
}

func TestCollectImproperTail(t *testing.T) {
	h := NewHeap(8, 0)
	global := NewFrame(nil)
	tail := h.NewString("tail")
	cell := h.NewCons(h.NewNum(1), tail)
	global.Define("pair", cell)
	fill(h, 100)

	Collect(h, global)
	if got := h.Get(h.Get(cell).Cdr).Text; got != "tail" {
		t.Errorf("improper tail = %q", got)
	}
}

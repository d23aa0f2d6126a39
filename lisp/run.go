package lisp

import (
	"fmt"
	"os"

	lisptype "tlisp/lisp_type"
)

// turns a heap exhaustion panic into a fatal error
func recoverAllocation(err *error) {
	p := recover()
	if p == nil {
		return
	}
	ae, ok := p.(lisptype.AllocationError)
	if !ok {
		panic(p)
	}
	*err = &Error{Kind: AllocationFailure, Msg: "Unable to allocate object. " + ae.Error() + "."}
}

// ReadString reads text into the interpreter's heap.
func (i *Interpreter) ReadString(text string) (src *Source, err error) {
	defer recoverAllocation(&err)
	return Read(i.Heap, text)
}

// evaluates one top-level form in the global frame
func (i *Interpreter) evalTop(r lisptype.Ref) (res lisptype.Ref, err error) {
	defer recoverAllocation(&err)
	return i.Eval(r, i.Global)
}

// Run evaluates every form of src in order in the global frame and
// returns the value of the last one. The first error stops the program
// and comes back as a *SourceError naming the failing form.
//
// Collections only happen between forms: when occupancy has reached the
// configured threshold, or when the program called (gc). The forms not
// evaluated yet are kept alive as extra roots.
func (i *Interpreter) Run(src *Source) (lisptype.Ref, error) {
	res := lisptype.NilRef
	for n, form := range src.Forms {
		i.safePoint(src.Roots(n))
		var err error
		if res, err = i.evalTop(form.Ref); err != nil {
			i.logger.Debug("form failed", "line", form.StartLine, "err", err)
			return lisptype.NilRef, &SourceError{
				Err:       err,
				StartLine: form.StartLine,
				EndLine:   form.EndLine,
				Text:      src.Lines(form),
			}
		}
	}
	return res, nil
}

// EvalString reads and runs text.
func (i *Interpreter) EvalString(text string) (lisptype.Ref, error) {
	src, err := i.ReadString(text)
	if err != nil {
		return lisptype.NilRef, err
	}
	return i.Run(src)
}

// LoadFile runs the program in path.
func (i *Interpreter) LoadFile(path string) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return &Error{Kind: IOFailure, Msg: fmt.Sprintf("Unable to open %s.", path)}
	}
	i.logger.Debug("loading file", "path", path, "bytes", len(bytes))
	_, err = i.EvalString(string(bytes))
	return err
}

// safePoint collects when a collection is due
func (i *Interpreter) safePoint(roots []lisptype.Ref) {
	due := i.cfg.GC.Threshold > 0 && i.Heap.Len() >= i.nextGC
	if !due && !i.gcRequested {
		return
	}
	i.Collect(roots...)
}

// Collect runs the collector with the global frame and roots as the root
// set. It must only be called between top-level forms.
func (i *Interpreter) Collect(roots ...lisptype.Ref) lisptype.Stats {
	stats := lisptype.Collect(i.Heap, i.Global, roots...)
	i.gcRequested = false
	i.nextGC = i.Heap.Len() + i.cfg.GC.Threshold
	i.logger.Debug("gc cycle",
		"before", stats.Before,
		"alive", stats.Alive,
		"after", stats.After,
		"compacted", stats.Compacted,
		"collections", i.Heap.Collections(),
	)
	return stats
}

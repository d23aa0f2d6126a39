package lisp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	lisptype "tlisp/lisp_type"
)

// maxFiles bounds the file table.
const maxFiles = 64

type openFile struct {
	f *os.File
	r *bufio.Reader
}

var fileModes = map[string]int{
	"r":  os.O_RDONLY,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"r+": os.O_RDWR,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
}

// resolves a handle object, nil when it names no open file
func (i *Interpreter) file(r lisptype.Ref) *openFile {
	o := i.Heap.Get(r)
	if o.Tag != lisptype.Num || o.Num < 0 || o.Num >= int64(len(i.files)) {
		return nil
	}
	return i.files[o.Num]
}

// (open name mode) returns a handle, nil when the file cannot be opened
func (i *Interpreter) open(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("open", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	name, err := i.evalTyped(args, 0, lisptype.String, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	mode, err := i.evalTyped(args, 1, lisptype.String, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	flag, ok := fileModes[strings.TrimSuffix(i.Heap.Get(mode).Text, "b")]
	if !ok {
		return lisptype.NilRef, nil
	}
	slot := -1
	for n, f := range i.files {
		if f == nil {
			slot = n
			break
		}
	}
	if slot < 0 {
		if len(i.files) == maxFiles {
			return lisptype.NilRef, nil
		}
		slot = len(i.files)
		i.files = append(i.files, nil)
	}
	path := i.Heap.Get(name).Text
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		i.logger.Debug("open failed", "path", path, "err", err)
		return lisptype.NilRef, nil
	}
	i.files[slot] = &openFile{f: f, r: bufio.NewReader(f)}
	return i.Heap.NewNum(int64(slot)), nil
}

// returns the next line with its newline, false at end of file
func (i *Interpreter) readline(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("readline", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	h, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	f := i.file(h)
	if f == nil {
		return lisptype.FalseRef, nil
	}
	line, err := f.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return lisptype.FalseRef, nil
	}
	return i.Heap.NewString(line), nil
}

func (i *Interpreter) write(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("write", 2, args); err != nil {
		return lisptype.NilRef, err
	}
	h, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	msg, err := i.evalTyped(args, 1, lisptype.String, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	f := i.file(h)
	if f == nil {
		return lisptype.NilRef, nil
	}
	_, err = io.WriteString(f.f, i.Heap.Get(msg).Text)
	return lisptype.BoolRef(err == nil), nil
}

func (i *Interpreter) close(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	if err := i.assertNargs("close", 1, args); err != nil {
		return lisptype.NilRef, err
	}
	h, err := i.evalArg(args, 0, frame)
	if err != nil {
		return lisptype.NilRef, err
	}
	f := i.file(h)
	if f == nil {
		return lisptype.FalseRef, nil
	}
	i.files[i.Heap.Get(h).Num] = nil
	return lisptype.BoolRef(f.f.Close() == nil), nil
}

// CloseFiles closes every handle the program left open.
func (i *Interpreter) CloseFiles() {
	for n, f := range i.files {
		if f != nil {
			f.f.Close()
			i.files[n] = nil
		}
	}
}

func (i *Interpreter) print(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	for _, form := range i.Heap.ToSlice(args) {
		v, err := i.Eval(form, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		if _, err := fmt.Fprintln(i.out, Sprint(i.Heap, v, i.cfg.PrintLimit)); err != nil {
			return lisptype.NilRef, newError(IOFailure, "Unable to print: %v.", err)
		}
	}
	return lisptype.NilRef, nil
}

// concatenates the printed form of every argument, bounded by the
// print limit
func (i *Interpreter) str(args lisptype.Ref, frame *lisptype.Frame) (lisptype.Ref, error) {
	var b strings.Builder
	limit := i.cfg.PrintLimit - 1
	for _, form := range i.Heap.ToSlice(args) {
		v, err := i.Eval(form, frame)
		if err != nil {
			return lisptype.NilRef, err
		}
		if room := limit - b.Len(); room > 0 {
			b.WriteString(Sprint(i.Heap, v, room))
		}
	}
	return i.Heap.NewString(b.String()), nil
}

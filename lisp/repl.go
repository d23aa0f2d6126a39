package lisp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/xyproto/vt"
)

const (
	promptMain = "tlisp> "
	promptCont = "  ...> "
	banner     = "tlisp interactive session, ctrl-d to exit"
)

// lineReader is the part of liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

type session struct {
	in      lineReader
	out     io.Writer
	errOut  io.Writer
	history func(string)
	colors  bool
}

// Repl runs an interactive session on the terminal. Errors are reported
// and the session goes on, except when the heap is exhausted.
func (i *Interpreter) Repl(historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintln(i.out, vt.LightBlue.Get(banner))
	s := &session{
		in:      ln,
		out:     i.out,
		errOut:  os.Stderr,
		history: ln.AppendHistory,
		colors:  true,
	}
	return i.serve(s)
}

func (s *session) fail(err error) {
	msg := err.Error()
	var se *SourceError
	if errors.As(err, &se) {
		msg = se.Err.Error()
	}
	if s.colors {
		msg = vt.LightRed.Get(msg)
	}
	fmt.Fprintln(s.errOut, msg)
}

// serve is the read eval print loop
func (i *Interpreter) serve(s *session) error {
	for {
		src, ok, err := i.readForms(s.in)
		if !ok {
			fmt.Fprintln(s.out)
			return err
		}
		if err != nil {
			s.fail(err)
			if IsFatal(err) {
				return err
			}
			continue
		}
		if src == nil || len(src.Forms) == 0 {
			continue
		}
		if s.history != nil {
			s.history(strings.ReplaceAll(src.Text, "\n", " "))
		}
		i.logger.Debug("repl input", "forms", len(src.Forms), "heap", i.Heap.Len())
		res, err := i.Run(src)
		if err != nil {
			s.fail(err)
			if IsFatal(err) {
				return err
			}
			continue
		}
		fmt.Fprintln(s.out, Sprint(i.Heap, res, i.cfg.PrintLimit))
	}
}

// reads lines until they hold complete forms. ok is false at end of
// input. an interrupted prompt gives back an empty source.
func (i *Interpreter) readForms(in lineReader) (*Source, bool, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return nil, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src, err := i.ReadString(b.String())
		if errors.Is(err, ErrIncomplete) {
			continue
		}
		return src, true, err
	}
}

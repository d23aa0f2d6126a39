package lisp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	TooFewArguments
	TooManyArguments
	UndefinedSymbol
	DuplicateBinding
	NotCallable
	NoSuchField
	NoMatchingLetBinding
	AllocationFailure
	DivisionByZero
	InvalidForm
	IOFailure
)

var kindNames = [...]string{
	TypeMismatch:         "type mismatch",
	TooFewArguments:      "too few arguments",
	TooManyArguments:     "too many arguments",
	UndefinedSymbol:      "undefined symbol",
	DuplicateBinding:     "duplicate binding",
	NotCallable:          "not callable",
	NoSuchField:          "no such field",
	NoMatchingLetBinding: "no matching let binding",
	AllocationFailure:    "allocation failure",
	DivisionByZero:       "division by zero",
	InvalidForm:          "invalid form",
	IOFailure:            "io failure",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is an evaluation failure. Msg names the failing construct.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return "ERROR: " + e.Msg
}

// Is matches sentinels by kind, so errors.Is(err, ErrUndefinedSymbol)
// holds for any undefined symbol error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrTypeMismatch         = &Error{Kind: TypeMismatch}
	ErrTooFewArguments      = &Error{Kind: TooFewArguments}
	ErrTooManyArguments     = &Error{Kind: TooManyArguments}
	ErrUndefinedSymbol      = &Error{Kind: UndefinedSymbol}
	ErrDuplicateBinding     = &Error{Kind: DuplicateBinding}
	ErrNotCallable          = &Error{Kind: NotCallable}
	ErrNoSuchField          = &Error{Kind: NoSuchField}
	ErrNoMatchingLetBinding = &Error{Kind: NoMatchingLetBinding}
	ErrAllocationFailure    = &Error{Kind: AllocationFailure}
	ErrDivisionByZero       = &Error{Kind: DivisionByZero}
	ErrInvalidForm          = &Error{Kind: InvalidForm}
	ErrIOFailure            = &Error{Kind: IOFailure}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of an evaluation error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsArity reports whether err is either arity failure.
func IsArity(err error) bool {
	return errors.Is(err, ErrTooFewArguments) || errors.Is(err, ErrTooManyArguments)
}

// IsFatal reports whether err must end even an interactive session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAllocationFailure)
}

// SourceError ties an evaluation error to the top-level form that raised
// it, rendering as "Line N" followed by the form's text.
type SourceError struct {
	Err       error
	StartLine int
	EndLine   int
	Text      string // the lines of the failing form
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	b.WriteString("\n")
	if e.StartLine == e.EndLine {
		fmt.Fprintf(&b, "Line %d\n", e.StartLine)
	} else {
		fmt.Fprintf(&b, "Lines %d-%d\n", e.StartLine, e.EndLine)
	}
	b.WriteString(e.Text)
	return strings.TrimRight(b.String(), "\n")
}

func (e *SourceError) Unwrap() error { return e.Err }

// ReadError is a reader failure at a 1-based position.
type ReadError struct {
	Line, Col  int
	Msg        string
	Incomplete bool // input ended in the middle of a form
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("ERROR: %s at %d:%d", e.Msg, e.Line, e.Col)
}

func (e *ReadError) Unwrap() error {
	if e.Incomplete {
		return ErrIncomplete
	}
	return nil
}

// ErrIncomplete is wrapped by reader errors caused by input ending in
// the middle of a form.
var ErrIncomplete = errors.New("incomplete input")

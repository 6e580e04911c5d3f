package ti

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the errors of the interpreter.
type ErrorKind int

const (
	LexError ErrorKind = iota
	SyntaxError
	UnboundSymbolError
	ArityError
	NotAProcedureError
	TypeError
	EmptyListError
	IOError
	AnalysisError
	DivideByZeroError
)

var kindNames = [...]string{
	LexError:           "LexError",
	SyntaxError:        "SyntaxError",
	UnboundSymbolError: "UnboundSymbolError",
	ArityError:         "ArityError",
	NotAProcedureError: "NotAProcedureError",
	TypeError:          "TypeError",
	EmptyListError:     "EmptyListError",
	IOError:            "IOError",
	AnalysisError:      "AnalysisError",
	DivideByZeroError:  "DivideByZeroError",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// EvalError represents an error in reading or evaluation.
// Line is 0 when the source line is unknown.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Line    int

	incomplete bool  // the input ended inside an open list
	cause      error // the underlying I/O error, if any
}

// NewEvalError constructs a new EvalError.
func NewEvalError(kind ErrorKind, format string, args ...Any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// err.Error() returns a textual representation of err.
func (err *EvalError) Error() string {
	s := err.Kind.String() + ": " + err.Message
	if err.Line > 0 {
		s += fmt.Sprintf(" (line %d)", err.Line)
	}
	return s
}

// Unwrap returns the underlying I/O error, if any.
func (err *EvalError) Unwrap() error {
	return err.cause
}

func (err *EvalError) at(line int) *EvalError {
	if err.Line == 0 {
		err.Line = line
	}
	return err
}

// IsKind returns true if err is an *EvalError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *EvalError
	return errors.As(err, &e) && e.Kind == kind
}

// IsIncomplete returns true if err says the input ended before
// every list was closed, i.e. more input may complete it.
func IsIncomplete(err error) bool {
	var e *EvalError
	return errors.As(err, &e) && e.incomplete
}

func typeError(name string, want string, x Any) *EvalError {
	return NewEvalError(TypeError, "%s: %s expected: %s", name, want, Str(x))
}

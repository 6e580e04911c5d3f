package ti

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nukata/goarith"
)

// Formatter renders x.  quoteString says whether strings are to be
// quoted; p is the printer to use for elements of x.
type Formatter = func(p *Printer, x Any, quoteString bool) string

type formatEntry struct {
	pred   func(Any) bool
	format Formatter
}

// Printer converts values to text by an ordered table of
// (predicate, formatter) pairs; the first pair whose predicate
// holds is used.
type Printer struct {
	entries []formatEntry
}

// NewPrinter constructs a printer which knows the built-in values.
func NewPrinter() *Printer {
	p := &Printer{}
	p.add(func(x Any) bool { return x == Void }, formatConst("#<void>"))
	p.add(isBool, formatBool)
	p.add(isNumber, formatNumber)
	p.add(isString, formatString)
	p.add(isList, formatList)
	p.add(func(Any) bool { return true }, formatDefault)
	return p
}

func (p *Printer) add(pred func(Any) bool, f Formatter) {
	p.entries = append(p.entries, formatEntry{pred, f})
}

// Register adds a formatter which takes precedence over
// the formatters registered before it.
func (p *Printer) Register(pred func(Any) bool, f Formatter) {
	p.entries = append([]formatEntry{{pred, f}}, p.entries...)
}

// Format returns a textual representation of x.
func (p *Printer) Format(x Any, quoteString bool) string {
	for _, e := range p.entries {
		if e.pred(x) {
			return e.format(p, x, quoteString)
		}
	}
	return fmt.Sprintf("%v", x)
}

// DefaultPrinter is the printer used by ToString, Str and Str2.
var DefaultPrinter = NewPrinter()

// ToString returns the text shown for x as a result:
// strings are not quoted at the top level.
func ToString(x Any) string {
	return DefaultPrinter.Format(x, false)
}

// Str(x) returns a textual representation of x with quoted strings.
func Str(x Any) string {
	return Str2(x, true)
}

// Str2(x, quoteString) returns a textual representation of x.
// If quoteString is true, a string will be represented with quotes.
func Str2(x Any, quoteString bool) string {
	return DefaultPrinter.Format(x, quoteString)
}

func isBool(x Any) bool {
	_, ok := x.(bool)
	return ok
}

func isNumber(x Any) bool {
	_, ok := x.(goarith.Number)
	return ok
}

func isString(x Any) bool {
	_, ok := x.(string)
	return ok
}

func isList(x Any) bool {
	_, ok := x.(*Cell)
	return ok
}

func formatConst(s string) Formatter {
	return func(*Printer, Any, bool) string {
		return s
	}
}

func formatBool(_ *Printer, x Any, _ bool) string {
	if x.(bool) {
		return "true"
	}
	return "false"
}

func formatNumber(_ *Printer, x Any, _ bool) string {
	return x.(goarith.Number).String()
}

func formatString(_ *Printer, x Any, quoteString bool) string {
	if quoteString {
		return strconv.Quote(x.(string))
	}
	return x.(string)
}

// Elements of a list are always shown with quoted strings.
func formatList(p *Printer, x Any, _ bool) string {
	j := x.(*Cell)
	s := make([]string, 0, 10)
	for ; j != Nil; j = j.Tail() {
		s = append(s, p.Format(j.Car, true))
	}
	return "(" + strings.Join(s, " ") + ")"
}

func formatDefault(_ *Printer, x Any, _ bool) string {
	return fmt.Sprintf("%v", x)
}

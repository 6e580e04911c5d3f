/*
  Ti in Go: a small analyzing Scheme-family interpreter.

  The Cell and Sym types follow Nukata Scheme in Go
  (https://github.com/nukata/scheme-in-go).
*/
package ti

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

const Version = 0.10

type Any = interface{}

// VoidType is the type of Void.
type VoidType struct{}

// Void is the value of side-effecting forms.
// (define v e) and (display x) return Void.
var Void = &VoidType{}

// v.String() returns "#<void>".
func (v *VoidType) String() string {
	return "#<void>"
}

//----------------------------------------------------------------------

// Cell represents a cell of a proper list.
// &Cell{car, cdr} works as the "cons" operation; cdr is always a *Cell.
type Cell struct {
	Car Any
	Cdr Any
}

// Nil represents the empty list ().
var Nil *Cell = nil

// j.String() returns a textual representation of the list j.
func (j *Cell) String() string {
	return Str(j)
}

// j.Tail() returns (cdr j) as *Cell.
func (j *Cell) Tail() *Cell {
	return j.Cdr.(*Cell)
}

func __(j ...Any) *Cell {
	var result Any = Nil
	p := &result
	for _, v := range j {
		x := &Cell{v, Nil}
		*p = x
		p = &x.Cdr
	}
	return result.(*Cell)
}

// List(e1, ..., eN Any) builds a list (e1 ... eN) as *Cell.
var List = __

// j.Len() returns the number of elements of j.
func (j *Cell) Len() int {
	n := 0
	for ; j != Nil; j = j.Tail() {
		n++
	}
	return n
}

// j.Slice() returns the elements of j as a slice.
func (j *Cell) Slice() []Any {
	s := make([]Any, 0, j.Len())
	for ; j != Nil; j = j.Tail() {
		s = append(s, j.Car)
	}
	return s
}

// (a b c d).Reverse() returns (d c b a).
func (j *Cell) Reverse() *Cell {
	result := Nil
	for j != Nil {
		result = &Cell{j.Car, result}
		j = j.Tail()
	}
	return result
}

// asList returns x as a proper list if it is one.
func asList(x Any) (*Cell, bool) {
	j, ok := x.(*Cell)
	return j, ok
}

//----------------------------------------------------------------------

// Sym represents a symbol or a keyword.
// Symbols are interned, so two symbols with the same name are the same
// pointer and may be compared with ==.
type Sym struct {
	Name      string
	IsKeyword bool
}

// symbols is the table of interned symbols.
var symbols = make(map[string]*Sym)

// symLock is the exclusive lock for the table.
var symLock sync.RWMutex

// NewSym constructs an interned symbol for name.
func NewSym(name string) *Sym {
	return NewSym2(name, false)
}

// NewSym2 constructs an interned symbol (or a keyword
// if isKeyword is true on its first construction) for name.
func NewSym2(name string, isKeyword bool) *Sym {
	symLock.RLock()
	sym, ok := symbols[name]
	symLock.RUnlock()
	if ok {
		return sym
	}
	symLock.Lock()
	sym, ok = symbols[name]
	if !ok {
		sym = &Sym{name, isKeyword}
		symbols[name] = sym
	}
	symLock.Unlock()
	return sym
}

// sym.String() returns the name of sym.
func (sym *Sym) String() string {
	return sym.Name
}

// Keywords returns the expression keywords sorted by name.
func Keywords() []*Sym {
	result := make([]*Sym, 0, 16)
	symLock.RLock()
	for _, sym := range symbols {
		if sym.IsKeyword {
			result = append(result, sym)
		}
	}
	symLock.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Expression keywords

var And_ = NewSym2("and", true)
var Begin_ = NewSym2("begin", true)
var Cond_ = NewSym2("cond", true)
var Define_ = NewSym2("define", true)
var Else_ = NewSym2("else", true)
var If_ = NewSym2("if", true)
var Lambda_ = NewSym2("lambda", true)
var Let_ = NewSym2("let", true)
var Load_ = NewSym2("load", true)
var Or_ = NewSym2("or", true)
var Quote_ = NewSym2("quote", true)

//----------------------------------------------------------------------

// Exec is an analyzed expression: running it in an environment
// performs the expression's action and yields its value.
type Exec = func(env *Env) (Any, error)

// Compound represents a procedure made by lambda or define.
type Compound struct {
	Name   string // empty for an anonymous lambda
	Params []*Sym
	Body   Exec
	Env    *Env
}

// fn.String() returns "#<procedure name>" or "#<procedure>".
func (fn *Compound) String() string {
	if fn.Name == "" {
		return "#<procedure>"
	}
	return "#<procedure " + fn.Name + ">"
}

// Subr represents the Go function of a primitive procedure.
// It receives the evaluated arguments positionally.
type Subr = func(args []Any) (Any, error)

// Primitive represents a procedure implemented in Go.
type Primitive struct {
	Name  string
	Arity Arity
	Fn    Subr
}

// fn.String() returns "#<procedure name>".
func (fn *Primitive) String() string {
	return "#<procedure " + fn.Name + ">"
}

// Arity is a predicate over argument counts.
// Max < 0 means there is no upper bound.
type Arity struct {
	Min int
	Max int
}

// AnyArity accepts any number of arguments.
var AnyArity = Arity{0, -1}

// Exactly(n) accepts n arguments.
func Exactly(n int) Arity {
	return Arity{n, n}
}

// AtLeast(n) accepts n or more arguments.
func AtLeast(n int) Arity {
	return Arity{n, -1}
}

// Between(a, b) accepts a to b arguments.
func Between(a, b int) Arity {
	return Arity{a, b}
}

// a.Accepts(n) returns true if n arguments satisfy a.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

// a.String() describes the required number of arguments.
func (a Arity) String() string {
	switch {
	case a.Max < 0 && a.Min == 0:
		return "any number of"
	case a.Max < 0:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return strconv.Itoa(a.Min)
	default:
		return fmt.Sprintf("%d to %d", a.Min, a.Max)
	}
}

// IsTrue returns false only for the boolean false.
func IsTrue(x Any) bool {
	b, ok := x.(bool)
	return !ok || b
}

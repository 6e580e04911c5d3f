package ti

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/nukata/goarith"
)

// Subrs

var zero = goarith.AsNumber(big.NewInt(0))
var one = goarith.AsNumber(big.NewInt(1))

func number(name string, x Any) (goarith.Number, error) {
	n, ok := x.(goarith.Number)
	if !ok {
		return nil, typeError(name, "number", x)
	}
	return n, nil
}

func list(name string, x Any) (*Cell, error) {
	j, ok := asList(x)
	if !ok {
		return nil, typeError(name, "list", x)
	}
	return j, nil
}

// foldNumbers returns fn(...fn(fn(x, a1), a2)..., aN).
func foldNumbers(name string, x goarith.Number, args []Any,
	fn func(a, b goarith.Number) (goarith.Number, error)) (Any, error) {
	for _, arg := range args {
		b, err := number(name, arg)
		if err != nil {
			return nil, err
		}
		x, err = fn(x, b)
		if err != nil {
			return nil, err
		}
	}
	return x, nil
}

func add(a, b goarith.Number) (goarith.Number, error) {
	return a.Add(b), nil
}

func sub(a, b goarith.Number) (goarith.Number, error) {
	return a.Sub(b), nil
}

func mul(a, b goarith.Number) (goarith.Number, error) {
	return a.Mul(b), nil
}

func quo(a, b goarith.Number) (goarith.Number, error) {
	if b.Cmp(zero) == 0 {
		return nil, NewEvalError(DivideByZeroError, "division by zero: %s / %s", a, b)
	}
	return a.RQuo(b), nil
}

func plus_(args []Any) (Any, error) {
	return foldNumbers("+", zero, args, add)
}

func star_(args []Any) (Any, error) {
	return foldNumbers("*", one, args, mul)
}

func minus_(args []Any) (Any, error) {
	a1, err := number("-", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return zero.Sub(a1), nil
	}
	return foldNumbers("-", a1, args[1:], sub)
}

func slash_(args []Any) (Any, error) {
	a1, err := number("/", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return quo(one, a1)
	}
	return foldNumbers("/", a1, args[1:], quo)
}

func remainder_(args []Any) (Any, error) {
	a, err := number("%", args[0])
	if err != nil {
		return nil, err
	}
	b, err := number("%", args[1])
	if err != nil {
		return nil, err
	}
	if b.Cmp(zero) == 0 {
		return nil, NewEvalError(DivideByZeroError, "division by zero: %s %% %s", a, b)
	}
	_, r := a.QuoRem(b)
	return r, nil
}

// compare returns the sign of a - b for two numbers or two strings.
func compare(name string, a, b Any) (int, error) {
	switch x := a.(type) {
	case goarith.Number:
		y, err := number(name, b)
		if err != nil {
			return 0, err
		}
		return x.Cmp(y), nil
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, typeError(name, "string", b)
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	return 0, typeError(name, "number or string", a)
}

// comparison makes a chained comparison such as (< a b c).
func comparison(name string, ok func(int) bool) Subr {
	return func(args []Any) (Any, error) {
		result := true
		for i := 1; i < len(args); i++ {
			c, err := compare(name, args[i-1], args[i])
			if err != nil {
				return nil, err
			}
			result = result && ok(c)
		}
		return result, nil
	}
}

func equal_(args []Any) (Any, error) {
	for i := 1; i < len(args); i++ {
		if !Equal(args[i-1], args[i]) {
			return false, nil
		}
	}
	return true, nil
}

// Equal returns true if a and b are structurally equal.
// Numbers are compared by value, so 1 and 1.0 are equal.
func Equal(a, b Any) bool {
	switch x := a.(type) {
	case goarith.Number:
		y, ok := b.(goarith.Number)
		return ok && x.Cmp(y) == 0
	case *Cell:
		y, ok := b.(*Cell)
		if !ok {
			return false
		}
		for x != Nil && y != Nil {
			if !Equal(x.Car, y.Car) {
				return false
			}
			x, y = x.Tail(), y.Tail()
		}
		return x == Nil && y == Nil
	}
	return eqv(a, b)
}

func eqv(a, b Any) bool {
	if x, ok := a.(goarith.Number); ok {
		y, ok := b.(goarith.Number)
		return ok && x.Cmp(y) == 0
	}
	return a == b
}

func eqv_(args []Any) (Any, error) {
	return eqv(args[0], args[1]), nil
}

func equalP_(args []Any) (Any, error) {
	return Equal(args[0], args[1]), nil
}

func cons_(args []Any) (Any, error) {
	j, err := list("cons", args[1])
	if err != nil {
		return nil, err
	}
	return &Cell{args[0], j}, nil
}

func car_(args []Any) (Any, error) {
	j, err := list("car", args[0])
	if err != nil {
		return nil, err
	}
	if j == Nil {
		return nil, NewEvalError(EmptyListError, "car: empty list")
	}
	return j.Car, nil
}

func cdr_(args []Any) (Any, error) {
	j, err := list("cdr", args[0])
	if err != nil {
		return nil, err
	}
	if j == Nil {
		return nil, NewEvalError(EmptyListError, "cdr: empty list")
	}
	return j.Cdr, nil
}

func list_(args []Any) (Any, error) {
	return List(args...), nil
}

func append_(args []Any) (Any, error) {
	var result Any = Nil
	p := &result
	for _, arg := range args {
		j, err := list("append", arg)
		if err != nil {
			return nil, err
		}
		for ; j != Nil; j = j.Tail() {
			x := &Cell{j.Car, Nil}
			*p = x
			p = &x.Cdr
		}
	}
	return result, nil
}

func length_(args []Any) (Any, error) {
	j, err := list("length", args[0])
	if err != nil {
		return nil, err
	}
	return goarith.AsNumber(big.NewInt(int64(j.Len()))), nil
}

func pairP_(args []Any) (Any, error) {
	j, ok := args[0].(*Cell)
	return ok && j != Nil, nil
}

func nullP_(args []Any) (Any, error) {
	return args[0] == Nil, nil
}

func listP_(args []Any) (Any, error) {
	_, ok := args[0].(*Cell)
	return ok, nil
}

func numberP_(args []Any) (Any, error) {
	_, ok := args[0].(goarith.Number)
	return ok, nil
}

func stringP_(args []Any) (Any, error) {
	_, ok := args[0].(string)
	return ok, nil
}

func symbolP_(args []Any) (Any, error) {
	_, ok := args[0].(*Sym)
	return ok, nil
}

func procedureP_(args []Any) (Any, error) {
	switch args[0].(type) {
	case *Primitive, *Compound:
		return true, nil
	}
	return false, nil
}

func not_(args []Any) (Any, error) {
	return !IsTrue(args[0]), nil
}

//----------------------------------------------------------------------

// PrimitiveDef is a row of a table of primitive procedures.
type PrimitiveDef struct {
	Name  string
	Arity Arity
	Fn    Subr
}

// Primitives converts a table of primitive procedures into bindings
// which can be installed by Env.PutAll.
func Primitives(defs []PrimitiveDef) map[*Sym]Any {
	m := make(map[*Sym]Any, len(defs))
	for _, d := range defs {
		m[NewSym(d.Name)] = &Primitive{d.Name, d.Arity, d.Fn}
	}
	return m
}

// primitiveDefs returns the built-in primitives; display and newline
// write to w.
func primitiveDefs(w io.Writer) []PrimitiveDef {
	display_ := func(args []Any) (Any, error) {
		fmt.Fprint(w, Str2(args[0], false))
		return Void, nil
	}
	newline_ := func(args []Any) (Any, error) {
		fmt.Fprintln(w)
		return Void, nil
	}
	return []PrimitiveDef{
		{"+", AnyArity, plus_},
		{"-", AtLeast(1), minus_},
		{"*", AnyArity, star_},
		{"/", AtLeast(1), slash_},
		{"%", Exactly(2), remainder_},
		{"=", AtLeast(2), equal_},
		{"<", AtLeast(2), comparison("<", func(c int) bool { return c < 0 })},
		{"<=", AtLeast(2), comparison("<=", func(c int) bool { return c <= 0 })},
		{">", AtLeast(2), comparison(">", func(c int) bool { return c > 0 })},
		{">=", AtLeast(2), comparison(">=", func(c int) bool { return c >= 0 })},
		{"cons", Exactly(2), cons_},
		{"car", Exactly(1), car_},
		{"cdr", Exactly(1), cdr_},
		{"list", AnyArity, list_},
		{"append", AnyArity, append_},
		{"length", Exactly(1), length_},
		{"pair?", Exactly(1), pairP_},
		{"null?", Exactly(1), nullP_},
		{"list?", Exactly(1), listP_},
		{"number?", Exactly(1), numberP_},
		{"string?", Exactly(1), stringP_},
		{"symbol?", Exactly(1), symbolP_},
		{"procedure?", Exactly(1), procedureP_},
		{"not", Exactly(1), not_},
		{"eq?", Exactly(2), eqv_},
		{"equal?", Exactly(2), equalP_},
		{"display", Exactly(1), display_},
		{"newline", Exactly(0), newline_},
	}
}

// MakeGlobalEnv constructs an environment which contains built-in values.
// display writes to the standard output.
func MakeGlobalEnv() *Env {
	return MakeGlobalEnvWriter(os.Stdout)
}

// MakeGlobalEnvWriter constructs an environment which contains built-in
// values; display and newline write to w.
func MakeGlobalEnvWriter(w io.Writer) *Env {
	env := NewEnv(nil)
	env.PutAll(Primitives(primitiveDefs(w)))
	env.PutAll(map[*Sym]Any{
		NewSym("void"):  Void,
		NewSym("nil"):   Nil,
		NewSym("true"):  true,
		NewSym("false"): false,
	})
	return env
}

package ti

import (
	"bytes"
	"errors"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nukata/goarith"
)

func num(n int64) goarith.Number {
	return goarith.AsNumber(big.NewInt(n))
}

func evalString(t *testing.T, env *Env, src string) Any {
	t.Helper()
	v, err := DoString(src, env)
	if err != nil {
		t.Fatalf("DoString(%q): %v", src, err)
	}
	return v
}

func wantEqual(t *testing.T, src string, got, want Any) {
	t.Helper()
	if !Equal(got, want) {
		t.Errorf("%s => %s, want %s", src, Str(got), Str(want))
	}
}

func wantErrKind(t *testing.T, err error, kind ErrorKind, contains string) {
	t.Helper()
	if !IsKind(err, kind) {
		t.Fatalf("want %v, got %v", kind, err)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("error %q does not contain %q", err.Error(), contains)
	}
}

func TestEvalProperties(t *testing.T) {
	cases := []struct {
		src  string
		want Any
	}{
		{"(+ 1 2 3)", num(6)},
		{"(if (= 1 1) 10 20)", num(10)},
		{"(if (= 1 2) 10 20)", num(20)},
		{"(define (adder n) (lambda (x) (+ x n))) (define add5 (adder 5)) (add5 3)", num(8)},
		{"'(1 2 3)", List(num(1), num(2), num(3))},
		{"(car '(1 2 3))", num(1)},
		{"(define (fact n) (if (= n 0) 1 (* n (fact (- n 1))))) (fact 5)", num(120)},
	}
	for _, c := range cases {
		got := evalString(t, MakeGlobalEnv(), c.src)
		wantEqual(t, c.src, got, c.want)
	}
}

func TestEvalForms(t *testing.T) {
	cases := []struct {
		src  string
		want Any
	}{
		{"42", num(42)},
		{`"text"`, "text"},
		{"(quote (a b))", List(NewSym("a"), NewSym("b"))},
		{"'sym", NewSym("sym")},
		{"(begin 1 2 3)", num(3)},
		{"(begin)", Void},
		{"(define x 5)", Void},
		{"(define x 5) (begin (define x 6) x)", num(6)},
		{"(if 0 'yes 'no)", NewSym("yes")},
		{"(if nil 'yes 'no)", NewSym("yes")},
		{`(if "" 'yes 'no)`, NewSym("yes")},
		{"(if false 'yes 'no)", NewSym("no")},
		{"((lambda (x y) (* x y)) 6 7)", num(42)},
		{"((lambda () 1 2 3))", num(3)},
		{"(((lambda (x) (lambda (y) (* x y))) 2) 3)", num(6)},
		{"((lambda (y) (((lambda (y) (lambda (x) (* y 2))) 3) 0)) 4)", num(6)},
		{"(define (f) (define z 9) z) (f)", num(9)},
		{"(define (gcd a b) (if (= a 0) b (gcd (% b a) a))) (gcd 144 12144)", num(48)},
		{"", Void},
	}
	for _, c := range cases {
		got := evalString(t, MakeGlobalEnv(), c.src)
		wantEqual(t, c.src, got, c.want)
	}
}

func TestEvalIfEvaluatesOneBranch(t *testing.T) {
	var out bytes.Buffer
	env := MakeGlobalEnvWriter(&out)
	evalString(t, env, `(if true (display "then") (display "else"))`)
	evalString(t, env, `(if false (display "then") (display "else"))`)
	if out.String() != "thenelse" {
		t.Errorf("output = %q, want %q", out.String(), "thenelse")
	}
}

func TestEvalArgumentsLeftToRight(t *testing.T) {
	var out bytes.Buffer
	env := MakeGlobalEnvWriter(&out)
	evalString(t, env, `(list (display 1) (display 2) (display 3))`)
	if out.String() != "123" {
		t.Errorf("output = %q, want %q", out.String(), "123")
	}
}

func TestDefineIsLocalToTheFrame(t *testing.T) {
	env := MakeGlobalEnv()
	evalString(t, env, "(define x 1) (define (f) (define x 2) x)")
	wantEqual(t, "(f)", evalString(t, env, "(f)"), num(2))
	wantEqual(t, "x", evalString(t, env, "x"), num(1))
}

func TestClosuresCaptureDefinitionEnvironment(t *testing.T) {
	env := MakeGlobalEnv()
	evalString(t, env, `
		(define n 100)
		(define (make-counter n) (lambda () n))
		(define c (make-counter 7))
		(define (call-with-n n) (c))`)
	wantEqual(t, "(call-with-n 1)", evalString(t, env, "(call-with-n 1)"), num(7))
}

func TestAnalyzedExecDoesNotLeakBetweenEnvironments(t *testing.T) {
	prog, err := Read("(define x 1)")
	if err != nil {
		t.Fatal(err)
	}
	exec, err := Analyze(prog.Exprs.Car)
	if err != nil {
		t.Fatal(err)
	}
	env1, env2 := MakeGlobalEnv(), MakeGlobalEnv()
	if _, err := exec(env1); err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "x", evalString(t, env1, "x"), num(1))
	_, err = DoString("x", env2)
	wantErrKind(t, err, UnboundSymbolError, "x")
	if _, err := exec(env2); err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "x", evalString(t, env2, "x"), num(1))
}

func TestAnalysisHappensBeforeExecution(t *testing.T) {
	env := MakeGlobalEnv()
	// The malformed if is found although f is never called.
	_, err := DoString("(define (f) (if 1 2))", env)
	wantErrKind(t, err, SyntaxError, "if")
	_, err = DoString("f", env)
	wantErrKind(t, err, UnboundSymbolError, "f")

	// An unbound symbol is only found when it is evaluated.
	evalString(t, env, "(define (g) undefined-thing)")
	_, err = DoString("(g)", env)
	wantErrKind(t, err, UnboundSymbolError, "undefined-thing")
}

func TestEvalAnalyzedProcedureRunsManyTimes(t *testing.T) {
	env := MakeGlobalEnv()
	evalString(t, env, "(define (sum n) (if (= n 0) 0 (+ n (sum (- n 1)))))")
	for _, c := range []struct{ n, want int64 }{{0, 0}, {10, 55}, {100, 5050}} {
		got, err := Apply(evalString(t, env, "sum"), []Any{num(c.n)})
		if err != nil {
			t.Fatal(err)
		}
		wantEqual(t, "(sum n)", got, num(c.want))
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		src      string
		kind     ErrorKind
		contains string
	}{
		{"unknown-sym", UnboundSymbolError, "unknown-sym"},
		{"((lambda (x y) x) 1)", ArityError, "2 arguments, 1 given"},
		{"(define (two a b) a) (two 1)", ArityError, "#<procedure two>"},
		{"(car)", ArityError, "car requires 1 arguments, 0 given"},
		{"(- )", ArityError, "at least 1"},
		{"(1 2)", NotAProcedureError, "1"},
		{`("f")`, NotAProcedureError, `"f"`},
		{"(+ 1", SyntaxError, "parentheses"},
		{"(quote)", SyntaxError, "quote"},
		{"(quote a b)", SyntaxError, "quote"},
		{"(define x)", SyntaxError, "define"},
		{"(define x 1 2)", SyntaxError, "define"},
		{"(define 1 2)", SyntaxError, "not definable"},
		{"(define (f 1) 2)", SyntaxError, "parameter"},
		{"(define (1 x) 2)", SyntaxError, "procedure name"},
		{"(if 1 2)", SyntaxError, "if"},
		{"(if 1 2 3 4)", SyntaxError, "if"},
		{"(lambda (x))", SyntaxError, "lambda"},
		{"(lambda x x)", SyntaxError, "parameter list"},
		{"(lambda (x 2) x)", SyntaxError, "parameter"},
		{"()", AnalysisError, "unknown expression type"},
		{"(load 1)", TypeError, "load"},
		{"(load)", SyntaxError, "load"},
		{"(car '())", EmptyListError, "car"},
		{"(cdr nil)", EmptyListError, "cdr"},
		{"(+ 1 'a)", TypeError, "number expected"},
		{"(/ 1 0)", DivideByZeroError, "division by zero"},
		{"(% 7 0)", DivideByZeroError, "division by zero"},
		{"(a # b)", LexError, "#"},
	}
	for _, c := range cases {
		_, err := DoString(c.src, MakeGlobalEnv())
		if !IsKind(err, c.kind) {
			t.Errorf("%s: want %v, got %v", c.src, c.kind, err)
			continue
		}
		if !strings.Contains(err.Error(), c.contains) {
			t.Errorf("%s: error %q does not contain %q", c.src, err.Error(), c.contains)
		}
	}
}

func TestEvalErrorLines(t *testing.T) {
	_, err := DoString("(define x 1)\n\n(car x)", MakeGlobalEnv())
	var e *EvalError
	if !errors.As(err, &e) {
		t.Fatalf("want *EvalError, got %v", err)
	}
	if e.Kind != TypeError || e.Line != 3 {
		t.Errorf("got %v, want a TypeError on line 3", e)
	}
}

func TestMalformedInputLeavesEnvironmentUsable(t *testing.T) {
	env := MakeGlobalEnv()
	evalString(t, env, "(define x 10)")
	_, err := DoString("(define x 20) (+ 1", env)
	wantErrKind(t, err, SyntaxError, "parentheses")
	wantEqual(t, "x", evalString(t, env, "x"), num(10))
	wantEqual(t, "(+ x 1)", evalString(t, env, "(+ x 1)"), num(11))

	_, err = DoString("(car '())", env)
	wantErrKind(t, err, EmptyListError, "car")
	wantEqual(t, "(* x 2)", evalString(t, env, "(* x 2)"), num(20))
}

func TestLoadSharesTheEnvironment(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.ti")
	src := "; a library\n(define (square x) (* x x))\n(define answer 42)\n"
	if err := os.WriteFile(lib, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	env := MakeGlobalEnv()
	got := evalString(t, env, `(load "`+filepath.ToSlash(lib)+`")`)
	if got != Void {
		t.Errorf("load returned %s, want #<void>", Str(got))
	}
	wantEqual(t, "(square answer)", evalString(t, env, "(square answer)"), num(1764))
}

func TestLoadPathIsEvaluated(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.ti")
	if err := os.WriteFile(lib, []byte("(define loaded true)"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := MakeGlobalEnv()
	env.Put(NewSym("path"), lib)
	evalString(t, env, "(load path)")
	wantEqual(t, "loaded", evalString(t, env, "loaded"), true)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ti")
	_, err := DoString(`(load "`+filepath.ToSlash(missing)+`")`, MakeGlobalEnv())
	wantErrKind(t, err, IOError, "missing.ti")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ti")
	if err := os.WriteFile(path, []byte("(define x 2)\n(* x 21)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := DoFile(path, MakeGlobalEnv())
	if err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "prog.ti", got, num(42))
}

func TestApply(t *testing.T) {
	env := MakeGlobalEnv()
	plus := evalString(t, env, "+")
	got, err := Apply(plus, []Any{num(1), num(2)})
	if err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "(+ 1 2)", got, num(3))

	_, err = Apply("not a procedure", nil)
	wantErrKind(t, err, NotAProcedureError, "not a procedure")

	sq := evalString(t, env, "(lambda (x) (* x x))")
	got, err = Apply(sq, []Any{num(9)})
	if err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "(sq 9)", got, num(81))
}

func TestEvalValueExpression(t *testing.T) {
	env := MakeGlobalEnv()
	got, err := Eval(List(NewSym("+"), num(2), num(3)), env)
	if err != nil {
		t.Fatal(err)
	}
	wantEqual(t, "(+ 2 3)", got, num(5))

	_, err = Eval(true, env)
	wantErrKind(t, err, AnalysisError, "unknown expression type")
}

func TestExtraPrimitivesFromGo(t *testing.T) {
	env := MakeGlobalEnv()
	env.PutAll(Primitives([]PrimitiveDef{
		{"twice", Exactly(1), func(args []Any) (Any, error) {
			n, err := number("twice", args[0])
			if err != nil {
				return nil, err
			}
			return n.Add(n), nil
		}},
	}))
	wantEqual(t, "(twice 21)", evalString(t, env, "(twice 21)"), num(42))
	_, err := DoString("(twice 1 2)", env)
	wantErrKind(t, err, ArityError, "twice")
}

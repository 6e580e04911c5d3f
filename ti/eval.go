package ti

import (
	"os"

	"github.com/nukata/goarith"
)

// analyzer compiles expressions into Execs.
// lines, if not nil, gives the source line of each list.
type analyzer struct {
	lines map[*Cell]int
}

// Analyze compiles x into an Exec.  All syntactic decisions about x are
// made here, once; running the Exec only performs x's runtime action.
func Analyze(x Any) (Exec, error) {
	return (&analyzer{}).analyze(x)
}

func (a *analyzer) lineOf(x *Cell) int {
	if a.lines == nil {
		return 0
	}
	return a.lines[x]
}

func (a *analyzer) syntaxError(x *Cell, format string, args ...Any) error {
	return NewEvalError(SyntaxError, format, args...).at(a.lineOf(x))
}

// atLine fills in the source line of err if it has none yet.
func atLine(err error, line int) error {
	if e, ok := err.(*EvalError); ok {
		e.at(line)
	}
	return err
}

func (a *analyzer) analyze(x Any) (Exec, error) {
	switch x := x.(type) {
	case *Sym:
		return func(env *Env) (Any, error) {
			return env.Lookup(x)
		}, nil
	case *Cell:
		if x == Nil {
			break
		}
		if f, ok := x.Car.(*Sym); ok && f.IsKeyword {
			switch f {
			case Quote_:
				return a.analyzeQuote(x)
			case Define_:
				return a.analyzeDefine(x)
			case Begin_:
				return a.analyzeSequence(x.Tail())
			case Load_:
				return a.analyzeLoad(x)
			case If_:
				return a.analyzeIf(x)
			case Lambda_:
				return a.analyzeLambda(x)
			case Cond_:
				return a.analyzeCond(x)
			case And_:
				return a.analyzeAnd(x)
			case Or_:
				return a.analyzeOr(x)
			case Let_:
				return a.analyzeLet(x)
			}
		}
		return a.analyzeApplication(x)
	case goarith.Number, string:
		return func(env *Env) (Any, error) {
			return x, nil
		}, nil
	}
	return nil, NewEvalError(AnalysisError, "unknown expression type: %s", Str(x))
}

// (quote e)
func (a *analyzer) analyzeQuote(x *Cell) (Exec, error) {
	if x.Len() != 2 {
		return nil, a.syntaxError(x, "quote takes exactly one operand: %s", Str(x))
	}
	e := x.Tail().Car
	return func(env *Env) (Any, error) {
		return e, nil
	}, nil
}

// (define v e) or (define (f p...) e...)
func (a *analyzer) analyzeDefine(x *Cell) (Exec, error) {
	n := x.Len()
	if n < 3 {
		return nil, a.syntaxError(x, "malformed define: %s", Str(x))
	}
	switch target := x.Tail().Car.(type) {
	case *Sym:
		if n != 3 {
			return nil, a.syntaxError(x, "malformed define: %s", Str(x))
		}
		value, err := a.analyze(x.Tail().Tail().Car)
		if err != nil {
			return nil, err
		}
		return func(env *Env) (Any, error) {
			v, err := value(env)
			if err != nil {
				return nil, err
			}
			env.Put(target, v)
			return Void, nil
		}, nil
	case *Cell:
		if target == Nil {
			break
		}
		name, ok := target.Car.(*Sym)
		if !ok {
			return nil, a.syntaxError(x, "procedure name expected: %s", Str(target.Car))
		}
		params, err := a.parameters(x, target.Tail())
		if err != nil {
			return nil, err
		}
		body, err := a.analyzeBody(x.Tail().Tail())
		if err != nil {
			return nil, err
		}
		return func(env *Env) (Any, error) {
			env.Put(name, &Compound{name.Name, params, body, env})
			return Void, nil
		}, nil
	}
	return nil, a.syntaxError(x, "not definable: %s", Str(x.Tail().Car))
}

// parameters checks that every element of j is a symbol.
func (a *analyzer) parameters(x *Cell, j *Cell) ([]*Sym, error) {
	params := make([]*Sym, 0, j.Len())
	for ; j != Nil; j = j.Tail() {
		sym, ok := j.Car.(*Sym)
		if !ok {
			return nil, a.syntaxError(x, "parameter must be a symbol: %s", Str(j.Car))
		}
		params = append(params, sym)
	}
	return params, nil
}

// analyzeBody analyzes the body of a lambda; more than one
// expression makes an implicit begin.
func (a *analyzer) analyzeBody(body *Cell) (Exec, error) {
	if body != Nil && body.Cdr == Nil {
		return a.analyze(body.Car)
	}
	return a.analyzeSequence(body)
}

// (begin e1 ... eN)
func (a *analyzer) analyzeSequence(exprs *Cell) (Exec, error) {
	execs := make([]Exec, 0, exprs.Len())
	for j := exprs; j != Nil; j = j.Tail() {
		e, err := a.analyze(j.Car)
		if err != nil {
			return nil, err
		}
		execs = append(execs, e)
	}
	return func(env *Env) (Any, error) {
		var result Any = Void
		for _, e := range execs {
			v, err := e(env)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil
	}, nil
}

// (load path)
func (a *analyzer) analyzeLoad(x *Cell) (Exec, error) {
	if x.Len() != 2 {
		return nil, a.syntaxError(x, "load takes exactly one operand: %s", Str(x))
	}
	path, err := a.analyze(x.Tail().Car)
	if err != nil {
		return nil, err
	}
	line := a.lineOf(x)
	return func(env *Env) (Any, error) {
		p, err := path(env)
		if err != nil {
			return nil, err
		}
		fileName, ok := p.(string)
		if !ok {
			return nil, typeError("load", "string", p).at(line)
		}
		if _, err := DoFile(fileName, env); err != nil {
			return nil, err
		}
		return Void, nil
	}, nil
}

// (if pred conseq alt)
func (a *analyzer) analyzeIf(x *Cell) (Exec, error) {
	if x.Len() != 4 {
		return nil, a.syntaxError(x, "if takes exactly three operands: %s", Str(x))
	}
	rest := x.Tail()
	pred, err := a.analyze(rest.Car)
	if err != nil {
		return nil, err
	}
	conseq, err := a.analyze(rest.Tail().Car)
	if err != nil {
		return nil, err
	}
	alt, err := a.analyze(rest.Tail().Tail().Car)
	if err != nil {
		return nil, err
	}
	return func(env *Env) (Any, error) {
		p, err := pred(env)
		if err != nil {
			return nil, err
		}
		if IsTrue(p) {
			return conseq(env)
		}
		return alt(env)
	}, nil
}

// (lambda (p...) e...)
func (a *analyzer) analyzeLambda(x *Cell) (Exec, error) {
	if x.Len() < 3 {
		return nil, a.syntaxError(x, "malformed lambda: %s", Str(x))
	}
	list, ok := x.Tail().Car.(*Cell)
	if !ok {
		return nil, a.syntaxError(x, "parameter list expected: %s", Str(x.Tail().Car))
	}
	params, err := a.parameters(x, list)
	if err != nil {
		return nil, err
	}
	body, err := a.analyzeBody(x.Tail().Tail())
	if err != nil {
		return nil, err
	}
	return func(env *Env) (Any, error) {
		return &Compound{"", params, body, env}, nil
	}, nil
}

// (proc arg...)
func (a *analyzer) analyzeApplication(x *Cell) (Exec, error) {
	fn, err := a.analyze(x.Car)
	if err != nil {
		return nil, err
	}
	args := make([]Exec, 0, x.Len()-1)
	for j := x.Tail(); j != Nil; j = j.Tail() {
		e, err := a.analyze(j.Car)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	line := a.lineOf(x)
	return func(env *Env) (Any, error) {
		f, err := fn(env)
		if err != nil {
			return nil, atLine(err, line)
		}
		vals := make([]Any, len(args))
		for i, arg := range args {
			v, err := arg(env)
			if err != nil {
				return nil, atLine(err, line)
			}
			vals[i] = v
		}
		v, err := Apply(f, vals)
		if err != nil {
			return nil, atLine(err, line)
		}
		return v, nil
	}, nil
}

//----------------------------------------------------------------------

// Apply applies fn to args.
func Apply(fn Any, args []Any) (Any, error) {
	switch f := fn.(type) {
	case *Primitive:
		if !f.Arity.Accepts(len(args)) {
			return nil, NewEvalError(ArityError,
				"%s requires %v arguments, %d given", f.Name, f.Arity, len(args))
		}
		return f.Fn(args)
	case *Compound:
		if len(f.Params) != len(args) {
			return nil, NewEvalError(ArityError,
				"%s requires %d arguments, %d given", Str(f), len(f.Params), len(args))
		}
		env, err := f.Env.Extend(f.Params, args)
		if err != nil {
			return nil, err
		}
		return f.Body(env)
	}
	return nil, NewEvalError(NotAProcedureError, "not a procedure: %s", Str(fn))
}

// Eval analyzes x and runs it in env.
func Eval(x Any, env *Env) (Any, error) {
	exec, err := Analyze(x)
	if err != nil {
		return nil, err
	}
	return exec(env)
}

// DoString reads source and evaluates each top-level expression in env
// in turn.  It returns the value of the last one, or Void if there is none.
// A read error is reported before anything is evaluated.
func DoString(source string, env *Env) (Any, error) {
	prog, err := Read(source)
	if err != nil {
		return nil, err
	}
	a := &analyzer{prog.Lines}
	var result Any = Void
	for j := prog.Exprs; j != Nil; j = j.Tail() {
		exec, err := a.analyze(j.Car)
		if err != nil {
			return nil, err
		}
		result, err = exec(env)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// DoFile reads the file fileName and evaluates its contents in env.
func DoFile(fileName string, env *Env) (Any, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		e := NewEvalError(IOError, "cannot read %s: %v", fileName, err)
		e.cause = err
		return nil, e
	}
	return DoString(string(b), env)
}

package ti

// Derived special forms

// (cond (test e1...eN)... (else e...))
func (a *analyzer) analyzeCond(x *Cell) (Exec, error) {
	type clause struct {
		test   Exec // nil for else
		body   Exec // nil for (test)
		isElse bool
	}
	clauses := make([]clause, 0, x.Len()-1)
	for j := x.Tail(); j != Nil; j = j.Tail() {
		c, ok := j.Car.(*Cell)
		if !ok || c == Nil {
			return nil, a.syntaxError(x, "bad cond clause: %s", Str(j.Car))
		}
		var cl clause
		if c.Car == Else_ {
			if j.Cdr != Nil {
				return nil, a.syntaxError(x, "else must be the last cond clause")
			}
			cl.isElse = true
		} else {
			test, err := a.analyze(c.Car)
			if err != nil {
				return nil, err
			}
			cl.test = test
		}
		if c.Cdr != Nil {
			body, err := a.analyzeSequence(c.Tail())
			if err != nil {
				return nil, err
			}
			cl.body = body
		} else if cl.isElse {
			return nil, a.syntaxError(x, "empty else clause")
		}
		clauses = append(clauses, cl)
	}
	return func(env *Env) (Any, error) {
		for _, cl := range clauses {
			if cl.isElse {
				return cl.body(env)
			}
			t, err := cl.test(env)
			if err != nil {
				return nil, err
			}
			if IsTrue(t) {
				if cl.body == nil { // (cond (test) ...) => test
					return t, nil
				}
				return cl.body(env)
			}
		}
		return Void, nil
	}, nil
}

func (a *analyzer) analyzeOperands(x *Cell) ([]Exec, error) {
	execs := make([]Exec, 0, x.Len()-1)
	for j := x.Tail(); j != Nil; j = j.Tail() {
		e, err := a.analyze(j.Car)
		if err != nil {
			return nil, err
		}
		execs = append(execs, e)
	}
	return execs, nil
}

// (and e1 ... eN)
func (a *analyzer) analyzeAnd(x *Cell) (Exec, error) {
	execs, err := a.analyzeOperands(x)
	if err != nil {
		return nil, err
	}
	return func(env *Env) (Any, error) {
		var result Any = true // (and) => true
		for _, e := range execs {
			v, err := e(env)
			if err != nil {
				return nil, err
			}
			if !IsTrue(v) {
				return false, nil
			}
			result = v
		}
		return result, nil
	}, nil
}

// (or e1 ... eN)
func (a *analyzer) analyzeOr(x *Cell) (Exec, error) {
	execs, err := a.analyzeOperands(x)
	if err != nil {
		return nil, err
	}
	return func(env *Env) (Any, error) {
		for _, e := range execs {
			v, err := e(env)
			if err != nil {
				return nil, err
			}
			if IsTrue(v) {
				return v, nil
			}
		}
		return false, nil // (or) => false
	}, nil
}

// (let ((v e)...) e...) => ((lambda (v...) e...) e...)
func (a *analyzer) analyzeLet(x *Cell) (Exec, error) {
	if x.Len() < 3 {
		return nil, a.syntaxError(x, "malformed let: %s", Str(x))
	}
	bindings, ok := x.Tail().Car.(*Cell)
	if !ok {
		return nil, a.syntaxError(x, "let bindings expected: %s", Str(x.Tail().Car))
	}
	body := x.Tail().Tail()
	var syms *Cell = Nil
	var vals *Cell = Nil
	for j := bindings; j != Nil; j = j.Tail() {
		ve, ok := j.Car.(*Cell) // (v e)
		if !ok || ve.Len() != 2 {
			return nil, a.syntaxError(x, "bad let binding: %s", Str(j.Car))
		}
		syms = &Cell{ve.Car, syms}
		vals = &Cell{ve.Tail().Car, vals}
	}
	lambda := &Cell{Lambda_, &Cell{syms.Reverse(), body}}
	app := &Cell{lambda, vals.Reverse()}
	if a.lines != nil {
		a.lines[app] = a.lineOf(x)
		a.lines[lambda] = a.lineOf(x)
	}
	return a.analyze(app)
}
